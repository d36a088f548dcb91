package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the single persisted account record. The verification token lives
// on the user itself: nil means the email is confirmed, and a consumed token
// naturally stops matching lookups.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"       json:"id"`
	Email             string             `bson:"email"               json:"email"`
	PasswordHash      string             `bson:"password_hash"       json:"-"`
	AvatarURL         string             `bson:"avatar_url"          json:"avatarURL"`
	VerificationToken *string            `bson:"verification_token"  json:"-"`
	Verified          bool               `bson:"verified"            json:"verified"`
	Subscription      string             `bson:"subscription"        json:"subscription"`
	AuthToken         string             `bson:"auth_token"          json:"-"`
	CreatedAt         time.Time          `bson:"created_at"          json:"created_at"`
}
