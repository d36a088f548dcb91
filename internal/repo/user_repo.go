package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tazhibayda/account-service/internal/domain"
)

// ErrEmailTaken maps the unique index violation on users.email.
var ErrEmailTaken = errors.New("email already registered")

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	res, err := s.colUsers.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"verification_token": token})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.colUsers.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	return s.setFields(ctx, id, bson.M{"verified": true, "verification_token": nil})
}

func (s *Store) SetAuthToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.setFields(ctx, id, bson.M{"auth_token": token})
}

func (s *Store) SetSubscription(ctx context.Context, id primitive.ObjectID, sub string) error {
	return s.setFields(ctx, id, bson.M{"subscription": sub})
}

func (s *Store) SetAvatarURL(ctx context.Context, id primitive.ObjectID, url string) error {
	return s.setFields(ctx, id, bson.M{"avatar_url": url})
}

func (s *Store) setFields(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	_, err := s.colUsers.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
