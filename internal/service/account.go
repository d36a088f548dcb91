package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/account-service/internal/avatar"
	"github.com/tazhibayda/account-service/internal/domain"
	"github.com/tazhibayda/account-service/internal/helper"
	"github.com/tazhibayda/account-service/internal/log"
	"github.com/tazhibayda/account-service/internal/mail"
	"github.com/tazhibayda/account-service/internal/metrics"
	"github.com/tazhibayda/account-service/internal/queue"
	"github.com/tazhibayda/account-service/internal/repo"
	"github.com/tazhibayda/account-service/internal/security"
)

const DefaultSubscription = "starter"

// UserStore is the persistence surface the account flows need. *repo.Store
// implements it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByVerificationToken(ctx context.Context, token string) (*domain.User, error)
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetAuthToken(ctx context.Context, id primitive.ObjectID, token string) error
	SetSubscription(ctx context.Context, id primitive.ObjectID, sub string) error
	SetAvatarURL(ctx context.Context, id primitive.ObjectID, url string) error
}

type Account struct {
	Store   UserStore
	Mail    mail.Sender
	Avatars *avatar.Processor
	Events  queue.Publisher

	JWTSecret string
	TokenTTL  time.Duration
	BaseURL   string
	Exchange  string
}

func NewAccount(store UserStore, sender mail.Sender, proc *avatar.Processor, pub queue.Publisher,
	jwtSecret string, tokenTTL time.Duration, baseURL, exchange string) *Account {
	return &Account{
		Store:     store,
		Mail:      sender,
		Avatars:   proc,
		Events:    pub,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
		BaseURL:   baseURL,
		Exchange:  exchange,
	}
}

type SignupInput struct {
	Email        string
	Password     string
	Subscription string
}

// Signup creates an unverified user and sends the verification email. A mail
// failure fails the whole call; the inserted row stays behind (no rollback).
func (a *Account) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if verr := validateCredentials(in.Email, in.Password); verr != nil {
		return nil, verr
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if u, err := a.Store.FindUserByEmail(ctx, email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrConflict
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := security.NewVerificationToken()
	if err != nil {
		return nil, err
	}

	sub := in.Subscription
	if sub == "" {
		sub = DefaultSubscription
	}
	u := &domain.User{
		Email:             email,
		PasswordHash:      hash,
		AvatarURL:         helper.GravatarURL(email),
		VerificationToken: &token,
		Subscription:      sub,
	}
	if err := a.Store.CreateUser(ctx, u); err != nil {
		if err == repo.ErrEmailTaken {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := a.sendVerification(u.Email, token); err != nil {
		return nil, err
	}

	a.publish(ctx, "user.registered", queue.UserRegistered{UserID: u.ID, Email: u.Email})
	return u, nil
}

// Verify consumes a verification token. A second call with the same token
// finds nothing and reports not-found: that is the already-verified signal.
func (a *Account) Verify(ctx context.Context, token string) error {
	u, err := a.Store.FindUserByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if err := a.Store.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	a.publish(ctx, "user.verified", queue.UserVerified{UserID: u.ID, Email: u.Email})
	return nil
}

// ResendVerification re-sends the existing token. Missing user and malformed
// email collapse into the same validation error on purpose, so the endpoint
// does not reveal which addresses are registered.
func (a *Account) ResendVerification(ctx context.Context, email string) error {
	var u *domain.User
	if email != "" {
		var err error
		u, err = a.Store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return err
		}
	}
	if u == nil || !validEmail(email) {
		return invalid("email", "missing required field email")
	}
	if u.Verified || u.VerificationToken == nil {
		return ErrAlreadyVerified
	}
	// same token, not rotated
	return a.sendVerification(u.Email, *u.VerificationToken)
}

// Login returns a fresh bearer token. Unknown email, unverified account and
// wrong password are indistinguishable to the caller.
func (a *Account) Login(ctx context.Context, email, password string) (string, error) {
	if verr := validateCredentials(email, password); verr != nil {
		return "", verr
	}
	u, err := a.Store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if u == nil || !u.Verified {
		return "", ErrUnauthorized
	}
	if !security.CheckPassword(u.PasswordHash, password) {
		return "", ErrUnauthorized
	}

	tok, err := security.MakeAccess(a.JWTSecret, u.ID.Hex(), a.TokenTTL)
	if err != nil {
		return "", err
	}
	if err := a.Store.SetAuthToken(ctx, u.ID, tok); err != nil {
		return "", err
	}

	a.publish(ctx, "user.loggedin", queue.UserLoggedIn{UserID: u.ID, Email: u.Email})
	return tok, nil
}

// Authenticate resolves a presented bearer token to a user. The token must
// verify and match the one stored on the record, so logout invalidates it.
func (a *Account) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := security.ParseAccess(a.JWTSecret, raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	id, err := primitive.ObjectIDFromHex(claims.UID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	u, err := a.Store.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.AuthToken != raw {
		return nil, ErrUnauthorized
	}
	return u, nil
}

func (a *Account) Logout(ctx context.Context, uid primitive.ObjectID) error {
	u, err := a.Store.FindUserByID(ctx, uid)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUnauthorized
	}
	return a.Store.SetAuthToken(ctx, uid, "")
}

func (a *Account) Current(ctx context.Context, uid primitive.ObjectID) (*domain.User, error) {
	u, err := a.Store.FindUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// UpdateSubscription persists the value as-is; plan names are not validated
// here.
func (a *Account) UpdateSubscription(ctx context.Context, uid primitive.ObjectID, sub string) (*domain.User, error) {
	u, err := a.Store.FindUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUnauthorized
	}
	if err := a.Store.SetSubscription(ctx, uid, sub); err != nil {
		return nil, err
	}
	u.Subscription = sub
	return u, nil
}

// UpdateAvatar runs the uploaded file through the processor and persists the
// resulting relative URL.
func (a *Account) UpdateAvatar(ctx context.Context, uid primitive.ObjectID, tmpPath, filename string) (string, error) {
	u, err := a.Store.FindUserByID(ctx, uid)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUnauthorized
	}

	url, err := a.Avatars.Process(tmpPath, filename)
	if err != nil {
		metrics.AvatarsProcessed.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	if err := a.Store.SetAvatarURL(ctx, uid, url); err != nil {
		return "", err
	}
	metrics.AvatarsProcessed.WithLabelValues("ok").Inc()
	return url, nil
}

func (a *Account) sendVerification(to, token string) error {
	m, err := mail.Verification(to, a.BaseURL, token)
	if err != nil {
		return err
	}
	if err := a.Mail.Send(m); err != nil {
		metrics.EmailsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("send verification email: %w", err)
	}
	metrics.EmailsTotal.WithLabelValues("ok").Inc()
	return nil
}

// publish is best effort; account operations never fail on a broker problem.
func (a *Account) publish(ctx context.Context, key string, event any) {
	if a.Events == nil {
		return
	}
	reqID := queue.RequestIDFrom(ctx)
	go func() {
		if err := a.Events.Publish(context.Background(), a.Exchange, key, event, reqID); err != nil {
			log.Errorf("publish %s: %v", key, err)
		}
	}()
}
