package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/projecthub-dev/projecthub-backend/config"
	"github.com/projecthub-dev/projecthub-backend/internal/users"
)

// InitializeFirebase initializes the Firebase Admin SDK and returns an Auth client
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*fbauth.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return authClient, nil
}

// IDTokenVerifier is the subset of *fbauth.Client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseUserStore mirrors Firebase accounts into the users table.
type FirebaseUserStore interface {
	EnsureFirebaseUser(ctx context.Context, in users.UpsertUser) (*users.User, error)
}

// FirebaseVerifier accepts Firebase ID tokens and maps them to local users.
type FirebaseVerifier struct {
	client IDTokenVerifier
	users  FirebaseUserStore
}

func NewFirebaseVerifier(client IDTokenVerifier, store FirebaseUserStore) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, users: store}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	email, _ := decoded.Claims["email"].(string)
	name, _ := decoded.Claims["name"].(string)
	picture, _ := decoded.Claims["picture"].(string)
	verified, _ := decoded.Claims["email_verified"].(bool)

	u, err := v.users.EnsureFirebaseUser(ctx, users.UpsertUser{
		FirebaseUID:   decoded.UID,
		Email:         email,
		EmailVerified: verified,
		DisplayName:   name,
		PhotoURL:      picture,
	})
	if errors.Is(err, users.ErrEmailTaken) {
		return nil, NewError(CodeEmailAlreadyInUse, err)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	id := &Identity{
		UserID:      u.ID,
		FirebaseUID: decoded.UID,
		Email:       u.Email,
		Name:        u.Name,
	}
	if u.PhotoURL != nil {
		id.PhotoURL = *u.PhotoURL
	}
	return id, nil
}
