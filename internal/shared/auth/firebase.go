package auth

import (
	"context"
	"errors"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier validates Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier wraps a Firebase Auth client.
func NewFirebaseVerifier(client *fbauth.Client) (*FirebaseVerifier, error) {
	if client == nil {
		return nil, errors.New("firebase auth client is required")
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the ID token and returns the Firebase UID as the user id.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if decoded == nil || decoded.UID == "" {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{UserID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
