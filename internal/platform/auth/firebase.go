package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseVerifier verifies Firebase ID tokens, including revocation.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier returns a verifier backed by client.
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify implements Verifier.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*User, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	return &User{UID: token.UID, Email: email, EmailVerified: verified}, nil
}

func mapFirebaseError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

// FirebaseAccountRemover deletes Firebase Auth accounts.
type FirebaseAccountRemover struct {
	client *fbauth.Client
}

// NewFirebaseAccountRemover returns a remover backed by client.
func NewFirebaseAccountRemover(client *fbauth.Client) *FirebaseAccountRemover {
	return &FirebaseAccountRemover{client: client}
}

// RemoveAccount deletes the account for uid. An already missing account is
// not an error.
func (r *FirebaseAccountRemover) RemoveAccount(ctx context.Context, uid string) error {
	if err := r.client.DeleteUser(ctx, uid); err != nil && !fbauth.IsUserNotFound(err) {
		return fmt.Errorf("delete auth account: %w", err)
	}
	return nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
