package auth

import "context"

// MockVerifier returns a fixed user or error.
type MockVerifier struct {
	User  *User
	Error error

	// Tokens, when set, maps raw tokens to users and takes precedence over User.
	Tokens map[string]*User
}

// Verify implements Verifier.
func (m *MockVerifier) Verify(_ context.Context, token string) (*User, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Tokens != nil {
		if u, ok := m.Tokens[token]; ok {
			return u, nil
		}
		return nil, ErrInvalidToken
	}
	return m.User, nil
}

// TestUser returns the user the handler tests authenticate as.
func TestUser() *User {
	return &User{UID: "test-user-123", Email: "test@example.com", EmailVerified: true}
}

var _ Verifier = (*MockVerifier)(nil)
