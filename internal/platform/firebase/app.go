// Package firebase initializes the Firebase Admin SDK clients.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config selects the project and, optionally, a service account key file.
// Without a key file Application Default Credentials are used.
type Config struct {
	ProjectID       string
	CredentialsFile string

	// WithAuth and WithFirestore choose which clients to create.
	WithAuth      bool
	WithFirestore bool
}

// Clients holds the initialized clients. Unrequested clients are nil.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitializeClients creates the Firebase app and the requested clients.
func InitializeClients(ctx context.Context, cfg Config) (*Clients, error) {
	if !cfg.WithAuth && !cfg.WithFirestore {
		return nil, errors.New("firebase: no clients requested")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		creds, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("firebase: read credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}

	clients := &Clients{}
	if cfg.WithAuth {
		if clients.Auth, err = app.Auth(ctx); err != nil {
			return nil, fmt.Errorf("firebase: auth client: %w", err)
		}
	}
	if cfg.WithFirestore {
		if clients.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("firebase: firestore client: %w", err)
		}
	}
	return clients, nil
}

// Close releases the Firestore connection, if any.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
