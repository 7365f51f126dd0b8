// Package mongodb opens and verifies MongoDB connections.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const defaultConnectTimeout = 20 * time.Second

// Config identifies the deployment and database.
type Config struct {
	URI      string
	Database string

	// ConnectTimeout bounds the initial ping. Zero means 20s.
	ConnectTimeout time.Duration
}

// Client is a connected client bound to one database.
type Client struct {
	client *mongo.Client
	DB     *mongo.Database
}

// Connect dials the deployment and pings the primary before returning.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongodb: uri and database are required")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return &Client{client: client, DB: client.Database(cfg.Database)}, nil
}

// Close disconnects from the deployment.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// Ping checks that the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}
