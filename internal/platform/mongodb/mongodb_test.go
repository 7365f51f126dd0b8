package mongodb

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/janisto/devconnector-api/internal/testutil"
)

func TestConnectRequiresURIAndDatabase(t *testing.T) {
	for _, cfg := range []Config{{}, {URI: "mongodb://localhost"}, {Database: "db"}} {
		if _, err := Connect(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "required") {
			t.Errorf("%+v: expected required error, got %v", cfg, err)
		}
	}
}

func TestConnectAndClose(t *testing.T) {
	uri := testutil.MongoURI(t)

	c, err := Connect(context.Background(), Config{URI: uri, Database: "devconnector_test", ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if c.DB.Name() != "devconnector_test" {
		t.Fatalf("unexpected database %s", c.DB.Name())
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
