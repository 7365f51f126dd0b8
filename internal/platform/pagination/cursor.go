// Package pagination pages ordered result sets with opaque keyset cursors and
// RFC 8288 Link headers.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCursor means the cursor is malformed, belongs to another
// resource, or points at an item that no longer exists.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position after which the next page starts.
type Cursor struct {
	Kind string // resource the cursor was issued for
	Key  string // key of the last item on the previous page
}

// Encode returns a URL-safe opaque form of c.
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Kind + ":" + c.Key))
}

// DecodeCursor parses an encoded cursor of the given kind. An empty string is
// the zero cursor.
func DecodeCursor(s, kind string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	k, key, ok := strings.Cut(string(b), ":")
	if !ok || k != kind || key == "" {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Kind: k, Key: key}, nil
}
