// Package persist stores per-visitor console state under named keys, the
// way a browser keeps localStorage entries. Each key holds one JSON document.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
)

// Keys used by the console stores.
const (
	KeyAuth       = "tausepro-auth"
	KeyAuthToken  = "authToken"
	KeyAdminAuth  = "tausepro-admin-auth"
	KeyAdminToken = "adminAuthToken"
	KeyAdminStore = "tausepro-admin-store"
)

// Store is a key-value store scoped by console session.
//
// Error contract: Load returns sentinel.ErrNotFound (wrapped) for a missing
// key; Delete of a missing key is not an error.
type Store interface {
	Load(ctx context.Context, sessionID id.SessionID, key string) ([]byte, error)
	Save(ctx context.Context, sessionID id.SessionID, key string, data []byte) error
	Delete(ctx context.Context, sessionID id.SessionID, key string) error
}

// SaveJSON marshals v and saves it under key.
func SaveJSON(ctx context.Context, s Store, sessionID id.SessionID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Save(ctx, sessionID, key, data)
}

// LoadJSON loads key into v. found is false when the key does not exist.
// Undecodable documents are reported as sentinel.ErrCorrupt.
func LoadJSON(ctx context.Context, s Store, sessionID id.SessionID, key string, v any) (found bool, err error) {
	data, err := s.Load(ctx, sessionID, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %w", key, sentinel.ErrCorrupt, err)
	}
	return true, nil
}
