// Package localstore is the practice client's durable key-value substrate,
// the counterpart of a browser's localStorage.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("localstore: key not found")
	ErrMalformed = errors.New("localstore: malformed value")
)

// Store holds string values under string keys. Implementations are safe for
// concurrent use; every Set is a single atomic overwrite.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Keys returns all keys in ascending order.
	Keys() ([]string, error)
	Close() error
}

const envelopeVersion = 1

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// SaveJSON stores v wrapped in a versioned envelope.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: envelopeVersion, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// LoadJSON decodes the value under key into v. Values written before the
// envelope existed (plain JSON) are accepted as well.
func LoadJSON(s Store, key string, v any) error {
	raw, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return DecodeJSON(raw, v)
}

// DecodeJSON unwraps an enveloped or bare JSON value.
func DecodeJSON(raw string, v any) error {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Version > 0 && env.Data != nil {
		if env.Version != envelopeVersion {
			return fmt.Errorf("%w: unsupported version %d", ErrMalformed, env.Version)
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
