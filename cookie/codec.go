package cookie

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned when a serialized cookie cannot be decoded.
var ErrInvalidPayload = errors.New("invalid cookie payload")

// maxPayload keeps serialized values under the common 4KiB browser limit.
const maxPayload = 3800

// Serialize encodes v as base64url JSON suitable for a cookie value.
func Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize cookie: %w", err)
	}
	out := base64.RawURLEncoding.EncodeToString(data)
	if len(out) > maxPayload {
		return "", fmt.Errorf("serialize cookie: payload of %d bytes exceeds %d", len(out), maxPayload)
	}
	return out, nil
}

// Deserialize decodes a value produced by Serialize into v.
func Deserialize(raw string, v any) error {
	if raw == "" {
		return ErrInvalidPayload
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
