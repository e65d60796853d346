// Package auth provides authentication and authorization functionality.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// keyLength is 32 bytes: PASETO v4.local requires a 256-bit symmetric key.
const keyLength = 32

// LoadOrGenerateKey returns the server's token encryption key. The key
// lives in <dataPath>/auth.key as hex; on first boot one is generated
// and persisted so tokens survive restarts.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, "auth.key")

	raw, err := os.ReadFile(keyPath) //#nosec G304 -- path derives from the validated data directory
	switch {
	case err == nil:
		return decodeKeyFile(raw)
	case errors.Is(err, fs.ErrNotExist):
		return generateKeyFile(dataPath, keyPath)
	default:
		return nil, fmt.Errorf("read auth key: %w", err)
	}
}

func decodeKeyFile(raw []byte) ([]byte, error) {
	encoded := strings.TrimSpace(string(raw))
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("auth key is not valid hex: %w", err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("auth key must be %d bytes, got %d", keyLength, len(key))
	}
	return key, nil
}

func generateKeyFile(dataPath, keyPath string) ([]byte, error) {
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("persist auth key: %w", err)
	}

	return key, nil
}
