package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Sensible defaults for a family-scale app; the
// threat model is opportunistic, not targeted.
const (
	hashMemory      uint32 = 64 * 1024
	hashIterations  uint32 = 3
	hashParallelism uint8  = 4
	hashSaltLength         = 16
	hashKeyLength   uint32 = 32

	// Cap password length so a huge input can't burn CPU during hashing.
	maxPasswordLength = 1024
)

// HashPassword creates an Argon2id hash of the password in the standard
// "$argon2id$v=..$m=..,t=..,p=..$salt$hash" encoded form.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if len(password) > maxPasswordLength {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, hashIterations, hashMemory, hashParallelism, hashKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory, hashIterations, hashParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// VerifyPassword checks a password against an encoded Argon2id hash.
// A malformed hash simply fails verification; no details leak.
func VerifyPassword(encodedHash, password string) (bool, error) {
	// Oversize input is rejected before any expensive work.
	if len(password) > maxPasswordLength {
		return false, nil
	}

	decoded, err := decodeHash(encodedHash)
	if err != nil {
		//nolint:nilerr // malformed hashes fail closed without detail
		return false, nil
	}

	candidate := argon2.IDKey([]byte(password), decoded.salt,
		decoded.iterations, decoded.memory, decoded.parallelism,
		uint32(len(decoded.digest))) //nolint:gosec // digest length is bounded by the encoded form

	// Constant-time compare.
	return subtle.ConstantTimeCompare(decoded.digest, candidate) == 1, nil
}

// decodedHash carries the salt, digest and cost parameters parsed from
// an encoded hash; verification re-runs Argon2 with the stored costs so
// old hashes keep working if the defaults change.
type decodedHash struct {
	salt        []byte
	digest      []byte
	memory      uint32
	iterations  uint32
	parallelism uint8
}

func decodeHash(encoded string) (*decodedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("incompatible version: %d", version)
	}

	d := &decodedHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.memory, &d.iterations, &d.parallelism); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if d.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("invalid hash encoding: %w", err)
	}

	return d, nil
}
