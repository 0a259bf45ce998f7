package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// ============================================================================
// Constants
// ============================================================================

// Hashing constants
const (
	SaltSize = 16 // 128 bits

	// Argon2id parameters (per RFC 9106 recommendations)
	Argon2Time      = 1         // 1 iteration
	Argon2Memory    = 64 * 1024 // 64 MB
	Argon2Threads   = 4         // 4 parallel threads
	Argon2KeyLength = 32        // 32 bytes
)

// Encoded hash layout: $argon2id$v=19$m=<KiB>,t=<iterations>,p=<threads>$<salt>$<key>
const (
	hashAlgorithm = "argon2id"
	hashFormat    = "$%s$v=%d$m=%d,t=%d,p=%d$%s$%s"
)

var b64 = base64.RawStdEncoding

// ============================================================================
// Hashing
// ============================================================================

// Hash derives an argon2id key from password with a random salt and returns
// it in the PHC string format understood by Verify.
func Hash(password []byte) (string, error) {
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	// Generate random salt
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := DeriveKey(password, salt)

	return fmt.Sprintf(hashFormat,
		hashAlgorithm,
		argon2.Version,
		Argon2Memory,
		Argon2Time,
		Argon2Threads,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// DeriveKey derives a key from password and salt using Argon2id with the
// package parameters.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(
		password,
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Threads,
		Argon2KeyLength,
	)
}
