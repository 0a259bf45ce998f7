package crypto

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrMismatch      = errors.New("wrong password")
	ErrMalformedHash = errors.New("malformed hash")
)

// Ceilings on parameters read from a hash, so a crafted hash cannot make
// Verify allocate or spin without bound. Memory is in KiB (4 GiB).
const (
	maxArgon2Memory = 4 * 1024 * 1024
	maxArgon2Time   = 64
)

// params are the argon2id settings recorded in an encoded hash.
type params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// Verify checks password against an encoded hash produced by Hash.
// The parameters stored in the hash are used, not the current defaults.
func Verify(password []byte, encoded string) error {
	p, err := parseHash(encoded)
	if err != nil {
		return err
	}

	key := argon2.IDKey(password, p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	if subtle.ConstantTimeCompare(key, p.key) != 1 {
		return ErrMismatch
	}

	return nil
}

func parseHash(encoded string) (*params, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(strings.TrimSpace(encoded), "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected 5 '$'-separated fields", ErrMalformedHash)
	}

	if parts[1] != hashAlgorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: bad version field: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrMalformedHash, version)
	}

	p := &params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("%w: bad parameter field: %v", ErrMalformedHash, err)
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return nil, fmt.Errorf("%w: parameters must be positive", ErrMalformedHash)
	}
	if p.memory > maxArgon2Memory {
		return nil, fmt.Errorf("%w: memory %d KiB exceeds %d", ErrMalformedHash, p.memory, maxArgon2Memory)
	}
	if p.time > maxArgon2Time {
		return nil, fmt.Errorf("%w: time %d exceeds %d", ErrMalformedHash, p.time, maxArgon2Time)
	}

	var err error
	if p.salt, err = b64.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: bad salt: %v", ErrMalformedHash, err)
	}
	if p.key, err = b64.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: bad key: %v", ErrMalformedHash, err)
	}
	if len(p.key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrMalformedHash)
	}

	return p, nil
}
