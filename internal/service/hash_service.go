package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params bundles the Argon2id cost settings. Each encoded hash
// carries its own copy, so stored operator passwords keep verifying
// after the defaults change.
type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

var defaultArgon2Params = argon2Params{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

// Argon2HashService implements ports.HashService. Hashes use the PHC
// string format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<digest>.
type Argon2HashService struct {
	params argon2Params
}

// NewArgon2HashService creates a hash service with the default costs.
func NewArgon2HashService() *Argon2HashService {
	return &Argon2HashService{params: defaultArgon2Params}
}

// Hash derives an Argon2id digest of password under a fresh random salt.
func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, s.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt,
		s.params.time, s.params.memory, s.params.threads, s.params.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.params.memory, s.params.time, s.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify recomputes the digest with the parameters embedded in
// encodedHash and compares in constant time.
func (s *Argon2HashService) Verify(password, encodedHash string) (bool, error) {
	params, salt, want, err := parseArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt,
		params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

func parseArgon2Hash(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, fmt.Errorf("malformed argon2 hash")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("parsing argon2 version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("parsing argon2 params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding digest: %w", err)
	}
	p.keyLen = uint32(len(digest))

	return p, salt, digest, nil
}
