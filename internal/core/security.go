// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/apptnu/portal/internal/config"
)

const saltLength = 16

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// PasswordHasher produces and checks argon2id hashes in PHC string format.
type PasswordHasher struct {
	params argonParams

	dummyOnce sync.Once
	dummyHash string
}

func NewPasswordHasher(cfg config.PasswordConfig) *PasswordHasher {
	return &PasswordHasher{
		params: argonParams{
			memory:  cfg.Memory,
			time:    cfg.Time,
			threads: cfg.Threads,
			keyLen:  cfg.KeyLen,
		},
	}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := h.params
	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches encodedHash. When the hash was
// produced with different parameters a fresh hash is returned as well.
func (h *PasswordHasher) Verify(
	password, encodedHash string,
) (bool, string, error) {
	params, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, "", err
	}

	otherHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		params.keyLen,
	)

	if subtle.ConstantTimeCompare(hash, otherHash) != 1 {
		return false, "", nil
	}

	if *params == h.params {
		return true, "", nil
	}

	newHash, hashErr := h.Hash(password)
	if hashErr != nil {
		//nolint:nilerr // password verified; rehash failure is non-critical
		return true, "", nil
	}
	return true, newHash, nil
}

// VerifyTimingSafe runs a full derivation even when no stored hash
// exists, so unknown accounts take as long as wrong passwords.
func (h *PasswordHasher) VerifyTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		//nolint:errcheck // result discarded on purpose
		_, _, _ = h.Verify(password, h.dummy())
		return false, "", nil
	}

	return h.Verify(password, *encodedHash)
}

func (h *PasswordHasher) dummy() string {
	h.dummyOnce.Do(func() {
		hash, err := h.Hash("dummy_password_for_timing_attack_prevention")
		if err != nil {
			panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
		}
		h.dummyHash = hash
	})
	return h.dummyHash
}

func decodeHash(encodedHash string) (*argonParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid version: %w", err)
	}

	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	params := &argonParams{}
	_, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: argon2id output is a few dozen bytes
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}
