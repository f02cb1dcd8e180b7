// Package password hashes and verifies passwords with argon2id.
//
// Hashes use the PHC string format understood by other argon2 libraries:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<key>
//
// Salt and key are unpadded standard base64.  Every failure is an
// *apperr.HashingError, so handlers pass it straight to apperr.From.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/yanizio/adept-api/internal/apperr"
)

// Params are the argon2id cost parameters.
type Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams follow the OWASP minimum for argon2id.
var DefaultParams = Params{Memory: 19 * 1024, Time: 2, Threads: 1, SaltLen: 16, KeyLen: 32}

// Upper bounds accepted from a stored hash.
const (
	maxMemory = 1 << 20 // 1 GiB
	maxTime   = 16
)

var (
	ErrInvalidHash         = errors.New("invalid argon2 hash encoding")
	ErrIncompatibleVariant = errors.New("unsupported argon2 variant")
	ErrIncompatibleVersion = errors.New("unsupported argon2 version")
)

// Hash derives a PHC-encoded hash of plain with DefaultParams.
func Hash(plain string) (string, error) {
	return HashWith(plain, DefaultParams)
}

// HashWith is Hash with explicit parameters.
func HashWith(plain string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", failure(err)
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify checks plain against encoded.  It returns nil on a match, a
// PasswordMismatch HashingError on a wrong password, and a HashFailure
// HashingError when encoded cannot be used.
func Verify(encoded, plain string) error {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return failure(err)
	}
	other := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	if subtle.ConstantTimeCompare(key, other) != 1 {
		return &apperr.HashingError{Kind: apperr.PasswordMismatch}
	}
	return nil
}

func decode(encoded string) (p Params, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, ErrInvalidHash
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, ErrIncompatibleVariant
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVersion
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	if p.Memory == 0 || p.Memory > maxMemory || p.Time == 0 || p.Time > maxTime || p.Threads == 0 {
		return p, nil, nil, fmt.Errorf("%w: parameters out of range", ErrInvalidHash)
	}

	b64 := base64.RawStdEncoding
	if salt, err = b64.DecodeString(parts[4]); err != nil || len(salt) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	if key, err = b64.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

func failure(err error) error {
	return &apperr.HashingError{Kind: apperr.HashFailure, Err: err}
}
