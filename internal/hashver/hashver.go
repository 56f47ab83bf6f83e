// Package hashver implements the versioned password hashing registry.
//
// Every stored password hash carries an integer version tag identifying the
// algorithm that produced it. New hashes are always created with the current
// version, while verification dispatches on the stored tag, so an algorithm
// upgrade never invalidates existing credentials. Versions are append-only:
// an algorithm that ever wrote a hash to the database must remain in the
// registry forever.
package hashver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// CurrentVersion is the version every newly created hash is produced with.
const CurrentVersion = 1

var (
	// ErrUnknownHashVersion is returned when a hash or verification request
	// names a version that is not in the registry. Verification must never
	// fall back to another version.
	ErrUnknownHashVersion = errors.New("unknown password hash version")

	// ErrMalformedHash is returned when a stored hash string cannot be
	// parsed under its recorded version.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Argon2id parameters for version 1 (OWASP recommendation):
// 1 iteration, 64 MiB memory, 4 threads, 256-bit key, 128-bit salt.
const (
	v1Time    uint32 = 1
	v1Memory  uint32 = 64 * 1024
	v1Threads uint8  = 4
	v1KeyLen  uint32 = 32
	v1SaltLen        = 16
)

// Hash hashes password under the current version and returns the encoded
// hash string together with the version tag to store alongside it.
func Hash(password string) (string, int, error) {
	hash, err := HashVersion(password, CurrentVersion)
	return hash, CurrentVersion, err
}

// Current returns the version tag new registrations should use.
func Current() int { return CurrentVersion }

// HashVersion hashes password under a specific registry version.
func HashVersion(password string, version int) (string, error) {
	switch version {
	case 1:
		return hashV1(password)
	default:
		return "", ErrUnknownHashVersion
	}
}

// Verify reports whether password matches encodedHash under the given
// version. An unregistered version is a hard error, never a mismatch.
func Verify(password, encodedHash string, version int) (bool, error) {
	switch version {
	case 1:
		return verifyV1(password, encodedHash)
	default:
		return false, ErrUnknownHashVersion
	}
}

// hashV1 produces a PHC-formatted Argon2id hash:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<b64 salt>$<b64 key>
func hashV1(password string) (string, error) {
	salt := make([]byte, v1SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, v1Time, v1Memory, v1Threads, v1KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, v1Memory, v1Time, v1Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// verifyV1 re-derives the key with the parameters recorded in the hash
// string itself, so verification keeps working even if the v1 defaults above
// are ever retuned.
func verifyV1(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var argonVersion int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &argonVersion); err != nil {
		return false, ErrMalformedHash
	}
	if argonVersion != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
