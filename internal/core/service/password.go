package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. N=16384, r=8, p=1 with a 64-byte key; salt is 16 random
// bytes. The stored form is "<hex hash>.<hex salt>".
const (
	scryptN      = 1 << 14
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives a salted scrypt hash encoded as hash.salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}
	return hex.EncodeToString(key) + "." + saltHex, nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in
// constant time.
func VerifyPassword(password, stored string) (bool, error) {
	hashHex, saltHex, ok := strings.Cut(stored, ".")
	if !ok || hashHex == "" || saltHex == "" {
		return false, errMalformedHash
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, errMalformedHash
	}

	got, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
