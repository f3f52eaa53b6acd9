package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes passwords with bcrypt over an HMAC-SHA256 of the
// password keyed by the deployment salt.
type CredentialVerifier struct {
	salt []byte
	cost int
}

func NewCredentialVerifier(salt string) (*CredentialVerifier, error) {
	if salt == "" {
		return nil, errors.New("password salt is required")
	}
	return &CredentialVerifier{salt: []byte(salt), cost: bcrypt.DefaultCost}, nil
}

func (v *CredentialVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(v.peppered(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v *CredentialVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), v.peppered(password)) == nil
}

// peppered keeps the bcrypt input at 64 bytes regardless of password length.
func (v *CredentialVerifier) peppered(password string) []byte {
	mac := hmac.New(sha256.New, v.salt)
	mac.Write([]byte(password))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
