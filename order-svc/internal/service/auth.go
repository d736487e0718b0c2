package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

const adminTokenPrefix = "fd_"

// StaticTokenAuth issues one bearer token derived from the admin password.
// The token never changes while the password stays the same.
type StaticTokenAuth struct {
	password string
	token    string
}

func NewStaticTokenAuth(password, salt string) *StaticTokenAuth {
	return &StaticTokenAuth{
		password: password,
		token:    AdminToken(password, salt),
	}
}

// AdminToken is "fd_" followed by the first 32 hex chars of sha256(password+salt).
func AdminToken(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return adminTokenPrefix + hex.EncodeToString(sum[:])[:32]
}

func (a *StaticTokenAuth) Login(password string) (string, error) {
	if password == "" || subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", ErrInvalidCredentials
	}
	return a.token, nil
}

func (a *StaticTokenAuth) Authorize(token string) bool {
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1
}
