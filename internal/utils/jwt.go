package utils // package utils provides helpers for session token creation and verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidSession covers every way a presented session token can fail:
// malformed, bad signature, expired, or missing the identity claims. Callers
// treat it as "unauthenticated", never as a fatal error.
var ErrInvalidSession = errors.New("invalid session token")

// SessionToken is a signed, self-contained session credential. The Token
// field carries the serialized JWT that goes into the session cookie and Exp
// its UTC expiration time. There is no server-side session table: the token
// is the session.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// NewSessionToken builds and signs an HS256 JWT binding a user ID and
// display name for ttlDays days. The claims are sub (user ID), name,
// exp and iat.
func NewSessionToken(secret, userID, name string, ttlDays int) (SessionToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry and returns the identity
// the token binds. Any failure comes back as ErrInvalidSession.
func ParseSessionToken(secret, raw string) (userID, name string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; the signing method is
		// part of what the signature protects.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidSession
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidSession
	}
	userID, ok = claims["sub"].(string)
	if !ok || userID == "" {
		return "", "", ErrInvalidSession
	}
	name, _ = claims["name"].(string)
	return userID, name, nil
}
