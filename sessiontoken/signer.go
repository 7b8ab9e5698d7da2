// Package sessiontoken signs the browser session cookie that points at a server side session.
package sessiontoken

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer  = "go-youtube-uploader"
	keyInfo = "session-cookie-v1"
	keySize = 32
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// Claims identifies the server side session a cookie belongs to.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Signer issues and parses HS256 session tokens.
type Signer struct {
	key     []byte
	nowTime func() time.Time
}

type Option func(*Signer)

func WithNowTime(now func() time.Time) Option {
	return func(s *Signer) {
		s.nowTime = now
	}
}

// NewSigner derives the signing key from secret with HKDF-SHA256. An empty
// secret yields a random key, so cookies do not survive a restart.
func NewSigner(secret string, options ...Option) (*Signer, error) {
	ikm := []byte(secret)
	if len(ikm) == 0 {
		ikm = make([]byte, keySize)
		if _, err := rand.Read(ikm); err != nil {
			return nil, errors.Wrap(err, "[sessiontoken NewSigner] failed to generate secret")
		}
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, []byte(keyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "[sessiontoken NewSigner] failed to derive key")
	}

	s := &Signer{key: key, nowTime: time.Now}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Sign returns a token for sessionID valid for ttl.
func (s *Signer) Sign(sessionID string, ttl time.Duration) (string, error) {
	if sessionID == "" {
		return "", errors.New("session id is required")
	}
	now := s.nowTime()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

// Parse validates raw and returns the session id it carries.
func (s *Signer) Parse(raw string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowTime),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.SessionID == "" {
		return "", errors.Wrap(ErrInvalidToken, "missing session id")
	}
	return claims.SessionID, nil
}

func (s *Signer) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.key, nil
}
