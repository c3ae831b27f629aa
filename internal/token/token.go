package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

var (
	ErrInvalid    = errors.New("token invalid")
	ErrExpired    = errors.New("token expired")
	ErrWrongClass = errors.New("wrong token class")
)

type claims struct {
	Class Class `json:"type"`
	jwt.RegisteredClaims
}

// Codec mints and parses signed bearer tokens. Tokens carry the subject
// user id, a class discriminator and an expiry; they are immutable once
// issued.
type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

func (c *Codec) Mint(userID int64, class Class, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// jti keeps two tokens minted within the same second distinct.
			ID: uuid.NewString(),
		},
	})
	return token.SignedString(c.secret)
}

// Parse verifies the signature and expiry and enforces the expected class.
// A refresh token is never accepted where an access token is expected and
// vice versa.
func (c *Codec) Parse(tokenStr string, want Class) (int64, error) {
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenStr, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpired
		}
		return 0, ErrInvalid
	}
	if !token.Valid {
		return 0, ErrInvalid
	}
	if parsed.Class != want {
		return 0, ErrWrongClass
	}
	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return userID, nil
}
