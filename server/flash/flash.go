// Package flash carries one-shot user messages across a redirect in a signed
// cookie.
package flash

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "gallery_flash"
	cookieTTL  = 5 * time.Minute
	issuer     = "gallery"
)

var signingMethod = jwt.SigningMethodHS256

type claims struct {
	Messages []string `json:"messages"`
	jwt.RegisteredClaims
}

// Codec signs and verifies flash cookies with the server secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("flash secret is required")
	}

	return &Codec{secret: []byte(secret), now: time.Now}, nil
}

// Add appends a message to any pending ones and rewrites the cookie.
func (c *Codec) Add(w http.ResponseWriter, r *http.Request, message string) error {
	messages := c.peek(r)
	messages = append(messages, message)

	now := c.now()
	token := jwt.NewWithClaims(signingMethod, claims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieTTL)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("signing flash cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Pop returns pending messages and clears the cookie. Missing, expired or
// tampered cookies yield no messages.
func (c *Codec) Pop(w http.ResponseWriter, r *http.Request) []string {
	if _, err := r.Cookie(CookieName); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.peek(r)
}

func (c *Codec) peek(r *http.Request) []string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	parsed := &claims{}
	_, err = jwt.ParseWithClaims(
		cookie.Value,
		parsed,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != signingMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil
	}

	return parsed.Messages
}
