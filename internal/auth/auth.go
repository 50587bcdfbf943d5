// Package auth guards the status surface with a shared bearer token.
//
// It carries no policy or storage of its own.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates an authentication token.
type Validator interface {
	Validate(token string) error
}

// StaticToken accepts exactly one shared token. An empty Token rejects everything.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Require rejects requests whose bearer token v does not accept.
func Require(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok || v.Validate(token) != nil {
			c.Header("WWW-Authenticate", `Bearer realm="evlctl"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}
