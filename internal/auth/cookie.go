package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie writes and clears the cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge int
}

func (s SessionCookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, s.MaxAge, "/", "", s.Secure, true)
}

func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

func (s SessionCookie) Read(c *gin.Context) string {
	v, err := c.Cookie(s.Name)
	if err != nil {
		return ""
	}
	return v
}
