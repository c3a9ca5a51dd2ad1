package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCookieAttributes(t *testing.T) {
	c := NewCookie("value", CookieOptions{MaxAge: 7 * 24 * time.Hour, Secure: true})

	assert.Equal(t, "session", c.Name)
	assert.Equal(t, "value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestNewCookieInsecureOutsideProduction(t *testing.T) {
	c := NewCookie("value", CookieOptions{MaxAge: time.Hour})
	assert.False(t, c.Secure)
}

func TestClearCookie(t *testing.T) {
	c := ClearCookie(CookieOptions{Secure: true})

	assert.Equal(t, "session", c.Name)
	assert.Empty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.HttpOnly)
}
