package handler

import (
	"net/http"
	"time"

	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
)

const oauthStateCookie = "oauth_state"

// CookieConfig controls how session cookies are written.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// cookieJar writes and clears the accessToken/refreshToken pair. Both are
// HttpOnly so scripts cannot read them; SameSite=Lax keeps them off
// cross-site POSTs.
type cookieJar struct {
	cfg CookieConfig
}

func (c cookieJar) setTokens(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, c.cookie(auth.AccessTokenCookie, pair.AccessToken, c.cfg.AccessTTL))
	http.SetCookie(w, c.cookie(auth.RefreshTokenCookie, pair.RefreshToken, c.cfg.RefreshTTL))
}

func (c cookieJar) clearTokens(w http.ResponseWriter) {
	http.SetCookie(w, c.expired(auth.AccessTokenCookie))
	http.SetCookie(w, c.expired(auth.RefreshTokenCookie))
}

func (c cookieJar) setState(w http.ResponseWriter, state string) {
	http.SetCookie(w, c.cookie(oauthStateCookie, state, 10*time.Minute))
}

func (c cookieJar) clearState(w http.ResponseWriter) {
	http.SetCookie(w, c.expired(oauthStateCookie))
}

func (c cookieJar) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c cookieJar) expired(name string) *http.Cookie {
	ck := c.cookie(name, "", 0)
	ck.MaxAge = -1
	return ck
}
