package handler

import (
	"net/http"
	"time"
)

const refreshCookieName = "refresh_token"

// cookiePath keeps the refresh token off every request except the auth
// endpoints themselves.
const cookiePath = "/api/auth"

// sessionCookies writes and clears the HttpOnly refresh-token cookie.
type sessionCookies struct {
	secure     bool
	refreshTTL time.Duration
}

func (c sessionCookies) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     cookiePath,
		MaxAge:   int(c.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     cookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
