package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type CookieOptions struct {
	Production bool
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (o CookieOptions) cookie(name, value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure || o.Production,
		SameSite: http.SameSiteLaxMode,
	}
	if o.Production {
		ck.SameSite = http.SameSiteNoneMode // for cross-site
	}
	return ck
}

func SetAuthCookies(c *gin.Context, o CookieOptions, accessToken, refreshToken string) {
	http.SetCookie(c.Writer, o.cookie(AccessTokenCookie, accessToken, int(o.AccessTTL.Seconds())))
	http.SetCookie(c.Writer, o.cookie(RefreshTokenCookie, refreshToken, int(o.RefreshTTL.Seconds())))
}

func ClearAuthCookies(c *gin.Context, o CookieOptions) {
	http.SetCookie(c.Writer, o.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(c.Writer, o.cookie(RefreshTokenCookie, "", -1))
}
