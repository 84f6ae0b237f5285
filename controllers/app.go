package controllers

import (
	"time"

	"github.com/McTechie/tubecafe-backend/cache"
	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/mailer"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
)

// App carries the dependencies shared by every handler.
type App struct {
	Users         UserStore
	Videos        VideoStore
	Playlists     PlaylistStore
	Comments      CommentStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	ActionLogs    ActionLogStore
	Media         MediaService
	LikeCounts    cache.LikeCounts
	Mailer        mailer.Mailer

	Tokens   utils.TokenIssuer
	Cookies  utils.CookieOptions
	Paging   config.Paging
	ResetTTL time.Duration
	ResetURL string

	now func() time.Time
}

// Configure copies the token, cookie, paging and reset settings from cfg.
func (a *App) Configure(cfg config.Config) {
	a.Tokens = utils.TokenIssuer{
		AccessSecret:  cfg.Auth.AccessSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshSecret: cfg.Auth.RefreshSecret,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	}
	a.Cookies = utils.CookieOptions{
		Production: cfg.IsProduction(),
		Secure:     cfg.Cookie.Secure,
		Domain:     cfg.Cookie.Domain,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}
	a.Paging = cfg.Paging
	a.ResetTTL = cfg.Auth.ResetTTL
	a.ResetURL = cfg.Auth.ResetURL
}

func (a *App) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

func (a *App) page(c *gin.Context) utils.PageQuery {
	return utils.ParsePageQuery(c, a.Paging.DefaultLimit, a.Paging.MaxLimit)
}
