package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/middleware"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	t             *testing.T
	app           *App
	users         *fakeUsers
	videos        *fakeVideos
	playlists     *fakePlaylists
	comments      *fakeComments
	likes         *fakeLikes
	subscriptions *fakeSubscriptions
	actionLogs    *fakeActionLogs
	media         *fakeMedia
	likeCounts    *fakeLikeCounts
	mailer        *fakeMailer
	engine        *gin.Engine
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:             t,
		users:         newFakeUsers(),
		videos:        newFakeVideos(),
		playlists:     newFakePlaylists(),
		comments:      newFakeComments(),
		likes:         newFakeLikes(),
		subscriptions: newFakeSubscriptions(),
		actionLogs:    &fakeActionLogs{},
		media:         &fakeMedia{duration: 12.5},
		likeCounts:    &fakeLikeCounts{counts: map[string]int64{}},
		mailer:        &fakeMailer{},
	}
	h.app = &App{
		Users:         h.users,
		Videos:        h.videos,
		Playlists:     h.playlists,
		Comments:      h.comments,
		Likes:         h.likes,
		Subscriptions: h.subscriptions,
		ActionLogs:    h.actionLogs,
		Media:         h.media,
		LikeCounts:    h.likeCounts,
		Mailer:        h.mailer,
		Tokens: utils.TokenIssuer{
			AccessSecret:  "access-secret",
			AccessTTL:     time.Minute,
			RefreshSecret: "refresh-secret",
			RefreshTTL:    time.Hour,
		},
		Cookies:  utils.CookieOptions{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Paging:   config.Paging{DefaultLimit: 10, MaxLimit: 100},
		ResetTTL: 15 * time.Minute,
		ResetURL: "https://app.test/reset-password",
	}
	h.engine = h.routes()
	return h
}

func (h *harness) routes() *gin.Engine {
	a := h.app
	r := gin.New()
	auth := middleware.Auth(a.Tokens, a.Users)

	r.POST("/auth/register", a.RegisterUser())
	r.POST("/auth/login", a.LoginUser())
	r.POST("/auth/refresh-token", a.RefreshAccessToken())
	r.POST("/auth/forgot-password", a.ForgotPassword())
	r.PATCH("/auth/reset-password/:token", a.ResetPassword())
	r.POST("/auth/logout", auth, a.LogoutUser())
	r.GET("/auth/me", auth, a.GetCurrentUser())
	r.POST("/auth/change-password", auth, a.ChangePassword())

	r.GET("/users", auth, a.GetUsers())
	r.PUT("/users/update-avatar", auth, a.UpdateAvatar())
	r.PUT("/users/update-cover-image", auth, a.UpdateCoverImage())
	r.GET("/users/:id", auth, a.GetUser())
	r.PUT("/users/:id", auth, a.UpdateUser())
	r.DELETE("/users/:id", auth, a.DeleteUser())
	r.GET("/users/:id/watch-history", auth, a.GetWatchHistory())

	r.GET("/channels/:username", auth, a.GetChannelProfile())
	r.GET("/channels/:username/videos", auth, a.GetChannelVideos())
	r.GET("/channels/:username/videos/:id", auth, a.GetChannelVideo())
	r.GET("/channels/:username/playlists", auth, a.GetChannelPlaylists())
	r.POST("/channels/:username/subscribe", auth, a.Subscribe())
	r.DELETE("/channels/:username/subscribe", auth, a.Unsubscribe())
	r.GET("/channels/:username/subscribers", auth, a.GetSubscribers())

	r.GET("/videos", auth, a.GetVideos())
	r.POST("/videos/upload", auth, a.UploadVideo())
	r.PUT("/videos/toggle-publish/:id", auth, a.ToggleVideoPublish())
	r.GET("/videos/:id", auth, a.GetVideo())
	r.PATCH("/videos/:id", auth, a.UpdateVideo())
	r.PATCH("/videos/:id/update-asset", auth, a.UpdateVideoAsset())
	r.DELETE("/videos/:id", auth, a.DeleteVideo())

	r.POST("/playlists", auth, a.CreatePlaylist())
	r.GET("/playlists/videos/:id", auth, a.GetPlaylistVideos())
	r.GET("/playlists/:id", auth, a.GetPlaylist())
	r.PATCH("/playlists/add/:id", auth, a.AddVideoToPlaylist())
	r.PATCH("/playlists/remove/:id", auth, a.RemoveVideoFromPlaylist())
	r.PATCH("/playlists/reorder/:id", auth, a.ReorderPlaylist())
	r.PATCH("/playlists/toggle-publish/:id", auth, a.TogglePlaylistPublish())
	r.PATCH("/playlists/update-thumbnail/:id", auth, a.UpdatePlaylistThumbnail())
	r.PATCH("/playlists/:id", auth, a.UpdatePlaylist())
	r.DELETE("/playlists/:id", auth, a.DeletePlaylist())

	r.POST("/comments", auth, a.CreateComment())
	r.GET("/comments/video/:videoId", auth, a.GetVideoComments())
	r.GET("/comments/:id/replies", auth, a.GetCommentReplies())
	r.POST("/comments/:id/reply", auth, a.ReplyToComment())
	r.DELETE("/comments/:id", auth, a.DeleteComment())

	r.POST("/likes/resource/:resourceId", auth, a.LikeResource())
	r.DELETE("/likes/resource/:resourceId", auth, a.UnlikeResource())
	r.GET("/likes/count/:resourceId", auth, a.GetLikeCount())

	r.GET("/admin/action-logs", auth, middleware.RequireAdmin(), a.GetActionLogs())
	return r
}

func (h *harness) user(username string) models.User {
	hash, err := utils.HashPassword("secret123")
	require.NoError(h.t, err)
	return h.users.add(models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
		Password: hash,
		Avatar:   "https://cdn.test/avatars/" + username + ".png",
	})
}

type envelope struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Success    bool                `json:"success"`
	Errors     []string            `json:"errors"`
	Metadata   *utils.PageMetadata `json:"metadata"`
}

type response struct {
	*httptest.ResponseRecorder
	env envelope
}

func (r response) into(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.env.Data, v))
}

func (h *harness) send(req *http.Request, as *models.User) response {
	h.t.Helper()
	if as != nil {
		token, err := h.app.Tokens.GenerateAccessToken(*as)
		require.NoError(h.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	res := response{ResponseRecorder: w}
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &res.env), w.Body.String())
	}
	return res
}

func (h *harness) json(method, path string, body any, as *models.User) response {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(req, as)
}

func (h *harness) multipart(method, path string, fields map[string]string, files map[string]string, as *models.User) response {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(h.t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(h.t, err)
		_, err = fw.Write([]byte("file-bytes"))
		require.NoError(h.t, err)
	}
	require.NoError(h.t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.send(req, as)
}
