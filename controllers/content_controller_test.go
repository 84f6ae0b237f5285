package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestUpdateUser(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")

	res := h.json(http.MethodPut, "/users/"+bob.ID.Hex(), map[string]string{"fullName": "Mallory"}, &alice)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "You can only update your own account", res.env.Message)

	res = h.json(http.MethodPut, "/users/"+alice.ID.Hex(), map[string]string{}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.json(http.MethodPut, "/users/"+alice.ID.Hex(), map[string]string{"username": "BOB"}, &alice)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = h.json(http.MethodPut, "/users/"+alice.ID.Hex(), map[string]string{"username": " Alice2 ", "fullName": "Alice Two"}, &alice)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	stored := h.users.get(alice.ID)
	assert.Equal(t, "alice2", stored.Username)
	assert.Equal(t, "Alice Two", stored.FullName)

	res = h.json(http.MethodPut, "/users/not-an-id", map[string]string{"fullName": "x"}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateUserRejectsBlankUsername(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")

	res := h.json(http.MethodPut, "/users/"+alice.ID.Hex(), map[string]string{"username": "   ", "fullName": "Still Alice"}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Username cannot be empty", res.env.Message)

	stored := h.users.get(alice.ID)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, alice.FullName, stored.FullName)
}

func TestUpdateAvatarReplacesOldAsset(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")

	res := h.multipart(http.MethodPut, "/users/update-avatar", nil, nil, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.multipart(http.MethodPut, "/users/update-avatar", nil, map[string]string{"avatar": "new.png"}, &alice)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Contains(t, h.users.get(alice.ID).Avatar, "users/avatars")
	assert.Equal(t, []string{alice.Avatar}, h.media.discarded)

	res = h.multipart(http.MethodPut, "/users/update-cover-image", nil, map[string]string{"coverImage": "wide.png"}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, h.users.get(alice.ID).CoverImage, "users/cover_images")
	// no previous cover to discard
	assert.Len(t, h.media.discarded, 1)
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")

	res := h.json(http.MethodDelete, "/users/"+bob.ID.Hex(), nil, &alice)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = h.json(http.MethodDelete, "/users/"+alice.ID.Hex(), nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, h.media.discarded, alice.Avatar)

	// the token outlives the account but no longer authenticates
	res = h.json(http.MethodGet, "/auth/me", nil, &alice)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestWatchHistoryIsPrivate(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")

	res := h.json(http.MethodGet, "/users/"+alice.ID.Hex()+"/watch-history", nil, &bob)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = h.json(http.MethodGet, "/users/"+alice.ID.Hex()+"/watch-history", nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, res.env.Metadata)
	assert.Equal(t, 1, res.env.Metadata.Page)
	assert.Equal(t, 10, res.env.Metadata.Limit)
	assert.JSONEq(t, "[]", string(res.env.Data))
}

func TestUploadVideo(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	fields := map[string]string{"title": " Intro ", "description": "First upload"}

	res := h.multipart(http.MethodPost, "/videos/upload", fields, map[string]string{"video": "clip.mp4"}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Thumbnail is required", res.env.Message)

	res = h.multipart(http.MethodPost, "/videos/upload", fields, map[string]string{"video": "clip.mp4", "thumbnail": "thumb.png"}, &alice)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var video models.Video
	res.into(t, &video)
	assert.Equal(t, "Intro", video.Title)
	assert.Equal(t, alice.ID, video.Owner)
	assert.False(t, video.IsPublished)
	assert.Equal(t, 12.5, video.Duration)
	assert.Contains(t, video.VideoURL, alice.ID.Hex()+"/videos")
	assert.Contains(t, video.Thumbnail, alice.ID.Hex()+"/thumbnails")
}

func TestGetVideoVisibilityAndViews(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	draft := h.videos.add(models.Video{Title: "draft", Owner: alice.ID})
	live := h.videos.add(models.Video{Title: "live", Owner: alice.ID, IsPublished: true})

	res := h.json(http.MethodGet, "/videos/"+draft.ID.Hex(), nil, &bob)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = h.json(http.MethodGet, "/videos/"+draft.ID.Hex(), nil, &alice)
	assert.Equal(t, http.StatusOK, res.Code)

	res = h.json(http.MethodGet, "/videos/"+live.ID.Hex(), nil, &bob)
	require.Equal(t, http.StatusOK, res.Code)
	var got models.Video
	res.into(t, &got)
	assert.Equal(t, int64(0), got.Views)

	res = h.json(http.MethodGet, "/videos/"+live.ID.Hex()+"?incrementView=true", nil, &bob)
	require.Equal(t, http.StatusOK, res.Code)
	res.into(t, &got)
	assert.Equal(t, int64(1), got.Views)

	res = h.json(http.MethodGet, "/videos/"+live.ID.Hex(), map[string]bool{"incrementView": true}, &bob)
	require.Equal(t, http.StatusOK, res.Code)
	res.into(t, &got)
	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, []bson.ObjectID{live.ID}, h.users.get(bob.ID).WatchHistory)

	res = h.json(http.MethodGet, "/videos/"+live.ID.Hex()+"?incrementView=maybe", nil, &bob)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.json(http.MethodGet, "/videos/"+bson.NewObjectID().Hex(), nil, &bob)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestToggleAndUpdateVideo(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	video := h.videos.add(models.Video{Title: "t", Owner: alice.ID})
	path := "/videos/toggle-publish/" + video.ID.Hex()

	res := h.json(http.MethodPut, path, nil, &bob)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = h.json(http.MethodPut, path, nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, h.videos.videos[video.ID].IsPublished)

	res = h.json(http.MethodPut, path, map[string]bool{"isPublished": true}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, h.videos.videos[video.ID].IsPublished)

	res = h.json(http.MethodPut, path, nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.False(t, h.videos.videos[video.ID].IsPublished)

	res = h.json(http.MethodPatch, "/videos/"+video.ID.Hex(), map[string]string{}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Title or description is required", res.env.Message)

	res = h.json(http.MethodPatch, "/videos/"+video.ID.Hex(), map[string]string{"description": " new words "}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "new words", h.videos.videos[video.ID].Description)
	assert.Equal(t, "t", h.videos.videos[video.ID].Title)
}

func TestUpdateVideoAsset(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	video := h.videos.add(models.Video{Title: "t", Owner: alice.ID, VideoURL: "https://cdn.test/old.mp4", Thumbnail: "https://cdn.test/old.png"})
	path := "/videos/" + video.ID.Hex() + "/update-asset"

	res := h.multipart(http.MethodPatch, path, nil, nil, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.multipart(http.MethodPatch, path, nil, map[string]string{"thumbnail": "new.png"}, &alice)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, []string{"https://cdn.test/old.png"}, h.media.discarded)
	assert.Equal(t, "https://cdn.test/old.mp4", h.videos.videos[video.ID].VideoURL)
	assert.Contains(t, h.videos.videos[video.ID].Thumbnail, "new.png")
}

func TestDeleteVideo(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	video := h.videos.add(models.Video{Owner: alice.ID, VideoURL: "https://cdn.test/v.mp4", Thumbnail: "https://cdn.test/t.png", IsPublished: true})
	h.likeCounts.Set(context.Background(), models.ResourceVideo, video.ID, 4)

	res := h.json(http.MethodDelete, "/videos/"+video.ID.Hex(), nil, &bob)
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Empty(t, h.media.discarded)

	res = h.json(http.MethodDelete, "/videos/"+video.ID.Hex(), nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.ElementsMatch(t, []string{"https://cdn.test/v.mp4", "https://cdn.test/t.png"}, h.media.discarded)
	_, cached := h.likeCounts.Get(context.Background(), models.ResourceVideo, video.ID)
	assert.False(t, cached)
}

func TestCreatePlaylist(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")

	res := h.multipart(http.MethodPost, "/playlists", map[string]string{"title": "Mix"}, nil, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.multipart(http.MethodPost, "/playlists", map[string]string{"title": "Mix", "description": "Best of"}, map[string]string{"thumbnail": "p.png"}, &alice)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var playlist models.Playlist
	res.into(t, &playlist)
	assert.Equal(t, alice.ID, playlist.Owner)
	assert.Contains(t, playlist.Thumbnail, alice.ID.Hex()+"/playlists")
	assert.False(t, playlist.IsPublished)
	assert.Empty(t, playlist.Videos)
}

func TestAddAndRemovePlaylistVideo(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	playlist := h.playlists.add(models.Playlist{Owner: alice.ID})
	video := h.videos.add(models.Video{Owner: bob.ID, IsPublished: true})
	hidden := h.videos.add(models.Video{Owner: bob.ID})
	add := "/playlists/add/" + playlist.ID.Hex()

	res := h.json(http.MethodPatch, add, map[string]string{"videoId": video.ID.Hex()}, &bob)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = h.json(http.MethodPatch, add, map[string]string{"videoId": hidden.ID.Hex()}, &alice)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = h.json(http.MethodPatch, add, map[string]string{"videoId": video.ID.Hex()}, &alice)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var updated models.Playlist
	res.into(t, &updated)
	require.Len(t, updated.Videos, 1)
	assert.Equal(t, 1, updated.Videos[0].Order)

	res = h.json(http.MethodPatch, add, map[string]string{"videoId": video.ID.Hex()}, &alice)
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "Video already in playlist", res.env.Message)

	remove := "/playlists/remove/" + playlist.ID.Hex()
	res = h.json(http.MethodPatch, remove, map[string]string{"videoId": hidden.ID.Hex()}, &alice)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = h.json(http.MethodPatch, remove, map[string]string{"videoId": video.ID.Hex()}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, h.playlists.playlists[playlist.ID].Videos)
}

func TestReorderPlaylist(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	a, b, c := bson.NewObjectID(), bson.NewObjectID(), bson.NewObjectID()
	playlist := h.playlists.add(models.Playlist{Owner: alice.ID, Videos: []models.PlaylistVideo{
		{Video: a, Order: 1}, {Video: b, Order: 2}, {Video: c, Order: 5},
	}})
	path := "/playlists/reorder/" + playlist.ID.Hex()

	res := h.json(http.MethodPatch, path, map[string]int{"currentIdx": 0, "destinationIdx": 3}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Index out of range", res.env.Message)

	res = h.json(http.MethodPatch, path, map[string]int{"currentIdx": 0}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.json(http.MethodPatch, path, map[string]int{"currentIdx": 0, "destinationIdx": 2}, &alice)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Equal(t, []models.PlaylistVideo{
		{Video: b, Order: 1}, {Video: c, Order: 2}, {Video: a, Order: 3},
	}, h.playlists.playlists[playlist.ID].Videos)
}

func TestPlaylistVisibility(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	bob := h.user("bob")
	playlist := h.playlists.add(models.Playlist{Owner: alice.ID, Videos: []models.PlaylistVideo{{Video: bson.NewObjectID(), Order: 1}}})

	res := h.json(http.MethodGet, "/playlists/"+playlist.ID.Hex(), nil, &bob)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = h.json(http.MethodPatch, "/playlists/toggle-publish/"+playlist.ID.Hex(), nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)

	res = h.json(http.MethodGet, "/playlists/videos/"+playlist.ID.Hex(), nil, &bob)
	require.Equal(t, http.StatusOK, res.Code)
	res = h.json(http.MethodGet, "/playlists/videos/"+playlist.ID.Hex(), nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []bool{false, true}, h.playlists.canEdit)

	var entries []models.PlaylistEntry
	res.into(t, &entries)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsReorderable)
}

func TestUpdateAndDeletePlaylist(t *testing.T) {
	h := newHarness(t)
	alice := h.user("alice")
	playlist := h.playlists.add(models.Playlist{Owner: alice.ID, Title: "old", Thumbnail: "https://cdn.test/p.png"})

	res := h.json(http.MethodPatch, "/playlists/"+playlist.ID.Hex(), map[string]string{}, &alice)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = h.json(http.MethodPatch, "/playlists/"+playlist.ID.Hex(), map[string]string{"title": "new"}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "new", h.playlists.playlists[playlist.ID].Title)

	res = h.multipart(http.MethodPatch, "/playlists/update-thumbnail/"+playlist.ID.Hex(), nil, map[string]string{"thumbnail": "q.png"}, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, []string{"https://cdn.test/p.png"}, h.media.discarded)

	res = h.json(http.MethodDelete, "/playlists/"+playlist.ID.Hex(), nil, &alice)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, h.media.discarded, 2)
	assert.NotContains(t, h.playlists.playlists, playlist.ID)
}
