package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/dto"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (a *App) visiblePlaylist(c *gin.Context) (models.Playlist, models.User, error) {
	user, err := actor(c)
	if err != nil {
		return models.Playlist{}, models.User{}, err
	}
	id, err := utils.ParseObjectID(c.Param("id"), "playlist id")
	if err != nil {
		return models.Playlist{}, user, err
	}
	playlist, err := a.Playlists.FindByID(c.Request.Context(), id)
	if err != nil {
		return models.Playlist{}, user, storeError(err, "Playlist not found")
	}
	if !playlist.VisibleTo(user.ID) {
		return models.Playlist{}, user, utils.NewApiError(http.StatusNotFound, "Playlist not found")
	}
	return playlist, user, nil
}

func (a *App) ownedPlaylist(c *gin.Context) (models.Playlist, models.User, error) {
	user, err := actor(c)
	if err != nil {
		return models.Playlist{}, models.User{}, err
	}
	id, err := utils.ParseObjectID(c.Param("id"), "playlist id")
	if err != nil {
		return models.Playlist{}, user, err
	}
	playlist, err := a.Playlists.FindByID(c.Request.Context(), id)
	if err != nil {
		return models.Playlist{}, user, storeError(err, "Playlist not found")
	}
	if playlist.Owner != user.ID {
		return models.Playlist{}, user, utils.NewApiError(http.StatusForbidden, "You are not the owner of this playlist")
	}
	return playlist, user, nil
}

// POST /playlists
func (a *App) CreatePlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}

		var body dto.CreatePlaylistDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Title and description are required")
		}

		var thumbnail string
		if file, err := c.FormFile("thumbnail"); err == nil {
			asset, err := a.Media.UploadImage(ctx, file, user.ID.Hex()+"/playlists")
			if err != nil {
				return uploadError(err, "Error uploading thumbnail")
			}
			thumbnail = asset.URL
		}

		playlist := models.Playlist{
			Title:       strings.TrimSpace(body.Title),
			Description: strings.TrimSpace(body.Description),
			Thumbnail:   thumbnail,
			Owner:       user.ID,
			Videos:      []models.PlaylistVideo{},
		}
		if err := a.Playlists.Create(ctx, &playlist); err != nil {
			a.Media.DiscardURL(ctx, thumbnail)
			return err
		}

		utils.Respond(c, http.StatusCreated, "Playlist created", playlist)
		return nil
	})
}

// GET /playlists/:id
func (a *App) GetPlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, _, err := a.visiblePlaylist(c)
		if err != nil {
			return err
		}
		utils.Respond(c, http.StatusOK, "Playlist fetched", playlist)
		return nil
	})
}

// PATCH /playlists/add/:id
func (a *App) AddVideoToPlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		playlist, user, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		var body dto.PlaylistVideoDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "videoId is required")
		}
		videoID, err := utils.ParseObjectID(body.VideoID, "videoId")
		if err != nil {
			return err
		}

		video, err := a.Videos.FindByID(ctx, videoID)
		if err != nil {
			return storeError(err, "Video not found")
		}
		if !video.VisibleTo(user.ID) {
			return utils.NewApiError(http.StatusNotFound, "Video not found")
		}
		if playlist.IndexOf(videoID) >= 0 {
			return utils.NewApiError(http.StatusConflict, "Video already in playlist")
		}

		updated, err := a.Playlists.AddVideo(ctx, playlist.ID, models.PlaylistVideo{Video: videoID, Order: playlist.NextOrder()})
		if err != nil {
			if errors.Is(err, database.ErrConflict) {
				return utils.NewApiError(http.StatusConflict, "Video already in playlist")
			}
			return storeError(err, "Playlist not found")
		}
		utils.Respond(c, http.StatusOK, "Video added to playlist", updated)
		return nil
	})
}

// PATCH /playlists/remove/:id
func (a *App) RemoveVideoFromPlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, _, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		var body dto.PlaylistVideoDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "videoId is required")
		}
		videoID, err := utils.ParseObjectID(body.VideoID, "videoId")
		if err != nil {
			return err
		}

		updated, err := a.Playlists.RemoveVideo(c.Request.Context(), playlist.ID, videoID, body.Order)
		if err != nil {
			return storeError(err, "Video not found in playlist")
		}
		utils.Respond(c, http.StatusOK, "Video removed from playlist", updated)
		return nil
	})
}

// PATCH /playlists/reorder/:id
func (a *App) ReorderPlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, _, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		var body dto.ReorderPlaylistDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "currentIdx and destinationIdx are required")
		}
		if !playlist.Move(*body.CurrentIdx, *body.DestinationIdx) {
			return utils.NewApiError(http.StatusBadRequest, "Index out of range")
		}

		updated, err := a.Playlists.ReplaceVideos(c.Request.Context(), playlist.ID, playlist.Videos)
		if err != nil {
			return storeError(err, "Playlist not found")
		}
		utils.Respond(c, http.StatusOK, "Playlist reordered", updated)
		return nil
	})
}

// PATCH /playlists/toggle-publish/:id
func (a *App) TogglePlaylistPublish() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, _, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		var body dto.TogglePublishDTO
		if err := bindOptional(c, &body); err != nil {
			return err
		}
		published := !playlist.IsPublished
		if body.IsPublished != nil {
			published = *body.IsPublished
		}

		updated, err := a.Playlists.UpdateFields(c.Request.Context(), playlist.ID, bson.M{"isPublished": published})
		if err != nil {
			return storeError(err, "Playlist not found")
		}
		utils.Respond(c, http.StatusOK, "Playlist publish status updated", updated)
		return nil
	})
}

// PATCH /playlists/update-thumbnail/:id
func (a *App) UpdatePlaylistThumbnail() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		playlist, user, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		file, err := c.FormFile("thumbnail")
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, "Thumbnail is required")
		}
		asset, err := a.Media.UploadImage(ctx, file, user.ID.Hex()+"/playlists")
		if err != nil {
			return uploadError(err, "Error uploading thumbnail")
		}

		updated, err := a.Playlists.UpdateFields(ctx, playlist.ID, bson.M{"thumbnail": asset.URL})
		if err != nil {
			a.Media.DiscardURL(ctx, asset.URL)
			return storeError(err, "Playlist not found")
		}
		a.Media.DiscardURL(ctx, playlist.Thumbnail)

		utils.Respond(c, http.StatusOK, "Playlist thumbnail updated", updated)
		return nil
	})
}

// PATCH /playlists/:id
func (a *App) UpdatePlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, _, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}

		var body dto.UpdatePlaylistDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Invalid request body")
		}
		fields := bson.M{}
		if body.Title != nil {
			fields["title"] = strings.TrimSpace(*body.Title)
		}
		if body.Description != nil {
			fields["description"] = strings.TrimSpace(*body.Description)
		}
		if len(fields) == 0 {
			return utils.NewApiError(http.StatusBadRequest, "Title or description is required")
		}

		updated, err := a.Playlists.UpdateFields(c.Request.Context(), playlist.ID, fields)
		if err != nil {
			return storeError(err, "Playlist not found")
		}
		utils.Respond(c, http.StatusOK, "Playlist updated", updated)
		return nil
	})
}

// DELETE /playlists/:id
func (a *App) DeletePlaylist() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		playlist, _, err := a.ownedPlaylist(c)
		if err != nil {
			return err
		}
		if err := a.Playlists.Delete(ctx, playlist.ID); err != nil {
			return storeError(err, "Playlist not found")
		}
		a.Media.DiscardURL(ctx, playlist.Thumbnail)

		utils.Respond(c, http.StatusOK, "Playlist deleted", nil)
		return nil
	})
}

// GET /playlists/videos/:id
func (a *App) GetPlaylistVideos() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		playlist, user, err := a.visiblePlaylist(c)
		if err != nil {
			return err
		}
		q := a.page(c)
		page, err := a.Playlists.Videos(c.Request.Context(), playlist.ID, playlist.Owner == user.ID, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Playlist videos fetched", q, page)
		return nil
	})
}
