package controllers

import (
	"errors"
	"net/http"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
)

func (a *App) channel(c *gin.Context) (models.User, error) {
	username := utils.FoldIdentifier(c.Param("username"))
	if username == "" {
		return models.User{}, utils.NewApiError(http.StatusBadRequest, "username is required")
	}
	owner, err := a.Users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		return models.User{}, storeError(err, "Channel not found")
	}
	return owner, nil
}

// GET /channels/:username
func (a *App) GetChannelProfile() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		profile, err := a.Users.ChannelProfile(c.Request.Context(), utils.FoldIdentifier(c.Param("username")), viewer.ID)
		if err != nil {
			return storeError(err, "Channel not found")
		}
		utils.Respond(c, http.StatusOK, "Channel profile fetched", profile)
		return nil
	})
}

// GET /channels/:username/videos
func (a *App) GetChannelVideos() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		owner, err := a.channel(c)
		if err != nil {
			return err
		}

		q := a.page(c)
		page, err := a.Videos.List(c.Request.Context(), database.VideoFilter{
			Query:              c.Query("query"),
			SortBy:             c.Query("sortBy"),
			SortType:           c.Query("sortType"),
			Owner:              &owner.ID,
			IncludeUnpublished: owner.ID == viewer.ID,
		}, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Channel videos fetched", q, page)
		return nil
	})
}

// GET /channels/:username/videos/:id
func (a *App) GetChannelVideo() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		owner, err := a.channel(c)
		if err != nil {
			return err
		}
		id, err := utils.ParseObjectID(c.Param("id"), "video id")
		if err != nil {
			return err
		}

		video, err := a.Videos.FindByID(c.Request.Context(), id)
		if err != nil {
			return storeError(err, "Video not found")
		}
		if video.Owner != owner.ID || !video.VisibleTo(viewer.ID) {
			return utils.NewApiError(http.StatusNotFound, "Video not found")
		}
		utils.Respond(c, http.StatusOK, "Video fetched", video)
		return nil
	})
}

// GET /channels/:username/playlists
func (a *App) GetChannelPlaylists() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		owner, err := a.channel(c)
		if err != nil {
			return err
		}

		q := a.page(c)
		page, err := a.Playlists.ListByOwner(c.Request.Context(), owner.ID, owner.ID == viewer.ID, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Channel playlists fetched", q, page)
		return nil
	})
}

// POST /channels/:username/subscribe
func (a *App) Subscribe() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		owner, err := a.channel(c)
		if err != nil {
			return err
		}
		if owner.ID == viewer.ID {
			return utils.NewApiError(http.StatusBadRequest, "You cannot subscribe to your own channel")
		}

		if err := a.Subscriptions.Subscribe(c.Request.Context(), viewer.ID, owner.ID); err != nil {
			if errors.Is(err, database.ErrConflict) {
				return utils.NewApiError(http.StatusConflict, "Already subscribed to this channel")
			}
			return err
		}
		utils.Respond(c, http.StatusOK, "Subscribed", gin.H{"channel": owner.ID, "subscriber": viewer.ID})
		return nil
	})
}

// DELETE /channels/:username/subscribe
func (a *App) Unsubscribe() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		viewer, err := actor(c)
		if err != nil {
			return err
		}
		owner, err := a.channel(c)
		if err != nil {
			return err
		}
		if owner.ID == viewer.ID {
			return utils.NewApiError(http.StatusBadRequest, "You cannot unsubscribe from your own channel")
		}

		if err := a.Subscriptions.Unsubscribe(c.Request.Context(), viewer.ID, owner.ID); err != nil {
			return storeError(err, "Not subscribed to this channel")
		}
		utils.Respond(c, http.StatusOK, "Unsubscribed", nil)
		return nil
	})
}

// GET /channels/:username/subscribers
func (a *App) GetSubscribers() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		owner, err := a.channel(c)
		if err != nil {
			return err
		}
		q := a.page(c)
		page, err := a.Subscriptions.Subscribers(c.Request.Context(), owner.ID, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Subscribers fetched", q, page)
		return nil
	})
}
