package controllers

import (
	"net/http"
	"strings"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/dto"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ownedVideo loads :id and checks that the acting user owns it.
func (a *App) ownedVideo(c *gin.Context) (models.Video, models.User, error) {
	user, err := actor(c)
	if err != nil {
		return models.Video{}, models.User{}, err
	}
	id, err := utils.ParseObjectID(c.Param("id"), "video id")
	if err != nil {
		return models.Video{}, user, err
	}
	video, err := a.Videos.FindByID(c.Request.Context(), id)
	if err != nil {
		return models.Video{}, user, storeError(err, "Video not found")
	}
	if video.Owner != user.ID {
		return models.Video{}, user, utils.NewApiError(http.StatusForbidden, "You are not the owner of this video")
	}
	return video, user, nil
}

// GET /videos
func (a *App) GetVideos() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		q := a.page(c)
		page, err := a.Videos.List(c.Request.Context(), database.VideoFilter{
			Query:    c.Query("query"),
			SortBy:   c.Query("sortBy"),
			SortType: c.Query("sortType"),
		}, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Videos fetched", q, page)
		return nil
	})
}

// POST /videos/upload
func (a *App) UploadVideo() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}

		var body dto.UploadVideoDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Title and description are required")
		}
		videoFile, err := c.FormFile("video")
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, "Video file is required")
		}
		thumbFile, err := c.FormFile("thumbnail")
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, "Thumbnail is required")
		}

		videoAsset, thumbAsset, err := a.Media.UploadVideoWithThumbnail(ctx, videoFile, thumbFile, user.ID.Hex())
		if err != nil {
			return uploadError(err, "Error uploading video")
		}

		video := models.Video{
			Title:       strings.TrimSpace(body.Title),
			Description: strings.TrimSpace(body.Description),
			VideoURL:    videoAsset.URL,
			Thumbnail:   thumbAsset.URL,
			Duration:    videoAsset.Duration,
			Owner:       user.ID,
		}
		if err := a.Videos.Create(ctx, &video); err != nil {
			a.Media.DiscardURL(ctx, videoAsset.URL)
			a.Media.DiscardURL(ctx, thumbAsset.URL)
			return err
		}

		utils.Respond(c, http.StatusCreated, "Video uploaded", video)
		return nil
	})
}

// PUT /videos/toggle-publish/:id
func (a *App) ToggleVideoPublish() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		video, _, err := a.ownedVideo(c)
		if err != nil {
			return err
		}

		var body dto.TogglePublishDTO
		if err := bindOptional(c, &body); err != nil {
			return err
		}
		published := !video.IsPublished
		if body.IsPublished != nil {
			published = *body.IsPublished
		}

		updated, err := a.Videos.UpdateFields(c.Request.Context(), video.ID, bson.M{"isPublished": published})
		if err != nil {
			return storeError(err, "Video not found")
		}
		utils.Respond(c, http.StatusOK, "Video publish status updated", updated)
		return nil
	})
}

// GET /videos/:id
func (a *App) GetVideo() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}
		id, err := utils.ParseObjectID(c.Param("id"), "video id")
		if err != nil {
			return err
		}

		video, err := a.Videos.FindByID(ctx, id)
		if err != nil {
			return storeError(err, "Video not found")
		}
		if !video.VisibleTo(user.ID) {
			return utils.NewApiError(http.StatusNotFound, "Video not found")
		}

		increment, err := utils.ParseBoolQuery(c.Query("incrementView"))
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, "incrementView must be a boolean")
		}
		if increment == nil {
			var body dto.IncrementViewDTO
			if err := bindOptional(c, &body); err != nil {
				return err
			}
			increment = &body.IncrementView
		}

		if *increment {
			if video, err = a.Videos.IncrementViews(ctx, id); err != nil {
				return storeError(err, "Video not found")
			}
			if err := a.Users.AddToWatchHistory(ctx, user.ID, id); err != nil {
				logrus.WithField("source", "db").WithError(err).Warn("failed to record watch history")
			}
		}

		utils.Respond(c, http.StatusOK, "Video fetched", video)
		return nil
	})
}

// PATCH /videos/:id
func (a *App) UpdateVideo() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		video, _, err := a.ownedVideo(c)
		if err != nil {
			return err
		}

		var body dto.UpdateVideoDTO
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

		updated, err := a.Videos.UpdateFields(c.Request.Context(), video.ID, fields)
		if err != nil {
			return storeError(err, "Video not found")
		}
		utils.Respond(c, http.StatusOK, "Video updated", updated)
		return nil
	})
}

// PATCH /videos/:id/update-asset
func (a *App) UpdateVideoAsset() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		video, user, err := a.ownedVideo(c)
		if err != nil {
			return err
		}

		videoFile, _ := c.FormFile("video")
		thumbFile, _ := c.FormFile("thumbnail")
		if videoFile == nil && thumbFile == nil {
			return utils.NewApiError(http.StatusBadRequest, "Video or thumbnail file is required")
		}

		fields := bson.M{}
		var uploaded, replaced []string
		discard := func(urls []string) {
			for _, u := range urls {
				a.Media.DiscardURL(ctx, u)
			}
		}

		if videoFile != nil {
			asset, err := a.Media.UploadVideo(ctx, videoFile, user.ID.Hex()+"/videos")
			if err != nil {
				return uploadError(err, "Error uploading video")
			}
			fields["videoUrl"] = asset.URL
			fields["duration"] = asset.Duration
			uploaded = append(uploaded, asset.URL)
			replaced = append(replaced, video.VideoURL)
		}
		if thumbFile != nil {
			asset, err := a.Media.UploadImage(ctx, thumbFile, user.ID.Hex()+"/thumbnails")
			if err != nil {
				discard(uploaded)
				return uploadError(err, "Error uploading thumbnail")
			}
			fields["thumbnail"] = asset.URL
			uploaded = append(uploaded, asset.URL)
			replaced = append(replaced, video.Thumbnail)
		}

		updated, err := a.Videos.UpdateFields(ctx, video.ID, fields)
		if err != nil {
			discard(uploaded)
			return storeError(err, "Video not found")
		}
		discard(replaced)

		utils.Respond(c, http.StatusOK, "Video assets updated", updated)
		return nil
	})
}

// DELETE /videos/:id
func (a *App) DeleteVideo() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		video, _, err := a.ownedVideo(c)
		if err != nil {
			return err
		}
		if err := a.Videos.Delete(ctx, video.ID); err != nil {
			return storeError(err, "Video not found")
		}
		a.Media.DiscardURL(ctx, video.VideoURL)
		a.Media.DiscardURL(ctx, video.Thumbnail)
		a.LikeCounts.Invalidate(ctx, models.ResourceVideo, video.ID)

		utils.Respond(c, http.StatusOK, "Video deleted", nil)
		return nil
	})
}
