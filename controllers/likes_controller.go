package controllers

import (
	"errors"
	"net/http"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// resource resolves :resourceId. With no ?type the id is looked up as a
// video first and then as a comment.
func (a *App) resource(c *gin.Context) (models.ResourceType, bson.ObjectID, error) {
	ctx := c.Request.Context()
	id, err := utils.ParseObjectID(c.Param("resourceId"), "resource id")
	if err != nil {
		return "", id, err
	}

	kinds := []models.ResourceType{models.ResourceVideo, models.ResourceComment}
	if raw := c.Query("type"); raw != "" {
		kind, err := models.ParseResourceType(raw)
		if err != nil {
			return "", id, utils.NewApiError(http.StatusBadRequest, err.Error())
		}
		kinds = []models.ResourceType{kind}
	}

	for _, kind := range kinds {
		switch kind {
		case models.ResourceVideo:
			_, err = a.Videos.FindByID(ctx, id)
		case models.ResourceComment:
			_, err = a.Comments.FindByID(ctx, id)
		}
		if err == nil {
			return kind, id, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return "", id, err
		}
	}
	return "", id, utils.NewApiError(http.StatusNotFound, "Resource not found")
}

// POST /likes/resource/:resourceId
func (a *App) LikeResource() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}
		kind, id, err := a.resource(c)
		if err != nil {
			return err
		}

		like, err := models.NewLike(user.ID, kind, id)
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, err.Error())
		}
		if err := a.Likes.Like(ctx, like); err != nil {
			if errors.Is(err, database.ErrConflict) {
				return utils.NewApiError(http.StatusConflict, "Already liked")
			}
			return err
		}
		a.LikeCounts.Invalidate(ctx, kind, id)

		utils.Respond(c, http.StatusCreated, "Liked", like)
		return nil
	})
}

// DELETE /likes/resource/:resourceId
func (a *App) UnlikeResource() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}
		kind, id, err := a.resource(c)
		if err != nil {
			return err
		}

		if err := a.Likes.Unlike(ctx, user.ID, kind, id); err != nil {
			return storeError(err, "Like not found")
		}
		a.LikeCounts.Invalidate(ctx, kind, id)

		utils.Respond(c, http.StatusOK, "Unliked", nil)
		return nil
	})
}

// GET /likes/count/:resourceId
func (a *App) GetLikeCount() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		kind, id, err := a.resource(c)
		if err != nil {
			return err
		}

		count, ok := a.LikeCounts.Get(ctx, kind, id)
		if !ok {
			if count, err = a.Likes.Count(ctx, kind, id); err != nil {
				return err
			}
			a.LikeCounts.Set(ctx, kind, id, count)
		}

		utils.Respond(c, http.StatusOK, "Like count fetched", gin.H{
			"resourceId": id,
			"type":       kind,
			"count":      count,
		})
		return nil
	})
}
