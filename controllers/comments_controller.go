package controllers

import (
	"net/http"
	"strings"

	"github.com/McTechie/tubecafe-backend/dto"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func commentText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", utils.NewApiError(http.StatusBadRequest, "Comment text is required")
	}
	return text, nil
}

// visibleVideo loads a video the acting user is allowed to see.
func (a *App) visibleVideo(c *gin.Context, id bson.ObjectID, viewer bson.ObjectID) (models.Video, error) {
	video, err := a.Videos.FindByID(c.Request.Context(), id)
	if err != nil {
		return models.Video{}, storeError(err, "Video not found")
	}
	if !video.VisibleTo(viewer) {
		return models.Video{}, utils.NewApiError(http.StatusNotFound, "Video not found")
	}
	return video, nil
}

// POST /comments
func (a *App) CreateComment() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := actor(c)
		if err != nil {
			return err
		}

		var body dto.CreateCommentDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "videoId and text are required")
		}
		videoID, err := utils.ParseObjectID(body.VideoID, "videoId")
		if err != nil {
			return err
		}
		text, err := commentText(body.Text)
		if err != nil {
			return err
		}
		if _, err := a.visibleVideo(c, videoID, user.ID); err != nil {
			return err
		}

		comment := models.Comment{Content: text, Video: videoID, Owner: user.ID, Replies: []bson.ObjectID{}}
		if err := a.Comments.Create(c.Request.Context(), &comment); err != nil {
			return err
		}
		utils.Respond(c, http.StatusCreated, "Comment added", comment)
		return nil
	})
}

// GET /comments/video/:videoId
func (a *App) GetVideoComments() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := actor(c)
		if err != nil {
			return err
		}
		videoID, err := utils.ParseObjectID(c.Param("videoId"), "video id")
		if err != nil {
			return err
		}
		if _, err := a.visibleVideo(c, videoID, user.ID); err != nil {
			return err
		}

		q := a.page(c)
		page, err := a.Comments.ListByVideo(c.Request.Context(), videoID, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Comments fetched", q, page)
		return nil
	})
}

// GET /comments/:id/replies
func (a *App) GetCommentReplies() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		id, err := utils.ParseObjectID(c.Param("id"), "comment id")
		if err != nil {
			return err
		}
		if _, err := a.Comments.FindByID(c.Request.Context(), id); err != nil {
			return storeError(err, "Comment not found")
		}

		q := a.page(c)
		page, err := a.Comments.ListReplies(c.Request.Context(), id, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Replies fetched", q, page)
		return nil
	})
}

// POST /comments/:id/reply
func (a *App) ReplyToComment() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}
		id, err := utils.ParseObjectID(c.Param("id"), "comment id")
		if err != nil {
			return err
		}

		var body dto.ReplyDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "text is required")
		}
		text, err := commentText(body.Text)
		if err != nil {
			return err
		}

		parent, err := a.Comments.FindByID(ctx, id)
		if err != nil {
			return storeError(err, "Comment not found")
		}

		reply := models.Comment{
			Content: text,
			Video:   parent.Video,
			Owner:   user.ID,
			Parent:  &parent.ID,
			Replies: []bson.ObjectID{},
		}
		if err := a.Comments.Create(ctx, &reply); err != nil {
			return storeError(err, "Comment not found")
		}
		utils.Respond(c, http.StatusCreated, "Reply added", reply)
		return nil
	})
}

// DELETE /comments/:id
func (a *App) DeleteComment() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := actor(c)
		if err != nil {
			return err
		}
		id, err := utils.ParseObjectID(c.Param("id"), "comment id")
		if err != nil {
			return err
		}

		comment, err := a.Comments.FindByID(ctx, id)
		if err != nil {
			return storeError(err, "Comment not found")
		}
		if comment.Owner != user.ID {
			return utils.NewApiError(http.StatusForbidden, "You can only delete your own comments")
		}

		removed, err := a.Comments.Delete(ctx, comment)
		if err != nil {
			return storeError(err, "Comment not found")
		}
		for _, id := range removed {
			a.LikeCounts.Invalidate(ctx, models.ResourceComment, id)
		}

		utils.Respond(c, http.StatusOK, "Comment deleted", nil)
		return nil
	})
}
