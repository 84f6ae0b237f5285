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

// self resolves :id and insists it is the acting user.
func self(c *gin.Context, action string) (models.User, error) {
	user, err := actor(c)
	if err != nil {
		return models.User{}, err
	}
	id, err := utils.ParseObjectID(c.Param("id"), "user id")
	if err != nil {
		return models.User{}, err
	}
	if id != user.ID {
		return models.User{}, utils.NewApiError(http.StatusForbidden, "You can only "+action+" your own account")
	}
	return user, nil
}

// GET /users
func (a *App) GetUsers() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		q := a.page(c)
		page, err := a.Users.List(c.Request.Context(), c.Query("query"), q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Users fetched", q, page)
		return nil
	})
}

// GET /users/:id
func (a *App) GetUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		id, err := utils.ParseObjectID(c.Param("id"), "user id")
		if err != nil {
			return err
		}
		user, err := a.Users.FindByID(c.Request.Context(), id)
		if err != nil {
			return storeError(err, "User not found")
		}
		utils.Respond(c, http.StatusOK, "User details", user)
		return nil
	})
}

// PUT /users/:id
func (a *App) UpdateUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := self(c, "update")
		if err != nil {
			return err
		}

		var body dto.UpdateUserDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Invalid request body")
		}
		if body.Empty() {
			return utils.NewApiError(http.StatusBadRequest, "At least one field is required")
		}

		fields := bson.M{}
		var username, email string
		if body.FullName != nil {
			fields["fullName"] = strings.TrimSpace(*body.FullName)
		}
		if body.Username != nil {
			username = utils.FoldIdentifier(*body.Username)
			if username == "" {
				return utils.NewApiError(http.StatusBadRequest, "Username cannot be empty")
			}
			fields["username"] = username
		}
		if body.Email != nil {
			email = utils.FoldIdentifier(*body.Email)
			fields["email"] = email
		}

		taken, err := a.Users.Taken(ctx, username, email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewApiError(http.StatusConflict, "Username or email already in use")
		}

		updated, err := a.Users.UpdateFields(ctx, user.ID, fields)
		if err != nil {
			if errors.Is(err, database.ErrConflict) {
				return utils.NewApiError(http.StatusConflict, "Username or email already in use")
			}
			return storeError(err, "User not found")
		}
		utils.Respond(c, http.StatusOK, "User updated", updated)
		return nil
	})
}

// DELETE /users/:id
func (a *App) DeleteUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()
		user, err := self(c, "delete")
		if err != nil {
			return err
		}
		if err := a.Users.Delete(ctx, user.ID); err != nil {
			return storeError(err, "User not found")
		}
		a.Media.DiscardURL(ctx, user.Avatar)
		a.Media.DiscardURL(ctx, user.CoverImage)

		utils.ClearAuthCookies(c, a.Cookies)
		utils.Respond(c, http.StatusOK, "User deleted", nil)
		return nil
	})
}

// replaceImage uploads the form file under field, stores its URL in the
// user's field and removes the previous asset.
func (a *App) replaceImage(c *gin.Context, field, folder, label string) error {
	ctx := c.Request.Context()
	user, err := actor(c)
	if err != nil {
		return err
	}
	file, err := c.FormFile(field)
	if err != nil {
		return utils.NewApiError(http.StatusBadRequest, label+" is required")
	}

	asset, err := a.Media.UploadImage(ctx, file, folder)
	if err != nil {
		return uploadError(err, "Error uploading "+field)
	}

	old := user.Avatar
	if field == "coverImage" {
		old = user.CoverImage
	}

	updated, err := a.Users.UpdateFields(ctx, user.ID, bson.M{field: asset.URL})
	if err != nil {
		a.Media.DiscardURL(ctx, asset.URL)
		return storeError(err, "User not found")
	}
	a.Media.DiscardURL(ctx, old)

	utils.Respond(c, http.StatusOK, label+" updated", updated)
	return nil
}

// PUT /users/update-avatar
func (a *App) UpdateAvatar() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		return a.replaceImage(c, "avatar", "users/avatars", "Avatar")
	})
}

// PUT /users/update-cover-image
func (a *App) UpdateCoverImage() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		return a.replaceImage(c, "coverImage", "users/cover_images", "Cover image")
	})
}

// GET /users/:id/watch-history
func (a *App) GetWatchHistory() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := self(c, "view the watch history of")
		if err != nil {
			return err
		}
		q := a.page(c)
		page, err := a.Users.WatchHistory(c.Request.Context(), user.ID, q)
		if err != nil {
			return err
		}
		utils.RespondPage(c, http.StatusOK, "Watch history fetched", q, page)
		return nil
	})
}
