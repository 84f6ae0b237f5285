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
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// issueTokens mints a token pair and stores the refresh token's hash.
func (a *App) issueTokens(c *gin.Context, user models.User) (string, string, error) {
	accessToken, err := a.Tokens.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := a.Tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	if err := a.Users.SetRefreshToken(c.Request.Context(), user.ID, utils.HashToken(refreshToken)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// POST /auth/register
func (a *App) RegisterUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()

		var body dto.RegisterDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "All fields are required")
		}

		username := utils.FoldIdentifier(body.Username)
		email := utils.FoldIdentifier(body.Email)
		if username == "" {
			return utils.NewApiError(http.StatusBadRequest, "Username cannot be empty")
		}

		taken, err := a.Users.Taken(ctx, username, email, bson.NilObjectID)
		if err != nil {
			return err
		}
		if taken {
			return utils.NewApiError(http.StatusConflict, "User already exists")
		}

		avatarFile, err := c.FormFile("avatar")
		if err != nil {
			return utils.NewApiError(http.StatusBadRequest, "Avatar is required")
		}
		coverFile, _ := c.FormFile("coverImage")

		avatar, err := a.Media.UploadImage(ctx, avatarFile, "users/avatars")
		if err != nil {
			return uploadError(err, "Error uploading avatar")
		}
		var coverURL string
		if coverFile != nil {
			cover, err := a.Media.UploadImage(ctx, coverFile, "users/cover_images")
			if err != nil {
				a.Media.DiscardURL(ctx, avatar.URL)
				return uploadError(err, "Error uploading coverImage")
			}
			coverURL = cover.URL
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Username:   username,
			Email:      email,
			Password:   hash,
			FullName:   strings.TrimSpace(body.FullName),
			Avatar:     avatar.URL,
			CoverImage: coverURL,
		}
		if err := a.Users.Create(ctx, &user); err != nil {
			a.Media.DiscardURL(ctx, avatar.URL)
			a.Media.DiscardURL(ctx, coverURL)
			if errors.Is(err, database.ErrConflict) {
				return utils.NewApiError(http.StatusConflict, "User already exists")
			}
			return err
		}

		utils.Respond(c, http.StatusCreated, "User created", user)
		return nil
	})
}

// POST /auth/login
func (a *App) LoginUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		var body dto.LoginDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Password is required")
		}
		if strings.TrimSpace(body.Username) == "" && strings.TrimSpace(body.Email) == "" {
			return utils.NewApiError(http.StatusBadRequest, "Username or email is required")
		}

		user, err := a.Users.FindByLogin(c.Request.Context(), utils.FoldIdentifier(body.Username), utils.FoldIdentifier(body.Email))
		if err != nil {
			return storeError(err, "User not found")
		}
		if err := utils.CheckPassword(user.Password, body.Password); err != nil {
			return utils.NewApiError(http.StatusUnauthorized, "Invalid password")
		}

		accessToken, refreshToken, err := a.issueTokens(c, user)
		if err != nil {
			return err
		}

		utils.SetAuthCookies(c, a.Cookies, accessToken, refreshToken)
		utils.Respond(c, http.StatusOK, "Login successful", gin.H{
			"user":         user,
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
		return nil
	})
}

// POST /auth/logout
func (a *App) LogoutUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := actor(c)
		if err != nil {
			return err
		}
		if err := a.Users.SetRefreshToken(c.Request.Context(), user.ID, ""); err != nil {
			return storeError(err, "User not found")
		}
		utils.ClearAuthCookies(c, a.Cookies)
		utils.Respond(c, http.StatusOK, "Logout successful", nil)
		return nil
	})
}

// GET /auth/me
func (a *App) GetCurrentUser() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := actor(c)
		if err != nil {
			return err
		}
		utils.Respond(c, http.StatusOK, "User details", user)
		return nil
	})
}

// POST /auth/refresh-token
func (a *App) RefreshAccessToken() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()

		incoming, _ := c.Cookie(utils.RefreshTokenCookie)
		if incoming == "" {
			var body dto.RefreshTokenDTO
			_ = bindOptional(c, &body)
			incoming = strings.TrimSpace(body.RefreshToken)
		}
		if incoming == "" {
			return utils.NewApiError(http.StatusUnauthorized, "Unauthorized request")
		}

		claims, err := a.Tokens.ValidateRefreshToken(incoming)
		if err != nil {
			return utils.NewApiError(http.StatusUnauthorized, "Invalid refresh token")
		}
		id, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return utils.NewApiError(http.StatusUnauthorized, "Invalid refresh token")
		}

		user, err := a.Users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NewApiError(http.StatusUnauthorized, "Invalid refresh token")
			}
			return err
		}

		oldHash := utils.HashToken(incoming)
		if user.RefreshToken != oldHash {
			return utils.NewApiError(http.StatusUnauthorized, "Refresh token is expired or used")
		}

		accessToken, err := a.Tokens.GenerateAccessToken(user)
		if err != nil {
			return err
		}
		refreshToken, err := a.Tokens.GenerateRefreshToken(user)
		if err != nil {
			return err
		}
		if err := a.Users.RotateRefreshToken(ctx, user.ID, oldHash, utils.HashToken(refreshToken)); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NewApiError(http.StatusUnauthorized, "Refresh token is expired or used")
			}
			return err
		}

		utils.SetAuthCookies(c, a.Cookies, accessToken, refreshToken)
		utils.Respond(c, http.StatusOK, "Tokens refreshed", gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		})
		return nil
	})
}

// POST /auth/change-password
func (a *App) ChangePassword() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		user, err := actor(c)
		if err != nil {
			return err
		}

		var body dto.ChangePasswordDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Old and new password are required")
		}
		if err := utils.CheckPassword(user.Password, body.OldPassword); err != nil {
			return utils.NewApiError(http.StatusUnauthorized, "Invalid old password")
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			return err
		}
		if err := a.Users.SetPassword(c.Request.Context(), user.ID, hash); err != nil {
			return storeError(err, "User not found")
		}

		utils.ClearAuthCookies(c, a.Cookies)
		utils.Respond(c, http.StatusOK, "Password changed successfully", nil)
		return nil
	})
}

// POST /auth/forgot-password
func (a *App) ForgotPassword() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		ctx := c.Request.Context()

		var body dto.ForgotPasswordDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Email is required")
		}

		user, err := a.Users.FindByEmail(ctx, utils.FoldIdentifier(body.Email))
		if err != nil {
			return storeError(err, "User not found")
		}

		token, err := utils.NewRandomToken()
		if err != nil {
			return err
		}
		if err := a.Users.SetResetToken(ctx, user.ID, utils.HashToken(token), a.clock().Add(a.ResetTTL)); err != nil {
			return err
		}

		if err := a.Mailer.SendPasswordReset(ctx, user.Email, a.ResetURL+"/"+token); err != nil {
			logrus.WithField("source", "mailer").WithError(err).Error("Error sending forgot password email")
			return utils.NewApiError(http.StatusInternalServerError, "Error sending password reset email")
		}

		utils.Respond(c, http.StatusOK, "Password reset link sent to your email", nil)
		return nil
	})
}

// PATCH /auth/reset-password/:token
func (a *App) ResetPassword() gin.HandlerFunc {
	return utils.Handle(func(c *gin.Context) error {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			return utils.NewApiError(http.StatusBadRequest, "Invalid or expired reset token")
		}

		var body dto.ResetPasswordDTO
		if err := c.ShouldBind(&body); err != nil {
			return bindError(err, "Password must be at least 8 characters")
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			return err
		}
		if _, err := a.Users.ResetPassword(c.Request.Context(), utils.HashToken(token), hash, a.clock()); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NewApiError(http.StatusBadRequest, "Invalid or expired reset token")
			}
			return err
		}

		utils.Respond(c, http.StatusOK, "Password reset successful", nil)
		return nil
	})
}
