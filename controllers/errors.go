package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/media"
	"github.com/McTechie/tubecafe-backend/middleware"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

// storeError maps repository sentinels onto API errors. Anything else is
// returned untouched and ends up as a 500.
func storeError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return utils.NewApiError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, database.ErrConflict):
		return utils.NewApiError(http.StatusConflict, "Resource already exists")
	}
	return err
}

// bindError reports validation failures one message per field.
func bindError(err error, message string) error {
	var errs []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			errs = append(errs, line)
		}
	}
	return utils.NewApiError(http.StatusBadRequest, message, errs...)
}

// bindOptional binds a body that may be absent altogether. JSON bodies are
// honoured on GET too, where gin would otherwise bind the query string.
func bindOptional(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	bind := c.ShouldBind
	if c.ContentType() == binding.MIMEJSON {
		bind = c.ShouldBindJSON
	}
	if err := bind(obj); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err, "Invalid request body")
	}
	return nil
}

// uploadError turns rejected files into 400s and store failures into a 500
// carrying message.
func uploadError(err error, message string) error {
	if errors.Is(err, media.ErrInvalidFile) {
		return utils.NewApiError(http.StatusBadRequest, err.Error())
	}
	logrus.WithField("source", "media").WithError(err).Error(message)
	return utils.NewApiError(http.StatusInternalServerError, message)
}

func actor(c *gin.Context) (models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return models.User{}, utils.NewApiError(http.StatusUnauthorized, "Unauthorized request")
	}
	return user, nil
}
