package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal Server Error | Something went wrong! Please try again later."

// ApiError is the error type controllers return; Handle renders it.
type ApiError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func NewApiError(status int, message string, errs ...string) *ApiError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &ApiError{StatusCode: status, Message: message, Errors: errs}
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

type PaginatedApiResponse struct {
	ApiResponse
	Metadata PageMetadata `json:"metadata"`
}

type ErrorResponse struct {
	ApiResponse
	Errors []string `json:"errors"`
}

func NewApiResponse(status int, message string, data any) ApiResponse {
	return ApiResponse{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status >= 200 && status < 300,
	}
}

func Respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, NewApiResponse(status, message, data))
}

func RespondPage[T any](c *gin.Context, status int, message string, q PageQuery, page Page[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(status, PaginatedApiResponse{
		ApiResponse: NewApiResponse(status, message, items),
		Metadata:    NewPageMetadata(q, page.Total),
	})
}

// Fail renders err as an error envelope and aborts the chain. Errors that are
// not an *ApiError are logged and hidden behind a 500.
func Fail(c *gin.Context, err error) {
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		logrus.WithFields(logrus.Fields{
			"source": "server",
			"path":   c.FullPath(),
			"method": c.Request.Method,
		}).WithError(err).Error("request failed")
		apiErr = NewApiError(http.StatusInternalServerError, internalErrorMessage)
	}

	errs := apiErr.Errors
	if errs == nil {
		errs = []string{}
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, ErrorResponse{
		ApiResponse: NewApiResponse(apiErr.StatusCode, apiErr.Message, nil),
		Errors:      errs,
	})
}

// Handle adapts an error-returning handler to gin.
func Handle(fn func(c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			Fail(c, err)
		}
	}
}

// Recovery renders panics as the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		Fail(c, fmt.Errorf("panic: %v", recovered))
	})
}
