package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/jengzang/rose-backend-go/internal/errors"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 response for a new resource
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FromError sends the response matching err's application error code.
// Errors without a code are logged and reported as 500.
func FromError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := StatusOf(code)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.S().Errorw("request failed", "path", c.FullPath(), "error", err)
		message = "internal server error"
	}
	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Error:   code,
	})
}

// StatusOf maps an application error code to an HTTP status.
func StatusOf(code string) int {
	switch code {
	case apperrors.CodeEmptySample, apperrors.CodeDegenerateGeometry:
		return http.StatusUnprocessableEntity
	case apperrors.CodeInvalidConfiguration, apperrors.CodeOutOfRangeAngle:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
