package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	WriteError(c, status, ErrorResponse{Message: message, Details: details})
}

// WriteError logs and sends resp, aborting the handler chain.
func WriteError(c *gin.Context, status int, resp ErrorResponse) {
	log := GetLogger()
	if status >= http.StatusInternalServerError {
		log.Error(resp.Message, zap.String("code", resp.Code), zap.String("details", resp.Details))
	} else {
		log.Warn(resp.Message, zap.String("code", resp.Code), zap.String("details", resp.Details))
	}
	c.AbortWithStatusJSON(status, resp)
}
