// Package controllers holds what the gin handlers in its subpackages share.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"FACEATTEND/service"
)

// Messages returned to clients for validation errors.
var messages = map[error]string{
	service.ErrMissingImage:     "No image uploaded",
	service.ErrNoFaceDetected:   "No face detected",
	service.ErrInvalidEmbedding: "Invalid face embedding",
	service.ErrInvalidDate:      "Invalid date, expected YYYY-MM-DD",
}

// RespondError writes err as {"error": ...} with the status matching its
// kind. Unknown errors are 500 with the error text.
func RespondError(c *gin.Context, log *logrus.Logger, err error) {
	for target, msg := range messages {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
	}
	if errors.Is(err, service.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
