package absen

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"FACEATTEND/controllers"
	"FACEATTEND/helper"
	"FACEATTEND/service"
)

// ScanForm is the multipart body of POST /mark_attendance.
type ScanForm struct {
	Image *multipart.FileHeader `form:"image"`
}

type Controller struct {
	svc *service.Service
	log *logrus.Logger
}

func NewController(svc *service.Service, log *logrus.Logger) *Controller {
	return &Controller{svc: svc, log: log}
}

func (ctl *Controller) MarkAttendanceHandler(c *gin.Context) {
	// 1. Take the captured photo
	var form ScanForm
	if err := c.ShouldBind(&form); err != nil || form.Image == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}

	image, err := helper.ReadUpload(form.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. Identify the face and record today's attendance
	res, err := ctl.svc.MarkAttendance(c.Request.Context(), image)
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}

	// 3. Answer by outcome
	switch res.Status {
	case service.StatusMarked:
		c.JSON(http.StatusOK, gin.H{"message": "Attendance marked!", "user_id": res.UserID})
	case service.StatusAlreadyMarked:
		c.JSON(http.StatusOK, gin.H{"message": "Already marked today", "user_id": res.UserID})
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "User not recognized"})
	}
}
