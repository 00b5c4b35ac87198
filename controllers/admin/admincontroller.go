package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"FACEATTEND/config"
	"FACEATTEND/controllers"
	"FACEATTEND/helper"
	"FACEATTEND/service"
)

type LoginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Controller struct {
	svc   *service.Service
	log   *logrus.Logger
	admin config.AdminConfig
	now   func() time.Time
}

func NewController(svc *service.Service, log *logrus.Logger, admin config.AdminConfig) *Controller {
	return &Controller{svc: svc, log: log, admin: admin, now: time.Now}
}

func (ctl *Controller) LoginHandler(c *gin.Context) {
	// 1. Validate input
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// 2. Check the configured admin account
	if err := helper.CheckCredentials(ctl.admin, payload.Username, payload.Password); err != nil {
		ctl.log.WithField("username", payload.Username).Warn("Admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	// 3. Issue the token
	token, err := helper.GenerateToken([]byte(ctl.admin.JWTKey), payload.Username, ctl.admin.TokenTTL, ctl.now())
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expires_in": int(ctl.admin.TokenTTL.Seconds())})
}

func (ctl *Controller) ListUsersHandler(c *gin.Context) {
	users, err := ctl.svc.Users(c.Request.Context())
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ctl *Controller) DailyAttendanceHandler(c *gin.Context) {
	date, rows, err := ctl.svc.DailyReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "attendance": rows})
}

func (ctl *Controller) UserHistoryHandler(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	history, err := ctl.svc.History(c.Request.Context(), id)
	if err != nil {
		controllers.RespondError(c, ctl.log, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
