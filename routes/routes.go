package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"FACEATTEND/config"
	"FACEATTEND/controllers/absen"
	"FACEATTEND/controllers/admin"
	"FACEATTEND/controllers/face"
	"FACEATTEND/helper"
	"FACEATTEND/metrics"
	"FACEATTEND/middlewares"
	"FACEATTEND/service"
)

// SetupRouter builds the gin engine with every route of the service. The
// admin group is mounted only when an admin account is configured.
func SetupRouter(cfg *config.Config, log *logrus.Logger, svc *service.Service, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = helper.MaxImageSize
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.Logger(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	faceController := face.NewController(svc, log)
	absenController := absen.NewController(svc, log)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Face Attendance Backend is Running!")
	})
	r.POST("/register", faceController.RegisterHandler)
	r.POST("/mark_attendance", absenController.MarkAttendanceHandler)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if cfg.Admin.Enabled() {
		adminController := admin.NewController(svc, log, cfg.Admin)

		r.POST("/admin/login", adminController.LoginHandler)
		authorized := r.Group("/admin", middlewares.RequireAdmin([]byte(cfg.Admin.JWTKey)))
		{
			authorized.GET("/users", adminController.ListUsersHandler)
			authorized.GET("/users/:id/attendance", adminController.UserHistoryHandler)
			authorized.GET("/attendance", adminController.DailyAttendanceHandler)
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Content-Length", middlewares.RequestIDHeader},
		ExposeHeaders: []string{middlewares.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
