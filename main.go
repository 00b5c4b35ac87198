package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"FACEATTEND/config"
	"FACEATTEND/extractor"
	"FACEATTEND/extractor/dlib"
	"FACEATTEND/extractor/remote"
	"FACEATTEND/jobs"
	"FACEATTEND/logging"
	"FACEATTEND/metrics"
	"FACEATTEND/models"
	"FACEATTEND/routes"
	"FACEATTEND/service"
)

// App owns everything created at startup and released at shutdown.
type App struct {
	Config    *config.Config
	Log       *logrus.Logger
	DB        *gorm.DB
	Extractor extractor.Extractor
	Service   *service.Service
	Metrics   *metrics.Metrics
	Scheduler *gocron.Scheduler
	Server    *http.Server

	closers []func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL ERROR: invalid configuration: %v", err)
	}

	log, err := logging.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		logrus.Fatalf("FATAL ERROR: cannot open log file: %v", err)
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Fatalf("FATAL ERROR: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	err = app.Run(quit)
	app.Close()
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// Run serves until stop fires or the listener fails, then shuts the server
// down. It does not release the App's resources; call Close for that.
func (a *App) Run(stop <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Infof("Listening on %s", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-stop:
	}
	a.Log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Log.WithError(err).Error("Graceful shutdown failed")
		return err
	}
	return nil
}

// NewApp connects the database, loads the extractor and builds the HTTP
// server. On error everything created so far is released.
func NewApp(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log, Metrics: metrics.New()}
	if err := app.init(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init() error {
	gin.SetMode(a.Config.GinMode)

	db, err := models.ConnectDatabase(a.Config.Database, a.Log)
	if err != nil {
		return err
	}
	a.DB = db
	a.closers = append(a.closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	a.Extractor, err = newExtractor(a.Config.Extractor, a.Log)
	if err != nil {
		return err
	}
	if c, ok := a.Extractor.(interface{ Close() }); ok {
		a.closers = append(a.closers, c.Close)
	}

	loc, err := a.Config.Attendance.Location()
	if err != nil {
		return err
	}
	a.Service = service.New(models.NewGormStore(db), a.Extractor, a.Log, a.Metrics, service.Options{
		Tolerance:    a.Config.Recognition.Tolerance,
		EmbeddingDim: a.Config.Recognition.EmbeddingDim,
		Location:     loc,
	})

	if spec := a.Config.Attendance.SummaryCron; spec != "" {
		a.Scheduler, err = jobs.StartDailySummary(spec, loc, a.Service, a.Log)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, a.Scheduler.Stop)
	}

	a.Server = &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           routes.SetupRouter(a.Config, a.Log, a.Service, a.Metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newExtractor(cfg config.ExtractorConfig, log *logrus.Logger) (extractor.Extractor, error) {
	switch cfg.Kind {
	case "remote":
		log.Infof("Using remote face extractor at %s", cfg.URL)
		return remote.NewClient(cfg.URL, cfg.Timeout), nil
	default:
		ext, err := dlib.New(cfg.ModelPath, log)
		if err != nil {
			return nil, err
		}
		return ext, nil
	}
}
