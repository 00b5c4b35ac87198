package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"FACEATTEND/config"
	"FACEATTEND/extractor"
	"FACEATTEND/helper"
	"FACEATTEND/logging"
	"FACEATTEND/metrics"
	"FACEATTEND/models"
	"FACEATTEND/service"
)

var embeddings = map[string][]float64{
	"ana":      {0, 0},
	"ana-live": {0.1, 0.1},
	"budi":     {10, 10},
	"stranger": {100, 100},
}

func stubExtractor() extractor.Extractor {
	return extractor.Func(func(_ context.Context, image []byte) ([]float64, error) {
		vec, ok := embeddings[string(image)]
		if !ok {
			return nil, extractor.ErrNoFace
		}
		return vec, nil
	})
}

type brokenStore struct {
	*models.MemoryStore
}

func (brokenStore) CreateUser(context.Context, *models.User) error {
	return errors.New("create user: database is read only")
}

type RouterSuite struct {
	suite.Suite
	cfg    *config.Config
	router *gin.Engine
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	hash, err := helper.HashPassword("s3cret")
	s.Require().NoError(err)

	s.cfg = config.Default()
	s.cfg.Admin = config.AdminConfig{
		Username:     "admin",
		PasswordHash: hash,
		JWTKey:       "test-signing-key",
		TokenTTL:     time.Hour,
	}
	s.router = s.newRouter(models.NewMemoryStore())
}

func (s *RouterSuite) newRouter(store models.Store) *gin.Engine {
	m := metrics.New()
	svc := service.New(store, stubExtractor(), logging.Discard(), m, service.Options{Tolerance: 0.5})
	return SetupRouter(s.cfg, logging.Discard(), svc, m)
}

func multipartBody(fields map[string]string, image string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	if image != "" {
		part, _ := w.CreateFormFile("image", image+".jpg")
		_, _ = part.Write([]byte(image))
	}
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func (s *RouterSuite) do(router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (s *RouterSuite) post(path string, fields map[string]string, image string) (*httptest.ResponseRecorder, map[string]any) {
	body, contentType := multipartBody(fields, image)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return s.do(s.router, req)
}

func (s *RouterSuite) get(path, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(s.router, req)
}

func (s *RouterSuite) login() string {
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, body := s.do(s.router, req)
	s.Require().Equal(http.StatusOK, rec.Code)
	return body["token"].(string)
}

func (s *RouterSuite) TestHome() {
	rec, _ := s.get("/", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Face Attendance Backend is Running!", rec.Body.String())
	s.NotEmpty(rec.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestRegister() {
	s.Run("created", func() {
		rec, body := s.post("/register", map[string]string{"name": "Ana", "email": "ana@example.com"}, "ana")
		s.Equal(http.StatusCreated, rec.Code)
		s.Equal("User registered!", body["message"])
		s.EqualValues(1, body["id"])
	})

	s.Run("missing image", func() {
		rec, body := s.post("/register", map[string]string{"name": "Ana"}, "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("No image uploaded", body["error"])
	})

	s.Run("no face", func() {
		rec, body := s.post("/register", map[string]string{"name": "Wall"}, "wall")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("No face detected", body["error"])
	})

	s.Run("invalid email", func() {
		rec, _ := s.post("/register", map[string]string{"email": "not-an-email"}, "ana")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("persistence failure", func() {
		router := s.newRouter(brokenStore{models.NewMemoryStore()})
		body, contentType := multipartBody(nil, "ana")
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		req.Header.Set("Content-Type", contentType)

		rec, resp := s.do(router, req)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.Contains(resp["error"], "read only")
	})
}

func (s *RouterSuite) TestMarkAttendance() {
	_, reg := s.post("/register", map[string]string{"name": "Ana"}, "ana")
	s.post("/register", map[string]string{"name": "Budi"}, "budi")

	s.Run("marked", func() {
		rec, body := s.post("/mark_attendance", nil, "ana-live")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Attendance marked!", body["message"])
		s.Equal(reg["id"], body["user_id"])
	})

	s.Run("already marked", func() {
		rec, body := s.post("/mark_attendance", nil, "ana")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Already marked today", body["message"])
		s.Equal(reg["id"], body["user_id"])
	})

	s.Run("not recognized", func() {
		rec, body := s.post("/mark_attendance", nil, "stranger")
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("User not recognized", body["message"])
	})

	s.Run("no face", func() {
		rec, body := s.post("/mark_attendance", nil, "wall")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("No face detected", body["error"])
	})

	s.Run("missing image", func() {
		rec, body := s.post("/mark_attendance", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("No image uploaded", body["error"])
	})
}

func (s *RouterSuite) TestAdmin() {
	s.post("/register", map[string]string{"name": "Ana"}, "ana")
	s.post("/mark_attendance", nil, "ana")

	s.Run("login rejected", func() {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		rec, _ := s.do(s.router, req)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("requires token", func() {
		rec, _ := s.get("/admin/users", "")
		s.Equal(http.StatusUnauthorized, rec.Code)

		rec, _ = s.get("/admin/users", "forged.token.value")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	token := s.login()

	s.Run("users", func() {
		rec, body := s.get("/admin/users", token)
		s.Equal(http.StatusOK, rec.Code)
		users := body["users"].([]any)
		s.Require().Len(users, 1)
		s.Equal("Ana", users[0].(map[string]any)["name"])
		s.NotContains(users[0], "embedding")
	})

	s.Run("daily attendance", func() {
		rec, body := s.get("/admin/attendance", token)
		s.Equal(http.StatusOK, rec.Code)
		s.Len(body["attendance"], 1)

		rec, _ = s.get("/admin/attendance?date=yesterday", token)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("history", func() {
		rec, body := s.get("/admin/users/1/attendance", token)
		s.Equal(http.StatusOK, rec.Code)
		s.Len(body["history"], 1)
		s.EqualValues(1, body["stats"].(map[string]any)["count"])

		rec, _ = s.get("/admin/users/99/attendance", token)
		s.Equal(http.StatusNotFound, rec.Code)

		rec, _ = s.get("/admin/users/abc/attendance", token)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *RouterSuite) TestAdminDisabled() {
	s.cfg.Admin = config.AdminConfig{}
	s.router = s.newRouter(models.NewMemoryStore())

	rec, _ := s.get("/admin/users", "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RouterSuite) TestMetrics() {
	s.post("/register", nil, "ana")

	rec, _ := s.get("/metrics", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "face_attendance_users_registered_total 1")
}

func (s *RouterSuite) TestCORS() {
	req := httptest.NewRequest(http.MethodOptions, "/register", nil)
	req.Header.Set("Origin", "http://kiosk.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}
