package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"qrtrack/internal/config"
	"qrtrack/internal/models"
	"qrtrack/internal/services"
	"qrtrack/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

var dsnSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

func setupTestHandler(t *testing.T, geoProviderURL string) (*Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dsnSanitizer.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.QRCode{}, &models.URLChange{}, &models.Scan{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		BaseURL:      "http://localhost:8000",
		JWTSecret:    "test-secret-12345678901234567890123456789012",
		GeoProvider:  geoProviderURL,
		GeoTimeoutMS: 500,
	}

	audit := services.NewAuditService(db, logger)
	geo := services.NewGeoService(cfg, logger)
	qr := services.NewQRService()
	codes := services.NewCodeService(db, audit, qr, cfg.BaseURL)
	tracker := services.NewTrackerService(db, nil, logger, geo)
	analytics := services.NewAnalyticsService(db)
	tokens := token.NewManager(cfg.JWTSecret, time.Hour)

	h := NewHandler(cfg, logger, db, tokens, codes, tracker, analytics, audit)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

func doJSON(r *gin.Engine, method, path, tokenString string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tokenString != "" {
		req.Header.Set("Authorization", "Bearer "+tokenString)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates an account through the API and returns a live
// bearer token for it.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()

	w := doJSON(r, "POST", "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-pass",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, "POST", "/api/auth/login", "", gin.H{
		"username": username,
		"password": "secret-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	return resp.Token
}

func generateCode(t *testing.T, r *gin.Engine, tokenString, targetURL, alias string) string {
	t.Helper()

	body := gin.H{"targetUrl": targetURL}
	if alias != "" {
		body["customAlias"] = alias
	}
	w := doJSON(r, "POST", "/api/qr/generate", tokenString, body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Identifier string `json:"identifier"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Identifier)
	return resp.Data.Identifier
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupTestHandler(t, "http://example.invalid")
	r := setupTestRouter(h)

	w := doJSON(r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
