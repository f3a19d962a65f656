package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"qrtrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRedirectAndTrack(t *testing.T) {
	geoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"United States","city":"New York"}`))
	}))
	defer geoServer.Close()

	h, db := setupTestHandler(t, geoServer.URL)
	r := setupTestRouter(h)
	tokenString := registerAndLogin(t, r, "alice")

	t.Run("Unknown identifier is 404, no scan recorded", func(t *testing.T) {
		var before int64
		db.Model(&models.Scan{}).Count(&before)

		w := doJSON(r, "GET", "/api/qr/redirect/NONEXISTENT", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var after int64
		db.Model(&models.Scan{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Round trip: generate then redirect", func(t *testing.T) {
		identifier := generateCode(t, r, tokenString, "example.com", "")

		w := doJSON(r, "GET", "/api/qr/redirect/"+identifier, "", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Location"))
	})

	t.Run("Redirect by custom alias", func(t *testing.T) {
		generateCode(t, r, tokenString, "https://aliased.example.com", "my-promo")

		w := doJSON(r, "GET", "/api/qr/redirect/my-promo", "", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://aliased.example.com", w.Header().Get("Location"))
	})

	t.Run("Scan enriched with device and location", func(t *testing.T) {
		identifier := generateCode(t, r, tokenString, "https://tracked.example.com", "")

		req, _ := http.NewRequest("GET", "/api/qr/redirect/"+identifier, nil)
		req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)")
		req.RemoteAddr = "8.8.8.8:40000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)

		var scan models.Scan
		assert.NoError(t, db.Joins("JOIN qr_codes ON qr_codes.id = scans.qr_code_id").
			Where("qr_codes.identifier = ?", identifier).First(&scan).Error)
		assert.Equal(t, models.DeviceMobile, scan.DeviceInfo)
		assert.Equal(t, "8.8.8.8", scan.IPAddress)
		assert.Equal(t, "United States", scan.Country)
		assert.Equal(t, "New York", scan.City)
	})

	t.Run("Missing user agent records unknown", func(t *testing.T) {
		identifier := generateCode(t, r, tokenString, "https://bare.example.com", "")

		req, _ := http.NewRequest("GET", "/api/qr/redirect/"+identifier, nil)
		req.Header.Del("User-Agent")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)

		var scan models.Scan
		assert.NoError(t, db.Joins("JOIN qr_codes ON qr_codes.id = scans.qr_code_id").
			Where("qr_codes.identifier = ?", identifier).First(&scan).Error)
		assert.Equal(t, models.DeviceUnknown, scan.DeviceInfo)
	})

	t.Run("Redirect reflects updated URL", func(t *testing.T) {
		identifier := generateCode(t, r, tokenString, "https://old.example.com", "")

		w := doJSON(r, "PUT", "/api/qr/"+identifier+"/url", tokenString, gin.H{"newUrl": "https://new.example.com"})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(r, "GET", "/api/qr/redirect/"+identifier, "", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://new.example.com", w.Header().Get("Location"))
	})
}

func TestRedirectAndTrack_GeoDown(t *testing.T) {
	h, db := setupTestHandler(t, "http://127.0.0.1:1")
	r := setupTestRouter(h)
	tokenString := registerAndLogin(t, r, "alice")

	identifier := generateCode(t, r, tokenString, "https://example.com", "")

	req, _ := http.NewRequest("GET", "/api/qr/redirect/"+identifier, nil)
	req.Header.Set("User-Agent", "curl/8.0.1")
	req.RemoteAddr = "8.8.8.8:40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// lookup failure never breaks the redirect
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))

	var scan models.Scan
	assert.NoError(t, db.Joins("JOIN qr_codes ON qr_codes.id = scans.qr_code_id").
		Where("qr_codes.identifier = ?", identifier).First(&scan).Error)
	assert.Empty(t, scan.Country)
	assert.Empty(t, scan.City)
}
