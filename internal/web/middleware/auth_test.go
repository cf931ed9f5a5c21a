package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vecindo/vecindo/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:middleware-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.AutoMigrate(&models.Config{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return database
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	db := newTestDB(t)
	db.Create(&models.Config{Key: "api_key", Value: "vk-test-key"})

	handler := APIKeyAuth(db)(okHandler())

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"bearer token valid", "Authorization", "Bearer vk-test-key", http.StatusOK},
		{"x-api-key valid", "x-api-key", "vk-test-key", http.StatusOK},
		{"bearer token wrong", "Authorization", "Bearer vk-wrong", http.StatusUnauthorized},
		{"x-api-key wrong", "x-api-key", "nope", http.StatusUnauthorized},
		{"no credentials", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/communities", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAPIKeyAuthOpenWhenUnconfigured(t *testing.T) {
	db := newTestDB(t)
	handler := APIKeyAuth(db)(okHandler())

	req := httptest.NewRequest("GET", "/api/communities", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open access with no key configured, got %d", rec.Code)
	}
}
