package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateRequestID_Length(t *testing.T) {
	id := GenerateRequestID()
	if len(id) != 8 {
		t.Errorf("GenerateRequestID() length = %d, want 8", len(id))
	}
	if id == GenerateRequestID() {
		t.Error("two generated ids collided")
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc123")
	if got := GetRequestID(ctx); got != "abc123" {
		t.Errorf("GetRequestID = %q, want abc123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q, want empty", got)
	}
}

func TestL_TagsRecordsWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := WithRequestID(context.Background(), "req-42")
	L(ctx).Info("sync failed", "community", "c-1")
	if !strings.Contains(buf.String(), "requestId=req-42") {
		t.Errorf("log line missing request id: %s", buf.String())
	}

	buf.Reset()
	L(context.Background()).Info("no id")
	if strings.Contains(buf.String(), "requestId") {
		t.Errorf("log line has spurious request id: %s", buf.String())
	}
}

func TestMiddleware_PropagatesHeader(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	// Caller-supplied id is honored.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "caller-id" || rec.Header().Get("X-Request-ID") != "caller-id" {
		t.Errorf("caller id not propagated: ctx=%q header=%q", seen, rec.Header().Get("X-Request-ID"))
	}

	// Absent id is generated.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") == "" {
		t.Error("request id not generated when absent")
	}
}
