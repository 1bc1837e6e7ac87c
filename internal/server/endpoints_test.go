package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aquastream/transcriptd/internal/component"
)

func healthRequest(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestHealthAggregation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		components []component.Health
		wantStatus string
		wantHTTP   int
	}{
		{
			"all healthy",
			[]component.Health{
				{Name: "redis", Status: component.StatusHealthy},
				{Name: "worker", Status: component.StatusHealthy},
			},
			"healthy", http.StatusOK,
		},
		{
			"one degraded",
			[]component.Health{
				{Name: "redis", Status: component.StatusHealthy},
				{Name: "worker", Status: component.StatusDegraded},
			},
			"degraded", http.StatusOK,
		},
		{
			"one unhealthy",
			[]component.Health{
				{Name: "redis", Status: component.StatusUnhealthy, Message: "connection refused"},
				{Name: "worker", Status: component.StatusHealthy},
			},
			"unhealthy", http.StatusServiceUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", Health("transcriptd", func(_ context.Context) []component.Health {
				return tc.components
			}))

			w := healthRequest(engine, "/health")
			if w.Code != tc.wantHTTP {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantHTTP)
			}

			var body struct {
				Status  string `json:"status"`
				Service string `json:"service"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Status != tc.wantStatus {
				t.Fatalf("body status = %q, want %q", body.Status, tc.wantStatus)
			}
			if body.Service != "transcriptd" {
				t.Fatalf("service = %q", body.Service)
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/alive", Liveness("transcriptd"))

	w := healthRequest(engine, "/alive")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "transcriptd" {
		t.Fatalf("body = %v", body)
	}
}
