package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterAllow(t *testing.T) {
	l := NewInMemoryRateLimiter(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected under the limit", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request over the limit allowed")
	}
	// other keys are independent
	if !l.Allow("5.6.7.8") {
		t.Error("different key blocked")
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	l := NewInMemoryRateLimiter(1, 20*time.Millisecond)
	if !l.Allow("1.2.3.4") {
		t.Fatal("first request rejected")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("second request inside window allowed")
	}
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("1.2.3.4") {
		t.Error("request after window expiry rejected")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewInMemoryRateLimiter(2, time.Hour)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Code, want)
		}
	}
}
