package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRealIP(t *testing.T) {
	tests := []struct {
		name   string
		fwd    string
		real   string
		remote string
		want   string
	}{
		{name: "first x-forwarded-for entry", fwd: "1.2.3.4, 5.6.7.8", want: "1.2.3.4"},
		{name: "x-real-ip fallback", real: "9.10.11.12", want: "9.10.11.12"},
		{name: "remote addr fallback", remote: "192.168.1.1:54321", want: "192.168.1.1"},
		{name: "forwarded wins over real-ip", fwd: "1.1.1.1", real: "2.2.2.2", want: "1.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/sms", nil)
			if tt.fwd != "" {
				req.Header.Set("X-Forwarded-For", tt.fwd)
			}
			if tt.real != "" {
				req.Header.Set("X-Real-Ip", tt.real)
			}
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			assert.Equal(t, tt.want, realIP(req))
		})
	}
}

func TestLimit_BurstExhaustedReturns429(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/sms", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.1")
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sms", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestLimit_BucketsArePerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/v1/sms", nil)
	first.Header.Set("X-Real-Ip", "10.0.0.1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, first)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Same IP is now drained, a different IP is not.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, first)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	other := httptest.NewRequest(http.MethodPost, "/v1/sms", nil)
	other.Header.Set("X-Real-Ip", "10.0.0.2")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusOK, rr.Code)
}
