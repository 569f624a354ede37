package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter_ConfiguredLimit(t *testing.T) {
	globalRateLimiter = NewRateLimiter(2)

	handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 初始令牌等于配置的QPS，连发请求耗尽后限流
	var allowed, limited int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/patients", nil))
		switch w.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	if allowed < 2 {
		t.Errorf("限额内请求应放行, 实际放行 %d", allowed)
	}
	if limited == 0 {
		t.Error("超限请求应返回429")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(1000)
	for i := 0; i < 1000; i++ {
		rl.Allow()
	}
	// 高速率下令牌快速回补
	var recovered bool
	for i := 0; i < 100000; i++ {
		if rl.Allow() {
			recovered = true
			break
		}
	}
	if !recovered {
		t.Error("令牌桶应随时间回补")
	}
}
