// Package middleware 提供HTTP中间件
package middleware

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"github.com/bingfang/bingfang/internal/security"
	"github.com/bingfang/bingfang/pkg/logger"
)

// contextKey 上下文键类型
type contextKey string

const sessionKey contextKey = "session"

// WithSession 将会话放入上下文
func WithSession(ctx context.Context, s *security.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext 从上下文取出会话
func SessionFromContext(ctx context.Context) (*security.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*security.Session)
	return s, ok
}

// AuthConfig 认证配置
type AuthConfig struct {
	SessionManager  *security.SessionManager
	RateLimiter     *security.RateLimiter
	SkipPaths       []string // 跳过认证的路径
	EnableRateLimit bool
}

// AuthMiddleware 认证中间件
func AuthMiddleware(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 检查是否跳过认证
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 提取会话令牌
			token := security.ExtractToken(r)
			if token == "" {
				http.Error(w, `{"error":"missing_session","message":"会话令牌未提供"}`, http.StatusUnauthorized)
				return
			}

			// 验证会话
			session, err := config.SessionManager.Validate(token)
			if err != nil {
				logger.Warn().Err(err).Msg("会话验证失败")
				http.Error(w, `{"error":"invalid_session","message":"无效的会话令牌"}`, http.StatusUnauthorized)
				return
			}

			// 检查频率限制
			if config.EnableRateLimit && config.RateLimiter != nil {
				if !config.RateLimiter.Allow(session.StaffID) {
					http.Error(w, `{"error":"rate_limit","message":"请求频率超限"}`, http.StatusTooManyRequests)
					return
				}
			}

			// 将会话信息添加到上下文
			ctx := WithSession(r.Context(), session)
			ctx = context.WithValue(ctx, "operator_id", session.StaffID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Operator-ID", session.StaffID)

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole 角色检查中间件，管理员放行全部操作
func RequireRole(role string, manager *security.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := manager.Validate(token)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if !session.HasRole(role) {
				http.Error(w, `{"error":"forbidden","message":"权限不足"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		operator := "anonymous"
		if s, ok := SessionFromContext(r.Context()); ok {
			operator = s.StaffID
		}

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("operator", operator).
			Msg("收到请求")
		next.ServeHTTP(w, r)
	})
}

// SecurityHeadersMiddleware 安全头中间件
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 安全相关响应头
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware 恢复中间件（捕获panic）
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().Interface("panic", err).Msg("请求处理崩溃")
				http.Error(w, `{"error":"internal_error","message":"服务器内部错误"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("req_%x", b[:8])
}
