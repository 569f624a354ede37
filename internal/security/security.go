// Package security 提供安全功能
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidSession    = errors.New("无效的会话令牌")
	ErrExpiredSession    = errors.New("会话已过期")
	ErrRateLimitExceeded = errors.New("请求频率超限")
)

// DefaultSessionTTL 默认会话有效期
const DefaultSessionTTL = 8 * time.Hour

// Session 操作员会话
type Session struct {
	Token     string    `json:"token"`
	StaffID   string    `json:"staff_id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Enabled   bool      `json:"enabled"`
}

// IsValid 检查会话是否有效
func (s *Session) IsValid() bool {
	if !s.Enabled {
		return false
	}
	return s.ExpiresAt.After(time.Now())
}

// HasRole 检查会话角色
func (s *Session) HasRole(role string) bool {
	return s.Role == role || s.Role == "manager"
}

// SessionManager 会话管理器
type SessionManager struct {
	sessions map[string]*Session // token -> Session
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewSessionManager 创建会话管理器
func NewSessionManager(ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create 创建新会话
func (m *SessionManager) Create(staffID, role, name string) (*Session, error) {
	token, err := generateRandomString(32)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		Token:     "st_" + token,
		StaffID:   staffID,
		Role:      role,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
		Enabled:   true,
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	return session, nil
}

// Validate 验证会话令牌
func (m *SessionManager) Validate(token string) (*Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[token]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidSession
	}

	if !session.IsValid() {
		return nil, ErrExpiredSession
	}

	return session, nil
}

// Revoke 注销会话
func (m *SessionManager) Revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, exists := m.sessions[token]; exists {
		session.Enabled = false
	}
}

// Delete 删除会话
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Purge 清理过期会话，返回清理数量
func (m *SessionManager) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, session := range m.sessions {
		if !session.IsValid() {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

// RateLimiter 请求频率限制器
type RateLimiter struct {
	requests map[string][]time.Time // key -> request timestamps
	limit    int                    // 时间窗口内最大请求数
	window   time.Duration          // 时间窗口
	mu       sync.Mutex
}

// NewRateLimiter 创建频率限制器
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}

	// 启动清理协程
	go rl.cleanup()

	return rl
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	// 获取时间窗口内的请求
	reqs := rl.requests[key]
	var validReqs []time.Time
	for _, t := range reqs {
		if t.After(windowStart) {
			validReqs = append(validReqs, t)
		}
	}

	// 检查是否超限
	if len(validReqs) >= rl.limit {
		return false
	}

	// 记录新请求
	validReqs = append(validReqs, now)
	rl.requests[key] = validReqs

	return true
}

// cleanup 定期清理过期数据
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		windowStart := now.Add(-rl.window)

		for key, reqs := range rl.requests {
			var validReqs []time.Time
			for _, t := range reqs {
				if t.After(windowStart) {
					validReqs = append(validReqs, t)
				}
			}
			if len(validReqs) == 0 {
				delete(rl.requests, key)
			} else {
				rl.requests[key] = validReqs
			}
		}
		rl.mu.Unlock()
	}
}

// ExtractToken 从请求中提取会话令牌
func ExtractToken(r *http.Request) string {
	// 1. 从 Authorization header
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	// 2. 从 X-Session-Token header
	if token := r.Header.Get("X-Session-Token"); token != "" {
		return token
	}

	// 3. 从 query parameter
	if token := r.URL.Query().Get("session_token"); token != "" {
		return token
	}

	return ""
}

// generateRandomString 生成随机字符串
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

// HashPassword 哈希密码
func HashPassword(password string) string {
	h := sha256.New()
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPassword 验证密码
func VerifyPassword(password, hash string) bool {
	return HashPassword(password) == hash
}

// SanitizeInput 清理输入（防止注入）
func SanitizeInput(input string) string {
	// 基本清理
	input = strings.TrimSpace(input)
	// 移除可能的SQL注入字符
	dangerous := []string{"--", ";", "/*", "*/", "xp_", "@@"}
	for _, d := range dangerous {
		input = strings.ReplaceAll(input, d, "")
	}
	return input
}
