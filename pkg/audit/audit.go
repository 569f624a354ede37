// Package audit 提供操作审计日志
// 审计条目保留在内存环形缓冲中，可选接入归档存储
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bingfang/bingfang/pkg/logger"
)

// Category 审计分类
type Category string

const (
	CategoryStaff      Category = "STAFF"
	CategoryPatient    Category = "PATIENT"
	CategoryCompliance Category = "COMPLIANCE"
	CategorySystem     Category = "SYSTEM"
)

// Entry 审计条目
type Entry struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// Sink 审计归档接口
// 归档失败只记日志，不影响业务操作
type Sink interface {
	Archive(ctx context.Context, entry Entry) error
}

// Logger 审计日志器
// 条目按时间追加，超出容量时淘汰最旧条目
type Logger struct {
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
	sink       Sink
	log        *logger.HospitalLogger
}

// DefaultMaxEntries 默认内存保留条数
const DefaultMaxEntries = 10000

// NewLogger 创建审计日志器
func NewLogger(maxEntries int) *Logger {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Logger{
		maxEntries: maxEntries,
		log:        logger.NewHospitalLogger(),
	}
}

// WithSink 设置归档存储
func (l *Logger) WithSink(sink Sink) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink = sink
	return l
}

// Record 记录一条审计条目
func (l *Logger) Record(category Category, actor, action, description string) Entry {
	entry := Entry{
		ID:          uuid.New().String(),
		Category:    category,
		Actor:       actor,
		Action:      action,
		Description: description,
		At:          time.Now(),
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	sink := l.sink
	l.mu.Unlock()

	logger.Get().Info().
		Str("category", string(category)).
		Str("actor", actor).
		Str("action", action).
		Msg(description)

	if sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.Archive(ctx, entry); err != nil {
			logger.WithError(err).
				Str("entry_id", entry.ID).
				Msg("审计条目归档失败")
		}
	}
	return entry
}

// StaffAction 记录人员管理操作
func (l *Logger) StaffAction(actor, action, description string) Entry {
	return l.Record(CategoryStaff, actor, action, description)
}

// PatientAction 记录患者管理操作
func (l *Logger) PatientAction(actor, action, description string) Entry {
	return l.Record(CategoryPatient, actor, action, description)
}

// ComplianceEvent 记录合规检查事件
func (l *Logger) ComplianceEvent(actor, action, description string) Entry {
	return l.Record(CategoryCompliance, actor, action, description)
}

// SystemEvent 记录系统事件
func (l *Logger) SystemEvent(action, description string) Entry {
	return l.Record(CategorySystem, "system", action, description)
}

// Recent 返回最近的n条审计条目，按时间倒序
func (l *Logger) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	result := make([]Entry, n)
	for i := 0; i < n; i++ {
		result[i] = l.entries[len(l.entries)-1-i]
	}
	return result
}

// ByCategory 返回指定分类的最近n条审计条目，按时间倒序
func (l *Logger) ByCategory(category Category, n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []Entry
	for i := len(l.entries) - 1; i >= 0 && (n <= 0 || len(result) < n); i-- {
		if l.entries[i].Category == category {
			result = append(result, l.entries[i])
		}
	}
	return result
}

// Len 返回当前条目数量
func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// TrimOlderThan 清理早于保留期的条目，返回清理数量
func (l *Logger) TrimOlderThan(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := 0
	for idx < len(l.entries) && l.entries[idx].At.Before(cutoff) {
		idx++
	}
	if idx == 0 {
		return 0
	}
	l.entries = append([]Entry(nil), l.entries[idx:]...)
	return idx
}
