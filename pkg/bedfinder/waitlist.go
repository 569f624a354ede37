// Package bedfinder 提供智能床位匹配引擎
package bedfinder

import (
	"sync"
	"time"

	"github.com/bingfang/bingfang/pkg/model"
)

// WaitEntry 等候队列条目
type WaitEntry struct {
	Config     model.PatientConfig `json:"config"`
	EnqueuedAt time.Time           `json:"enqueued_at"`
}

// WaitingList 入院等候队列
// 按到达时间先进先出；出院释放床位后由上层服务出队重试
type WaitingList struct {
	mu      sync.Mutex
	entries []*WaitEntry
}

// NewWaitingList 创建空等候队列
func NewWaitingList() *WaitingList {
	return &WaitingList{}
}

// Enqueue 患者进入等候队列
func (w *WaitingList) Enqueue(cfg model.PatientConfig) *WaitEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry := &WaitEntry{Config: cfg, EnqueuedAt: time.Now()}
	w.entries = append(w.entries, entry)
	return entry
}

// Dequeue 取出队首患者
func (w *WaitingList) Dequeue() (*WaitEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.entries) == 0 {
		return nil, false
	}
	entry := w.entries[0]
	w.entries = w.entries[1:]
	return entry, true
}

// Peek 查看队首患者但不出队
func (w *WaitingList) Peek() (*WaitEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.entries) == 0 {
		return nil, false
	}
	return w.entries[0], true
}

// Contains 检查患者是否已在队列中
func (w *WaitingList) Contains(patientID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, entry := range w.entries {
		if entry.Config.PatientID == patientID {
			return true
		}
	}
	return false
}

// Len 返回等候人数
func (w *WaitingList) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Entries 返回等候队列副本，保持到达顺序
func (w *WaitingList) Entries() []*WaitEntry {
	w.mu.Lock()
	defer w.mu.Unlock()

	result := make([]*WaitEntry, len(w.entries))
	copy(result, w.entries)
	return result
}
