package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLogger_RecordAndRecent(t *testing.T) {
	l := NewLogger(100)

	l.StaffAction("admin", "add_doctor", "医生 D001 入职")
	l.PatientAction("admin", "admit_patient", "患者 P001 入院")
	l.SystemEvent("startup", "服务启动")

	if l.Len() != 3 {
		t.Fatalf("期望3条审计, 实际 %d", l.Len())
	}

	recent := l.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("期望2条, 实际 %d", len(recent))
	}
	// 时间倒序：最新在前
	if recent[0].Action != "startup" || recent[1].Action != "admit_patient" {
		t.Errorf("倒序错误: %s, %s", recent[0].Action, recent[1].Action)
	}
	if recent[0].ID == "" {
		t.Error("审计条目应分配ID")
	}
	if recent[0].Actor != "system" {
		t.Errorf("系统事件操作者应为 system, 实际 %s", recent[0].Actor)
	}
}

func TestLogger_ByCategory(t *testing.T) {
	l := NewLogger(100)
	l.StaffAction("admin", "add_nurse", "护士入职")
	l.PatientAction("admin", "admit_patient", "患者入院")
	l.PatientAction("admin", "discharge_patient", "患者出院")

	patient := l.ByCategory(CategoryPatient, 0)
	if len(patient) != 2 {
		t.Fatalf("期望2条患者审计, 实际 %d", len(patient))
	}
	if patient[0].Action != "discharge_patient" {
		t.Errorf("应按时间倒序, 首条 %s", patient[0].Action)
	}

	staff := l.ByCategory(CategoryStaff, 1)
	if len(staff) != 1 || staff[0].Category != CategoryStaff {
		t.Errorf("分类过滤错误: %v", staff)
	}
}

func TestLogger_CapacityEviction(t *testing.T) {
	l := NewLogger(3)
	for i := 0; i < 5; i++ {
		l.SystemEvent("tick", "周期事件")
	}
	if l.Len() != 3 {
		t.Errorf("超出容量应淘汰最旧条目, 实际 %d 条", l.Len())
	}
}

func TestLogger_TrimOlderThan(t *testing.T) {
	l := NewLogger(100)
	l.SystemEvent("old", "旧事件")

	// 保留期为0意味着当前时刻之前的条目全部清理
	time.Sleep(5 * time.Millisecond)
	removed := l.TrimOlderThan(0)
	if removed != 1 {
		t.Errorf("期望清理1条, 实际 %d", removed)
	}
	if l.Len() != 0 {
		t.Errorf("清理后应为空, 实际 %d 条", l.Len())
	}

	l.SystemEvent("fresh", "新事件")
	if removed := l.TrimOlderThan(time.Hour); removed != 0 {
		t.Errorf("保留期内条目不应清理, 实际清理 %d", removed)
	}
}

// recordingSink 记录归档调用的测试桩
type recordingSink struct {
	mu      sync.Mutex
	entries []Entry
	fail    error
}

func (s *recordingSink) Archive(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.entries = append(s.entries, entry)
	return nil
}

func TestLogger_SinkArchive(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(100).WithSink(sink)

	entry := l.StaffAction("admin", "add_doctor", "医生入职")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.entries) != 1 {
		t.Fatalf("归档应被调用1次, 实际 %d", len(sink.entries))
	}
	if sink.entries[0].ID != entry.ID {
		t.Error("归档条目与返回条目应一致")
	}
}

func TestLogger_SinkFailureDoesNotBlock(t *testing.T) {
	sink := &recordingSink{fail: context.DeadlineExceeded}
	l := NewLogger(100).WithSink(sink)

	l.SystemEvent("tick", "周期事件")

	// 归档失败只记日志，条目仍保留在内存
	if l.Len() != 1 {
		t.Errorf("归档失败不应影响内存记录, 实际 %d 条", l.Len())
	}
}
