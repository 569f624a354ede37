package schedule

import (
	"testing"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

func TestSchedule_Assign(t *testing.T) {
	s := New(DefaultMaxDailyHours)

	if err := s.Assign("N001", "monday_morning"); err != nil {
		t.Fatalf("分配班次失败: %v", err)
	}

	staff := s.AssignedStaff("monday_morning")
	if len(staff) != 1 || staff[0] != "N001" {
		t.Errorf("期望 [N001], 实际 %v", staff)
	}
	if s.HoursOn("N001", "monday") != 8 {
		t.Errorf("周一工时应为8, 实际 %.1f", s.HoursOn("N001", "monday"))
	}
}

func TestSchedule_Assign_UnknownSlot(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	if err := s.Assign("N001", "monday_night"); !errors.Is(err, errors.CodeSlotNotFound) {
		t.Errorf("未知槽位应返回 SLOT_NOT_FOUND, 实际 %v", err)
	}
}

func TestSchedule_Assign_Duplicate(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")

	err := s.Assign("N001", "monday_morning")
	if !errors.Is(err, errors.CodeScheduleConflict) {
		t.Errorf("重复分配应返回 SCHEDULE_CONFLICT, 实际 %v", err)
	}
}

func TestSchedule_Assign_SameDayOverlap(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")

	// 早班16:00结束，午班14:00开始，同日必然重叠
	err := s.Assign("N001", "monday_afternoon")
	if !errors.Is(err, errors.CodeScheduleConflict) {
		t.Errorf("同日早午班应返回 SCHEDULE_CONFLICT, 实际 %v", err)
	}

	// 次日班次不受影响
	if err := s.Assign("N001", "tuesday_afternoon"); err != nil {
		t.Errorf("次日班次分配失败: %v", err)
	}
}

func TestSchedule_Assign_NoPartialState(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")
	s.Assign("N001", "monday_afternoon") // 被拒绝

	// 拒绝的分配不应在任何一侧留下痕迹
	for _, id := range s.AssignedStaff("monday_afternoon") {
		if id == "N001" {
			t.Error("被拒绝的分配不应出现在槽位集合")
		}
	}
	if s.HoursOn("N001", "monday") != 8 {
		t.Errorf("被拒绝的分配不应计入工时, 实际 %.1f", s.HoursOn("N001", "monday"))
	}
}

func TestSchedule_Unassign(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")

	if err := s.Unassign("N001", "monday_morning"); err != nil {
		t.Fatalf("撤销分配失败: %v", err)
	}
	if s.HoursOn("N001", "monday") != 0 {
		t.Error("撤销后工时应归零")
	}

	err := s.Unassign("N001", "monday_morning")
	if !errors.Is(err, errors.CodeNotAssigned) {
		t.Errorf("重复撤销应返回 NOT_ASSIGNED, 实际 %v", err)
	}
}

func TestSchedule_UncoveredSlots(t *testing.T) {
	s := New(DefaultMaxDailyHours)

	uncovered := s.UncoveredSlots()
	if len(uncovered) != 14 {
		t.Fatalf("空班表应有14个无人值守槽位, 实际 %d", len(uncovered))
	}

	s.Assign("N001", "monday_morning")
	if len(s.UncoveredSlots()) != 13 {
		t.Errorf("分配1个槽位后应剩13个无人值守, 实际 %d", len(s.UncoveredSlots()))
	}
	if !s.HasUncovered() {
		t.Error("仍有无人值守槽位时 HasUncovered 应为真")
	}
}

func TestSchedule_FullCoverage(t *testing.T) {
	s := New(DefaultMaxDailyHours)

	// 两组人员交替覆盖全部14个槽位
	for _, day := range model.Days {
		s.Assign("N001", model.MakeSlotKey(day, model.PeriodMorning))
		s.Assign("N002", model.MakeSlotKey(day, model.PeriodAfternoon))
	}

	if s.HasUncovered() {
		t.Errorf("全覆盖后不应有无人值守槽位: %v", s.UncoveredSlots())
	}
}

func TestSchedule_SnapshotRestore(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")
	s.Assign("N002", "monday_morning")
	s.Assign("N001", "tuesday_afternoon")

	snap := s.Snapshot()
	if len(snap["monday_morning"]) != 2 {
		t.Fatalf("快照应含2名人员, 实际 %v", snap["monday_morning"])
	}

	restored := New(DefaultMaxDailyHours)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("快照恢复失败: %v", err)
	}
	if restored.HoursOn("N001", "monday") != 8 || restored.HoursOn("N001", "tuesday") != 8 {
		t.Error("恢复后工时索引应重建")
	}

	// 未知槽位键整体拒绝
	err := restored.Restore(map[model.SlotKey][]string{"monday_night": {"N001"}})
	if err == nil {
		t.Error("未知槽位键的快照应被拒绝")
	}
}

func TestSchedule_AllDailyHours(t *testing.T) {
	s := New(DefaultMaxDailyHours)
	s.Assign("N001", "monday_morning")
	s.Assign("N002", "tuesday_afternoon")

	all := s.AllDailyHours()
	if all["N001"]["monday"] != 8 {
		t.Errorf("N001 周一工时应为8, 实际 %.1f", all["N001"]["monday"])
	}
	if all["N002"]["tuesday"] != 8 {
		t.Errorf("N002 周二工时应为8, 实际 %.1f", all["N002"]["tuesday"])
	}
}
