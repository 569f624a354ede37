package model

import (
	"testing"
)

func TestSlotKey_Parse(t *testing.T) {
	tests := []struct {
		key    SlotKey
		day    string
		period Period
		ok     bool
	}{
		{"monday_morning", "monday", PeriodMorning, true},
		{"sunday_afternoon", "sunday", PeriodAfternoon, true},
		{"monday_night", "", "", false},
		{"someday_morning", "", "", false},
		{"monday", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		day, period, ok := tt.key.Parse()
		if ok != tt.ok {
			t.Errorf("Parse(%q): ok=%v, 期望 %v", tt.key, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if day != tt.day || period != tt.period {
			t.Errorf("Parse(%q) = (%s, %s), 期望 (%s, %s)", tt.key, day, period, tt.day, tt.period)
		}
	}
}

func TestMakeSlotKey(t *testing.T) {
	key := MakeSlotKey("Monday", PeriodMorning)
	if key != "monday_morning" {
		t.Errorf("Expected monday_morning, got %s", key)
	}
}

func TestAllSlotKeys(t *testing.T) {
	keys := AllSlotKeys()
	if len(keys) != 14 {
		t.Fatalf("周班表应有14个槽位, 实际 %d", len(keys))
	}
	if keys[0] != "monday_morning" || keys[13] != "sunday_afternoon" {
		t.Errorf("槽位顺序错误: 首 %s, 尾 %s", keys[0], keys[13])
	}
}

func TestShiftSlot_Hours(t *testing.T) {
	morning := NewShiftSlot("monday", PeriodMorning)
	if morning.Hours() != 8 {
		t.Errorf("早班时长应为8小时, 实际 %.1f", morning.Hours())
	}
	if morning.Clock.Start != "08:00" || morning.Clock.End != "16:00" {
		t.Errorf("早班时刻错误: %s-%s", morning.Clock.Start, morning.Clock.End)
	}

	afternoon := NewShiftSlot("monday", PeriodAfternoon)
	if afternoon.Clock.Start != "14:00" || afternoon.Clock.End != "22:00" {
		t.Errorf("午班时刻错误: %s-%s", afternoon.Clock.Start, afternoon.Clock.End)
	}
}

func TestClockRange_Overlaps(t *testing.T) {
	morning := ClockRange{Start: "08:00", End: "16:00"}
	afternoon := ClockRange{Start: "14:00", End: "22:00"}
	evening := ClockRange{Start: "16:00", End: "22:00"}

	if !morning.Overlaps(afternoon) {
		t.Error("早班与午班应判定为重叠")
	}
	if morning.Overlaps(evening) {
		t.Error("首尾相接的时段不应判定为重叠")
	}
}

func TestCareLevel_IsValid(t *testing.T) {
	if !CareLevelLow.IsValid() || !CareLevelHigh.IsValid() {
		t.Error("等级1-3应有效")
	}
	if CareLevel(0).IsValid() || CareLevel(4).IsValid() {
		t.Error("等级0和4应无效")
	}
}

func TestMobility_IsLimited(t *testing.T) {
	if MobilityIndependent.IsLimited() {
		t.Error("自主行动不应判定为受限")
	}
	if !MobilityAssisted.IsLimited() || !MobilityBedridden.IsLimited() {
		t.Error("需协助和卧床均应判定为受限")
	}
}

func TestPatientConfig_Validate(t *testing.T) {
	cfg := PatientConfig{
		PatientID: "P001",
		Name:      "王大明",
		Profile: CareProfile{
			Condition: "肺炎",
			CareLevel: CareLevelMedium,
			Mobility:  MobilityIndependent,
		},
	}
	if ve := cfg.Validate(); ve.HasErrors() {
		t.Errorf("合法配置不应有验证错误: %v", ve)
	}

	bad := PatientConfig{
		Email: "not-an-email",
		Profile: CareProfile{
			CareLevel: CareLevel(9),
			Mobility:  Mobility("flying"),
		},
	}
	ve := bad.Validate()
	if !ve.HasErrors() {
		t.Fatal("非法配置应产生验证错误")
	}
	// patient_id、name、condition、care_level、mobility、email 全部不通过
	if len(ve.Errors) != 6 {
		t.Errorf("期望6项验证错误, 实际 %d", len(ve.Errors))
	}
}

func TestNewDoctor_Validation(t *testing.T) {
	_, err := NewDoctor(DoctorConfig{Name: "李医生"})
	if err == nil {
		t.Fatal("缺少员工编号和执业证号时应返回错误")
	}

	doc, err := NewDoctor(DoctorConfig{
		StaffID:   "D001",
		Name:      "李医生",
		Specialty: "呼吸内科",
		LicenseNo: "LIC-2024-001",
	})
	if err != nil {
		t.Fatalf("合法配置创建失败: %v", err)
	}
	if doc.ID.String() == "" {
		t.Error("医生应分配UUID")
	}
}

func TestBedID(t *testing.T) {
	if got := BedID("A3", 1); got != "A3-1" {
		t.Errorf("Expected A3-1, got %s", got)
	}
}

func TestWard_Utilization(t *testing.T) {
	ward := &Ward{
		Code: "WARD_A",
		Rooms: []*Room{
			{Code: "A1", Beds: []*Bed{
				{ID: "A1-1", RoomCode: "A1", PatientID: "P001"},
				{ID: "A1-2", RoomCode: "A1"},
			}},
		},
	}

	if ward.TotalBeds() != 2 {
		t.Errorf("期望2张床, 实际 %d", ward.TotalBeds())
	}
	if ward.OccupiedBeds() != 1 {
		t.Errorf("期望1张占用, 实际 %d", ward.OccupiedBeds())
	}
	if ward.Utilization() != 0.5 {
		t.Errorf("期望占用率0.5, 实际 %.2f", ward.Utilization())
	}
}
