package stats

import (
	"math"
	"testing"

	"github.com/bingfang/bingfang/pkg/model"
	"github.com/bingfang/bingfang/pkg/registry"
)

func TestCoverageAnalyzer_Empty(t *testing.T) {
	m := NewCoverageAnalyzer().Analyze(nil)

	if m.TotalSlots != 14 || m.AssignedSlots != 0 {
		t.Fatalf("空班表: 总槽位 %d, 已分配 %d", m.TotalSlots, m.AssignedSlots)
	}
	if m.OverallCoverage != 0 {
		t.Errorf("覆盖率应为0, 实际 %.1f", m.OverallCoverage)
	}
	if len(m.UncoveredSlots) != 14 {
		t.Errorf("应有14个无人值守槽位, 实际 %d", len(m.UncoveredSlots))
	}
}

func TestCoverageAnalyzer_PartialCoverage(t *testing.T) {
	assignments := map[model.SlotKey][]string{
		"monday_morning":   {"N001", "N002"},
		"monday_afternoon": {"N003"},
		"tuesday_morning":  {"N001"},
	}
	m := NewCoverageAnalyzer().Analyze(assignments)

	if m.AssignedSlots != 3 {
		t.Fatalf("期望3个已分配槽位, 实际 %d", m.AssignedSlots)
	}
	expected := 3.0 / 14.0 * 100
	if math.Abs(m.OverallCoverage-expected) > 0.01 {
		t.Errorf("期望覆盖率 %.2f, 实际 %.2f", expected, m.OverallCoverage)
	}

	monday := m.DailyCoverage["monday"]
	if monday.Assigned != 2 || monday.CoverageRate != 100 {
		t.Errorf("周一应全覆盖: %+v", monday)
	}
	if monday.StaffCount != 3 {
		t.Errorf("周一在岗人数应为3, 实际 %d", monday.StaffCount)
	}
	// 早班2人各8小时 + 午班1人8小时
	if monday.TotalHours != 24 {
		t.Errorf("周一总工时应为24, 实际 %.1f", monday.TotalHours)
	}

	expectedMorning := 2.0 / 7.0 * 100
	if math.Abs(m.PeriodCoverage["morning"]-expectedMorning) > 0.01 {
		t.Errorf("期望早班覆盖率 %.2f, 实际 %.2f", expectedMorning, m.PeriodCoverage["morning"])
	}
}

func TestOccupancyAnalyze(t *testing.T) {
	reg := registry.New(registry.DefaultLayout())
	reg.Occupy("A1-1", "P001")
	reg.Occupy("B1-1", "P002")
	reg.Occupy("B2-1", "P003")

	m := AnalyzeOccupancy(reg.AllBeds())

	if m.TotalBeds != 31 || m.OccupiedBeds != 3 || m.FreeBeds != 28 {
		t.Fatalf("床位统计错误: 总%d 占用%d 空闲%d", m.TotalBeds, m.OccupiedBeds, m.FreeBeds)
	}
	if m.WardOccupancy["WARD_B"].OccupiedBeds != 2 {
		t.Errorf("B区应占用2床, 实际 %d", m.WardOccupancy["WARD_B"].OccupiedBeds)
	}
	// 隔离床位共7张（A1×2 A3×1 B1×3 B4×1），占用了A1-1和B1-1
	if m.IsolationFree != 5 {
		t.Errorf("空余隔离床位应为5, 实际 %d", m.IsolationFree)
	}
}

func TestWorkloadAnalyzer_Gini(t *testing.T) {
	// 完全均衡：两人各两班
	balanced := map[model.SlotKey][]string{
		"monday_morning":    {"N001"},
		"tuesday_morning":   {"N001"},
		"wednesday_morning": {"N002"},
		"thursday_morning":  {"N002"},
	}
	m := NewWorkloadAnalyzer().Analyze(balanced)
	if m.WorkloadGini != 0 {
		t.Errorf("均衡分布基尼系数应为0, 实际 %.3f", m.WorkloadGini)
	}
	if m.AvgHoursPerStaff != 16 || m.MaxHours != 16 || m.MinHours != 16 {
		t.Errorf("工时统计错误: %+v", m)
	}

	// 极端不均：一人全包
	skewed := map[model.SlotKey][]string{
		"monday_morning":  {"N001"},
		"tuesday_morning": {"N001"},
		"friday_morning":  {"N001"},
		"sunday_morning":  {"N002"},
	}
	m2 := NewWorkloadAnalyzer().Analyze(skewed)
	if m2.WorkloadGini <= m.WorkloadGini {
		t.Errorf("不均分布的基尼系数应更大: %.3f", m2.WorkloadGini)
	}
}

func TestWorkloadAnalyzer_WeekendSlots(t *testing.T) {
	assignments := map[model.SlotKey][]string{
		"saturday_morning": {"N001"},
		"sunday_afternoon": {"N001"},
		"monday_morning":   {"N001"},
	}
	m := NewWorkloadAnalyzer().Analyze(assignments)

	if len(m.StaffStats) != 1 {
		t.Fatalf("期望1名员工统计, 实际 %d", len(m.StaffStats))
	}
	stat := m.StaffStats[0]
	if stat.WeekendSlots != 2 {
		t.Errorf("周末班次应为2, 实际 %d", stat.WeekendSlots)
	}
	if stat.TotalHours != 24 || stat.SlotCount != 3 {
		t.Errorf("工时统计错误: %+v", stat)
	}
}

func TestWorkloadAnalyzer_Empty(t *testing.T) {
	m := NewWorkloadAnalyzer().Analyze(nil)
	if m.WorkloadGini != 0 || len(m.StaffStats) != 0 {
		t.Errorf("空班表应返回零值指标: %+v", m)
	}
}
