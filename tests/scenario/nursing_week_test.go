// Package scenario 提供场景测试
package scenario

import (
	"fmt"
	"testing"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

// TestNursingTeamWeekSchedule 护理组周排班场景：
// 4名护士轮换覆盖全周14个班次，单人单日不超8小时，
// 排班完成后合规检查通过且工时分布均衡
func TestNursingTeamWeekSchedule(t *testing.T) {
	svc := newHospital(t)

	svc.AddDoctor("head_nurse", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	nurses := []string{"李护士", "王护士", "赵护士", "刘护士"}
	for i, name := range nurses {
		if _, err := svc.AddNurse("head_nurse", model.NurseConfig{
			StaffID: fmt.Sprintf("N%03d", i+1), Name: name, Certification: "RN",
		}); err != nil {
			t.Fatalf("护士入职失败: %v", err)
		}
	}

	// 轮换排班：N001/N002 值早班，N003/N004 值午班
	for i, day := range model.Days {
		morning := fmt.Sprintf("N%03d", i%2+1)
		afternoon := fmt.Sprintf("N%03d", i%2+3)
		if err := svc.AssignShift("head_nurse", morning, model.MakeSlotKey(day, model.PeriodMorning)); err != nil {
			t.Fatalf("%s 早班分配失败: %v", day, err)
		}
		if err := svc.AssignShift("head_nurse", afternoon, model.MakeSlotKey(day, model.PeriodAfternoon)); err != nil {
			t.Fatalf("%s 午班分配失败: %v", day, err)
		}
	}

	if svc.Schedule().HasUncovered() {
		t.Fatalf("全周应无空缺班次: %v", svc.Schedule().UncoveredSlots())
	}

	// 同日双班违反8小时上限
	err := svc.AssignShift("head_nurse", "N001", model.MakeSlotKey("monday", model.PeriodAfternoon))
	if !errors.Is(err, errors.CodeScheduleConflict) {
		t.Errorf("同日早午连班应返回 SCHEDULE_CONFLICT, 实际 %v", err)
	}

	// 合规检查：人员充足、全覆盖、无超时
	report := svc.RunComplianceCheck("head_nurse")
	if !report.Passed {
		t.Fatalf("排班完成后合规检查应通过: %+v", report.Issues)
	}
	t.Logf("合规检查通过: %d 项问题", len(report.Issues))

	// 工时统计：轮换后每人值3或4天，每天8小时
	workload := svc.WorkloadReport()
	if len(workload.StaffStats) != 4 {
		t.Fatalf("期望4名护士的工时统计, 实际 %d", len(workload.StaffStats))
	}
	var total float64
	for _, s := range workload.StaffStats {
		total += s.TotalHours
		t.Logf("%s 周工时 %.0f 小时", s.StaffID, s.TotalHours)
	}
	if total != 14*8 {
		t.Errorf("全周总工时应为112小时, 实际 %.0f", total)
	}

	coverage := svc.CoverageReport()
	if coverage.OverallCoverage != 100 {
		t.Errorf("覆盖率应为100%%, 实际 %.1f", coverage.OverallCoverage)
	}

	// 排班调整：撤销周日午班后出现空缺
	if err := svc.UnassignShift("head_nurse", "N003", model.MakeSlotKey("sunday", model.PeriodAfternoon)); err != nil {
		t.Fatalf("撤销班次失败: %v", err)
	}
	if !svc.Schedule().HasUncovered() {
		t.Error("撤销后应出现空缺班次")
	}
	report = svc.RunComplianceCheck("head_nurse")
	if report.Passed {
		t.Error("出现空缺后合规检查不应通过")
	}
}
