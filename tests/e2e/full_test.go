// Package e2e 提供端到端测试
package e2e

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bingfang/bingfang/pkg/hospital"
	"github.com/bingfang/bingfang/pkg/model"
)

// TestFullHospitalWorkflow 测试完整院务工作流：
// 人员入职 → 排班 → 患者入院 → 合规检查 → 快照落盘 → 恢复
func TestFullHospitalWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	opts := hospital.DefaultOptions()
	opts.SnapshotPath = path
	svc := hospital.New(opts)

	// 1. 人员入职：1名医生、2名护士
	if _, err := svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	}); err != nil {
		t.Fatalf("医生入职失败: %v", err)
	}
	for i, name := range []string{"李护士", "王护士"} {
		if _, err := svc.AddNurse("admin", model.NurseConfig{
			StaffID: fmt.Sprintf("N%03d", i+1), Name: name, Certification: "RN",
		}); err != nil {
			t.Fatalf("护士入职失败: %v", err)
		}
	}

	// 2. 覆盖全部14个班次槽位
	for _, day := range model.Days {
		if err := svc.AssignShift("admin", "N001", model.MakeSlotKey(day, model.PeriodMorning)); err != nil {
			t.Fatalf("早班分配失败: %v", err)
		}
		if err := svc.AssignShift("admin", "N002", model.MakeSlotKey(day, model.PeriodAfternoon)); err != nil {
			t.Fatalf("午班分配失败: %v", err)
		}
	}

	// 3. 患者入院（含1名隔离患者）
	for i := 1; i <= 5; i++ {
		cfg := model.PatientConfig{
			PatientID: fmt.Sprintf("P%03d", i),
			Name:      fmt.Sprintf("患者%d", i),
			Profile: model.CareProfile{
				Condition: "肺炎",
				CareLevel: model.CareLevelMedium,
				Mobility:  model.MobilityIndependent,
			},
		}
		if i == 5 {
			cfg.Profile.NeedsIsolation = true
			cfg.Profile.Condition = "肺结核"
		}
		result, err := svc.AdmitPatient("admin", cfg)
		if err != nil {
			t.Fatalf("患者 %s 入院失败: %v", cfg.PatientID, err)
		}
		if result.Queued {
			t.Fatalf("床位充足时患者 %s 不应排队", cfg.PatientID)
		}
		if i == 5 && !result.Match.Bed.Isolation {
			t.Fatalf("隔离患者分到非隔离床位 %s", result.BedID)
		}
	}

	// 4. 合规检查：人员充足且班表全覆盖，应通过
	report := svc.RunComplianceCheck("admin")
	if !report.Passed {
		t.Fatalf("健康状态下合规检查应通过: %+v", report.Issues)
	}

	// 5. 快照落盘并在全新服务中恢复
	if err := svc.SaveSnapshot(); err != nil {
		t.Fatalf("快照保存失败: %v", err)
	}

	restored := hospital.New(opts)
	ok, err := restored.LoadSnapshot()
	if err != nil || !ok {
		t.Fatalf("快照恢复失败: ok=%v, err=%v", ok, err)
	}

	// 恢复后的状态与原服务一致
	if restored.Directory().PatientCount() != 5 {
		t.Errorf("期望5名在院患者, 实际 %d", restored.Directory().PatientCount())
	}
	if restored.Registry().OccupiedCount() != 5 {
		t.Errorf("期望5张占用床位, 实际 %d", restored.Registry().OccupiedCount())
	}
	if restored.Schedule().HasUncovered() {
		t.Errorf("恢复后班表应全覆盖: %v", restored.Schedule().UncoveredSlots())
	}

	// 恢复状态无孤儿引用
	if mismatches := restored.VerifyIntegrity(); len(mismatches) != 0 {
		t.Errorf("恢复状态存在不一致: %v", mismatches)
	}

	// 恢复后的服务可继续操作
	if _, _, err := restored.DischargePatient("admin", "P001"); err != nil {
		t.Errorf("恢复后出院失败: %v", err)
	}
}

// TestIntegrityAfterChurn 大量入出院后床位与患者档案保持一致
func TestIntegrityAfterChurn(t *testing.T) {
	opts := hospital.DefaultOptions()
	opts.SnapshotPath = filepath.Join(t.TempDir(), "snapshot.json")
	svc := hospital.New(opts)

	admit := func(id string) {
		cfg := model.PatientConfig{
			PatientID: id,
			Name:      "患者" + id,
			Profile: model.CareProfile{
				Condition: "肺炎",
				CareLevel: model.CareLevelLow,
				Mobility:  model.MobilityIndependent,
			},
		}
		if _, err := svc.AdmitPatient("admin", cfg); err != nil {
			t.Fatalf("患者 %s 入院失败: %v", id, err)
		}
	}

	// 三轮入出院循环
	for round := 0; round < 3; round++ {
		for i := 1; i <= 20; i++ {
			admit(fmt.Sprintf("R%dP%03d", round, i))
		}
		for i := 1; i <= 20; i += 2 {
			if _, _, err := svc.DischargePatient("admin", fmt.Sprintf("R%dP%03d", round, i)); err != nil {
				t.Fatalf("出院失败: %v", err)
			}
		}
		// 剩余患者继续占床，下一轮叠加
		for i := 2; i <= 20; i += 2 {
			svc.DischargePatient("admin", fmt.Sprintf("R%dP%03d", round, i))
		}
	}

	if mismatches := svc.VerifyIntegrity(); len(mismatches) != 0 {
		t.Errorf("多轮入出院后存在不一致: %v", mismatches)
	}
	if svc.Registry().OccupiedCount() != svc.Directory().PatientCount() {
		t.Errorf("占用床位数 %d 与在院患者数 %d 不一致",
			svc.Registry().OccupiedCount(), svc.Directory().PatientCount())
	}
}
