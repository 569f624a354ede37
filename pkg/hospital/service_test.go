package hospital

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

func newService(t *testing.T) *Service {
	t.Helper()
	opts := DefaultOptions()
	opts.SnapshotPath = filepath.Join(t.TempDir(), "snapshot.json")
	return New(opts)
}

func patientConfig(id string) model.PatientConfig {
	return model.PatientConfig{
		PatientID: id,
		Name:      "患者" + id,
		Profile: model.CareProfile{
			Condition: "肺炎",
			CareLevel: model.CareLevelMedium,
			Mobility:  model.MobilityIndependent,
		},
	}
}

func TestService_AddStaff(t *testing.T) {
	svc := newService(t)

	doc, err := svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	if err != nil {
		t.Fatalf("医生入职失败: %v", err)
	}
	if doc.StaffID != "D001" {
		t.Errorf("Expected D001, got %s", doc.StaffID)
	}

	_, err = svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "李医生", Specialty: "心内科", LicenseNo: "LIC-002",
	})
	if !errors.Is(err, errors.CodeDuplicateStaff) {
		t.Errorf("重复编号应返回 DUPLICATE_STAFF, 实际 %v", err)
	}

	// 入职操作写入审计
	if svc.Audit().Len() != 1 {
		t.Errorf("期望1条审计, 实际 %d", svc.Audit().Len())
	}
}

func TestService_AssignShift(t *testing.T) {
	svc := newService(t)
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})

	if err := svc.AssignShift("admin", "N001", "monday_morning"); err != nil {
		t.Fatalf("分配班次失败: %v", err)
	}

	// 未登记员工不可排班
	err := svc.AssignShift("admin", "X999", "monday_morning")
	if !errors.Is(err, errors.CodeStaffNotFound) {
		t.Errorf("未登记员工应返回 STAFF_NOT_FOUND, 实际 %v", err)
	}

	// 管理员不参与排班
	svc.AddManager("admin", model.ManagerConfig{StaffID: "M001", Name: "赵主任"})
	if err := svc.AssignShift("admin", "M001", "monday_afternoon"); !errors.Is(err, errors.CodeStaffNotFound) {
		t.Errorf("管理员排班应被拒绝, 实际 %v", err)
	}
}

func TestService_UnassignShift(t *testing.T) {
	svc := newService(t)
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})
	svc.AssignShift("admin", "N001", "monday_morning")

	if err := svc.UnassignShift("admin", "N001", "monday_morning"); err != nil {
		t.Fatalf("撤销班次失败: %v", err)
	}
	if err := svc.UnassignShift("admin", "N001", "monday_morning"); err == nil {
		t.Error("重复撤销应返回错误")
	}
}

func TestService_QuickHealthCheck(t *testing.T) {
	svc := newService(t)

	// 空医院：无护士、无医生、班表空缺
	report := svc.QuickHealthCheck()
	if report.Passed {
		t.Fatal("空医院的快速检查不应通过")
	}

	codes := make(map[string]bool)
	for _, issue := range report.Issues {
		codes[issue.Rule] = true
	}
	for _, code := range []string{"INSUFFICIENT_NURSES", "NO_DOCTOR_AVAILABLE", "UNCOVERED_SHIFTS"} {
		if !codes[code] {
			t.Errorf("快速检查应包含 %s", code)
		}
	}
}

func TestService_RunComplianceCheck(t *testing.T) {
	svc := newService(t)
	svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N002", Name: "王护士", Certification: "RN"})

	report := svc.RunComplianceCheck("admin")
	// 人员充足但班表空缺
	if report.Passed {
		t.Fatal("班表空缺时检查不应通过")
	}
	if report.Errors != 1 {
		t.Errorf("期望1项错误（班次覆盖）, 实际 %d", report.Errors)
	}
}

func TestService_VerifyIntegrity_Clean(t *testing.T) {
	svc := newService(t)
	svc.AdmitPatient("admin", patientConfig("P001"))

	if mismatches := svc.VerifyIntegrity(); len(mismatches) != 0 {
		t.Errorf("正常入院后不应有不一致: %v", mismatches)
	}
}

func TestService_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	opts := DefaultOptions()
	opts.SnapshotPath = path
	svc := New(opts)

	svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})
	svc.AssignShift("admin", "N001", "monday_morning")
	result, err := svc.AdmitPatient("admin", patientConfig("P001"))
	if err != nil {
		t.Fatalf("入院失败: %v", err)
	}

	if err := svc.SaveSnapshot(); err != nil {
		t.Fatalf("快照保存失败: %v", err)
	}

	// 全新服务从同一路径恢复
	restored := New(opts)
	ok, err := restored.LoadSnapshot()
	if err != nil {
		t.Fatalf("快照恢复失败: %v", err)
	}
	if !ok {
		t.Fatal("快照存在时应恢复成功")
	}

	p, found := restored.Directory().GetPatient("P001")
	if !found || p.BedID != result.BedID {
		t.Errorf("患者床位引用应恢复: %+v", p)
	}
	bed, _ := restored.Registry().FindBed(result.BedID)
	if !bed.Occupied || bed.PatientID != "P001" {
		t.Errorf("床位占用应恢复: %+v", bed)
	}
	if restored.Schedule().HoursOn("N001", "monday") != 8 {
		t.Error("排班分配应恢复")
	}
	if mismatches := restored.VerifyIntegrity(); len(mismatches) != 0 {
		t.Errorf("恢复后不应有不一致: %v", mismatches)
	}
}

func TestService_LoadSnapshot_Missing(t *testing.T) {
	svc := newService(t)

	ok, err := svc.LoadSnapshot()
	if err != nil {
		t.Fatalf("无快照文件不应报错: %v", err)
	}
	if ok {
		t.Error("无快照文件应返回 false")
	}
}

func TestService_OccupancyForecast(t *testing.T) {
	svc := newService(t)

	for i := 0; i < 3; i++ {
		svc.AdmitPatient("admin", patientConfig(fmt.Sprintf("P%03d", i+1)))
		svc.RecordOccupancySample()
	}

	f := svc.OccupancyForecast()
	if f.SampleCount != 3 {
		t.Errorf("期望3个采样点, 实际 %d", f.SampleCount)
	}
}

func TestService_EventsDoNotFeedForecast(t *testing.T) {
	svc := newService(t)
	svc.AddDoctor("admin", model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N002", Name: "王护士", Certification: "RN"})

	// 连续入院出院在毫秒内完成，趋势窗口只属于定时采样
	for i := 1; i <= 5; i++ {
		svc.AdmitPatient("admin", patientConfig(fmt.Sprintf("P%03d", i)))
	}
	svc.DischargePatient("admin", "P001")

	report := svc.RunComplianceCheck("admin")
	if svc.OccupancyForecast().SampleCount != 0 {
		t.Errorf("事件操作不应写入趋势窗口, 实际 %d 个采样点",
			svc.OccupancyForecast().SampleCount)
	}
	for _, issue := range report.Issues {
		if issue.Rule == "OCCUPANCY_FORECAST" {
			t.Errorf("连续入院不应触发趋势预警: %s", issue.Description)
		}
	}
}

func TestService_Reports(t *testing.T) {
	svc := newService(t)
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})
	svc.AssignShift("admin", "N001", "monday_morning")
	svc.AdmitPatient("admin", patientConfig("P001"))

	coverage := svc.CoverageReport()
	if coverage.AssignedSlots != 1 {
		t.Errorf("期望1个已分配槽位, 实际 %d", coverage.AssignedSlots)
	}

	occupancy := svc.OccupancyReport()
	if occupancy.OccupiedBeds != 1 {
		t.Errorf("期望1张占用床位, 实际 %d", occupancy.OccupiedBeds)
	}

	workload := svc.WorkloadReport()
	if len(workload.StaffStats) != 1 || workload.StaffStats[0].TotalHours != 8 {
		t.Errorf("工时统计错误: %+v", workload.StaffStats)
	}
}

func TestService_Maintenance(t *testing.T) {
	svc := newService(t)
	svc.AddNurse("admin", model.NurseConfig{StaffID: "N001", Name: "李护士", Certification: "RN"})

	if removed := svc.Maintenance(0); removed == 0 {
		t.Error("保留期为0时应清理全部审计条目")
	}
	if svc.Audit().Len() != 0 {
		t.Errorf("清理后审计应为空, 实际 %d 条", svc.Audit().Len())
	}
}
