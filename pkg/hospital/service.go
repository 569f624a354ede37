// Package hospital 提供院务引擎门面
// 将名录、床位注册表、周班表、床位匹配与合规评估组合为单一服务，
// 跨存储的一致性由入院临界区保证
package hospital

import (
	"fmt"
	"sync"
	"time"

	"github.com/bingfang/bingfang/pkg/audit"
	"github.com/bingfang/bingfang/pkg/bedfinder"
	"github.com/bingfang/bingfang/pkg/compliance"
	"github.com/bingfang/bingfang/pkg/directory"
	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/logger"
	"github.com/bingfang/bingfang/pkg/model"
	"github.com/bingfang/bingfang/pkg/registry"
	"github.com/bingfang/bingfang/pkg/schedule"
	"github.com/bingfang/bingfang/pkg/snapshot"
	"github.com/bingfang/bingfang/pkg/stats"
)

// Options 服务配置
type Options struct {
	Layout             registry.Layout
	Weights            bedfinder.Weights
	MinNurses          int
	MinDoctors         int
	MaxDailyHours      float64
	OccupancyThreshold float64 // 百分比
	TrendSamples       int
	TrendHorizon       time.Duration
	SnapshotPath       string
	AuditMaxEntries    int
}

// DefaultOptions 返回默认服务配置
func DefaultOptions() Options {
	return Options{
		Layout:             registry.DefaultLayout(),
		Weights:            bedfinder.DefaultWeights(),
		MinNurses:          2,
		MinDoctors:         1,
		MaxDailyHours:      schedule.DefaultMaxDailyHours,
		OccupancyThreshold: 95,
		TrendSamples:       24,
		TrendHorizon:       12 * time.Hour,
		SnapshotPath:       "data/snapshot.json",
		AuditMaxEntries:    audit.DefaultMaxEntries,
	}
}

// Service 院务引擎服务
type Service struct {
	opts Options

	// admissionMu 覆盖名录与床位注册表的跨存储变更
	admissionMu sync.Mutex

	dir       *directory.Directory
	reg       *registry.Registry
	sched     *schedule.Schedule
	finder    *bedfinder.Finder
	waitlist  *bedfinder.WaitingList
	evaluator *compliance.Evaluator
	trend     *compliance.TrendAnalyzer
	auditLog  *audit.Logger
	snapStore *snapshot.Store
	log       *logger.HospitalLogger
}

// New 创建院务引擎服务
func New(opts Options) *Service {
	if len(opts.Layout) == 0 {
		opts.Layout = registry.DefaultLayout()
	}
	if opts.MaxDailyHours <= 0 {
		opts.MaxDailyHours = schedule.DefaultMaxDailyHours
	}
	if opts.OccupancyThreshold <= 0 {
		opts.OccupancyThreshold = 95
	}
	if opts.TrendSamples < 2 {
		opts.TrendSamples = 24
	}
	if opts.TrendHorizon <= 0 {
		opts.TrendHorizon = 12 * time.Hour
	}

	reg := registry.New(opts.Layout)
	trend := compliance.NewTrendAnalyzer(opts.TrendSamples, opts.OccupancyThreshold, opts.TrendHorizon)

	evaluator := compliance.NewEvaluator()
	evaluator.RegisterAll(compliance.DefaultRules(
		opts.MinNurses, opts.MinDoctors, opts.MaxDailyHours, opts.OccupancyThreshold))
	evaluator.Register(compliance.NewForecastRule(trend))

	return &Service{
		opts:      opts,
		dir:       directory.New(),
		reg:       reg,
		sched:     schedule.New(opts.MaxDailyHours),
		finder:    bedfinder.New(reg, opts.Weights),
		waitlist:  bedfinder.NewWaitingList(),
		evaluator: evaluator,
		trend:     trend,
		auditLog:  audit.NewLogger(opts.AuditMaxEntries),
		snapStore: snapshot.NewStore(opts.SnapshotPath),
		log:       logger.NewHospitalLogger(),
	}
}

// Directory 返回人员名录
func (s *Service) Directory() *directory.Directory { return s.dir }

// Registry 返回床位注册表
func (s *Service) Registry() *registry.Registry { return s.reg }

// Schedule 返回周班表
func (s *Service) Schedule() *schedule.Schedule { return s.sched }

// WaitingList 返回入院等候队列
func (s *Service) WaitingList() *bedfinder.WaitingList { return s.waitlist }

// Audit 返回审计日志器
func (s *Service) Audit() *audit.Logger { return s.auditLog }

// Trend 返回占用率趋势分析器
func (s *Service) Trend() *compliance.TrendAnalyzer { return s.trend }

// AddDoctor 入职医生
func (s *Service) AddDoctor(actor string, cfg model.DoctorConfig) (*model.Doctor, error) {
	doc, err := model.NewDoctor(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.dir.AddDoctor(doc); err != nil {
		return nil, err
	}
	s.auditLog.StaffAction(actor, "add_doctor",
		fmt.Sprintf("医生 %s (%s) 入职，专科 %s", doc.Name, doc.StaffID, doc.Specialty))
	return doc, nil
}

// AddNurse 入职护士
func (s *Service) AddNurse(actor string, cfg model.NurseConfig) (*model.Nurse, error) {
	n, err := model.NewNurse(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.dir.AddNurse(n); err != nil {
		return nil, err
	}
	s.auditLog.StaffAction(actor, "add_nurse",
		fmt.Sprintf("护士 %s (%s) 入职，资质 %s", n.Name, n.StaffID, n.Certification))
	return n, nil
}

// AddManager 入职管理员
func (s *Service) AddManager(actor string, cfg model.ManagerConfig) (*model.Manager, error) {
	m, err := model.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.dir.AddManager(m); err != nil {
		return nil, err
	}
	s.auditLog.StaffAction(actor, "add_manager",
		fmt.Sprintf("管理员 %s (%s) 入职", m.Name, m.StaffID))
	return m, nil
}

// AssignShift 将医生或护士分配到班次槽位
// 管理员不参与排班
func (s *Service) AssignShift(actor, staffID string, key model.SlotKey) error {
	if !s.isSchedulable(staffID) {
		return errors.NotFound("员工", staffID)
	}
	if err := s.sched.Assign(staffID, key); err != nil {
		return err
	}
	s.auditLog.StaffAction(actor, "assign_shift",
		fmt.Sprintf("员工 %s 分配到班次 %s", staffID, key))
	if !s.sched.HasUncovered() {
		logger.Info().Msg("全部班次槽位已覆盖")
	}
	return nil
}

// UnassignShift 撤销班次分配
func (s *Service) UnassignShift(actor, staffID string, key model.SlotKey) error {
	if err := s.sched.Unassign(staffID, key); err != nil {
		return err
	}
	s.auditLog.StaffAction(actor, "unassign_shift",
		fmt.Sprintf("员工 %s 撤出班次 %s", staffID, key))
	return nil
}

// isSchedulable 检查员工是否参与排班（医生或护士）
func (s *Service) isSchedulable(staffID string) bool {
	if _, ok := s.dir.GetDoctor(staffID); ok {
		return true
	}
	_, ok := s.dir.GetNurse(staffID)
	return ok
}

// complianceContext 持锁拷贝构建合规评估上下文
func (s *Service) complianceContext() *compliance.Context {
	return &compliance.Context{
		DoctorCount:     s.dir.DoctorCount(),
		NurseCount:      s.dir.NurseCount(),
		UncoveredSlots:  s.sched.UncoveredSlots(),
		StaffDailyHours: s.sched.AllDailyHours(),
		OccupancyRate:   s.reg.OccupancyRate(),
		MaxDailyHours:   s.opts.MaxDailyHours,
	}
}

// RunComplianceCheck 执行全量合规检查
func (s *Service) RunComplianceCheck(actor string) *compliance.Report {
	report := compliance.BuildReport(s.evaluator.Evaluate(s.complianceContext()))
	s.auditLog.ComplianceEvent(actor, "compliance_check",
		fmt.Sprintf("合规检查完成: %d项违规 (%d错误, %d警告)",
			len(report.Issues), report.Errors, report.Warnings))
	return report
}

// QuickHealthCheck 快速健康检查，只评估快速规则
func (s *Service) QuickHealthCheck() *compliance.Report {
	return compliance.BuildReport(s.evaluator.QuickCheck(s.complianceContext()))
}

// OccupancyForecast 返回占用率趋势预测
func (s *Service) OccupancyForecast() *compliance.Forecast {
	return s.trend.Forecast()
}

// RecordOccupancySample 采样当前占用率
// 趋势窗口只接收周期任务的定时采样，入院出院等事件不写入，
// 否则窗口跨度只有毫秒级，外推斜率没有意义
func (s *Service) RecordOccupancySample() {
	s.trend.Record(s.reg.OccupancyRate())
}

// CoverageReport 返回排班覆盖率统计
func (s *Service) CoverageReport() *stats.CoverageMetrics {
	return stats.NewCoverageAnalyzer().Analyze(s.sched.Snapshot())
}

// WorkloadReport 返回工时分布统计
func (s *Service) WorkloadReport() *stats.WorkloadMetrics {
	return stats.NewWorkloadAnalyzer().Analyze(s.sched.Snapshot())
}

// OccupancyReport 返回床位占用统计
func (s *Service) OccupancyReport() *stats.OccupancyMetrics {
	return stats.AnalyzeOccupancy(s.reg.AllBeds())
}

// VerifyIntegrity 双向校验床位占用与患者档案的一致性
// 返回全部不一致描述；发现异常只降级告警，不自动修复
func (s *Service) VerifyIntegrity() []string {
	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()

	var mismatches []string

	occupancy := s.reg.Occupancy()
	for bedID, patientID := range occupancy {
		p, ok := s.dir.GetPatient(patientID)
		if !ok {
			mismatches = append(mismatches,
				fmt.Sprintf("床位 %s 登记患者 %s，但名录中无此患者", bedID, patientID))
			continue
		}
		if p.BedID != bedID {
			mismatches = append(mismatches,
				fmt.Sprintf("床位 %s 登记患者 %s，但患者档案指向床位 %s", bedID, patientID, p.BedID))
		}
	}

	for _, p := range s.dir.Patients() {
		if p.BedID == "" {
			continue
		}
		if occupancy[p.BedID] != p.PatientID {
			mismatches = append(mismatches,
				fmt.Sprintf("患者 %s 档案指向床位 %s，但床位未登记该患者", p.PatientID, p.BedID))
		}
	}

	for _, m := range mismatches {
		s.log.IntegrityMismatch(m)
	}
	if len(mismatches) > 0 {
		s.auditLog.SystemEvent("integrity_check",
			fmt.Sprintf("完整性校验发现%d项不一致", len(mismatches)))
	}
	return mismatches
}

// SaveSnapshot 将全量状态写入快照文件
func (s *Service) SaveSnapshot() error {
	s.admissionMu.Lock()
	snap := &snapshot.Snapshot{
		Doctors:      s.dir.Doctors(),
		Nurses:       s.dir.Nurses(),
		Managers:     s.dir.Managers(),
		Patients:     s.dir.Patients(),
		BedOccupancy: s.reg.Occupancy(),
		Assignments:  s.sched.Snapshot(),
	}
	s.admissionMu.Unlock()

	return s.snapStore.Save(snap)
}

// LoadSnapshot 从快照文件恢复状态
// 文件不存在时返回 (false, nil)，表示全新启动
func (s *Service) LoadSnapshot() (bool, error) {
	snap, err := s.snapStore.Load()
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}

	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()

	if err := s.reg.Restore(snap.BedOccupancy); err != nil {
		return false, err
	}
	if err := s.sched.Restore(snap.Assignments); err != nil {
		return false, err
	}
	s.dir.Restore(snap.Doctors, snap.Nurses, snap.Managers, snap.Patients)

	logger.Info().
		Time("snapshot_time", snap.Timestamp).
		Int("patients", len(snap.Patients)).
		Int("occupied_beds", len(snap.BedOccupancy)).
		Msg("已从快照恢复状态")
	return true, nil
}

// Maintenance 清理超过保留期的审计条目，返回清理数量
func (s *Service) Maintenance(auditRetention time.Duration) int {
	removed := s.auditLog.TrimOlderThan(auditRetention)
	if removed > 0 {
		logger.Info().Int("removed", removed).Msg("审计日志清理完成")
	}
	return removed
}
