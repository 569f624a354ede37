// Package stats 提供院务统计分析功能
package stats

import (
	"github.com/bingfang/bingfang/pkg/model"
)

// CoverageMetrics 排班覆盖率指标
type CoverageMetrics struct {
	TotalSlots      int     `json:"total_slots"`      // 总班次槽位数
	AssignedSlots   int     `json:"assigned_slots"`   // 有人值守槽位数
	OverallCoverage float64 `json:"overall_coverage"` // 整体覆盖率 (%)

	DailyCoverage  map[string]DayCoverage `json:"daily_coverage"`  // 每日覆盖情况
	PeriodCoverage map[string]float64     `json:"period_coverage"` // 按班段覆盖率

	UncoveredSlots []model.SlotKey `json:"uncovered_slots"` // 无人值守槽位
}

// DayCoverage 每日覆盖情况
type DayCoverage struct {
	Day          string  `json:"day"`
	TotalSlots   int     `json:"total_slots"`
	Assigned     int     `json:"assigned"`
	CoverageRate float64 `json:"coverage_rate"`
	StaffCount   int     `json:"staff_count"`
	TotalHours   float64 `json:"total_hours"`
}

// CoverageAnalyzer 覆盖率分析器
type CoverageAnalyzer struct{}

// NewCoverageAnalyzer 创建覆盖率分析器
func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

// Analyze 对排班分配快照做覆盖率分析
// 分配快照为 slotKey -> staffIDs；周网格固定14个槽位
func (c *CoverageAnalyzer) Analyze(assignments map[model.SlotKey][]string) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage:  make(map[string]DayCoverage),
		PeriodCoverage: make(map[string]float64),
	}

	periodTotal := make(map[string]int)
	periodAssigned := make(map[string]int)
	dayStaff := make(map[string]map[string]struct{})

	for _, slot := range model.AllShiftSlots() {
		metrics.TotalSlots++
		day := slot.Day
		period := string(slot.Period)
		periodTotal[period]++

		dc := metrics.DailyCoverage[day]
		dc.Day = day
		dc.TotalSlots++

		staff := assignments[slot.Key]
		if len(staff) > 0 {
			metrics.AssignedSlots++
			periodAssigned[period]++
			dc.Assigned++
			dc.TotalHours += slot.Hours() * float64(len(staff))

			if dayStaff[day] == nil {
				dayStaff[day] = make(map[string]struct{})
			}
			for _, id := range staff {
				dayStaff[day][id] = struct{}{}
			}
		} else {
			metrics.UncoveredSlots = append(metrics.UncoveredSlots, slot.Key)
		}
		metrics.DailyCoverage[day] = dc
	}

	for day, dc := range metrics.DailyCoverage {
		if dc.TotalSlots > 0 {
			dc.CoverageRate = float64(dc.Assigned) / float64(dc.TotalSlots) * 100
		}
		dc.StaffCount = len(dayStaff[day])
		metrics.DailyCoverage[day] = dc
	}

	for period, total := range periodTotal {
		if total > 0 {
			metrics.PeriodCoverage[period] = float64(periodAssigned[period]) / float64(total) * 100
		}
	}

	if metrics.TotalSlots > 0 {
		metrics.OverallCoverage = float64(metrics.AssignedSlots) / float64(metrics.TotalSlots) * 100
	}
	return metrics
}
