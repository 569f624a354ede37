// Package stats 提供院务统计分析功能
package stats

import (
	"math"
	"sort"

	"github.com/bingfang/bingfang/pkg/model"
)

// WorkloadMetrics 工时分布指标
type WorkloadMetrics struct {
	WorkloadGini     float64 `json:"workload_gini"`       // 工时基尼系数 (0=完全公平)
	AvgHoursPerStaff float64 `json:"avg_hours_per_staff"` // 人均周工时
	MaxHours         float64 `json:"max_hours"`
	MinHours         float64 `json:"min_hours"`

	StaffStats []StaffWorkload `json:"staff_stats"` // 按员工编号排序
}

// StaffWorkload 单员工工时统计
type StaffWorkload struct {
	StaffID      string  `json:"staff_id"`
	TotalHours   float64 `json:"total_hours"`
	SlotCount    int     `json:"slot_count"`
	WeekendSlots int     `json:"weekend_slots"`
	Deviation    float64 `json:"deviation"` // 与人均工时的偏差百分比
}

// WorkloadAnalyzer 工时分布分析器
type WorkloadAnalyzer struct{}

// NewWorkloadAnalyzer 创建工时分布分析器
func NewWorkloadAnalyzer() *WorkloadAnalyzer {
	return &WorkloadAnalyzer{}
}

// Analyze 分析排班分配快照的工时分布
func (w *WorkloadAnalyzer) Analyze(assignments map[model.SlotKey][]string) *WorkloadMetrics {
	byStaff := make(map[string]*StaffWorkload)

	for _, slot := range model.AllShiftSlots() {
		weekend := slot.Day == "saturday" || slot.Day == "sunday"
		for _, id := range assignments[slot.Key] {
			stat, ok := byStaff[id]
			if !ok {
				stat = &StaffWorkload{StaffID: id}
				byStaff[id] = stat
			}
			stat.TotalHours += slot.Hours()
			stat.SlotCount++
			if weekend {
				stat.WeekendSlots++
			}
		}
	}

	metrics := &WorkloadMetrics{}
	if len(byStaff) == 0 {
		return metrics
	}

	ids := make([]string, 0, len(byStaff))
	for id := range byStaff {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	hours := make([]float64, 0, len(ids))
	var total float64
	for _, id := range ids {
		hours = append(hours, byStaff[id].TotalHours)
		total += byStaff[id].TotalHours
	}
	avg := total / float64(len(ids))

	metrics.AvgHoursPerStaff = avg
	metrics.MaxHours = hours[0]
	metrics.MinHours = hours[0]
	for _, h := range hours {
		if h > metrics.MaxHours {
			metrics.MaxHours = h
		}
		if h < metrics.MinHours {
			metrics.MinHours = h
		}
	}
	metrics.WorkloadGini = gini(hours)

	for _, id := range ids {
		stat := byStaff[id]
		if avg > 0 {
			stat.Deviation = (stat.TotalHours - avg) / avg * 100
		}
		metrics.StaffStats = append(metrics.StaffStats, *stat)
	}
	return metrics
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}

	g := (2*weighted)/(float64(n)*sum) - float64(n+1)/float64(n)
	return math.Max(0, g)
}
