// Package compliance 提供合规规则评估引擎
package compliance

import (
	"fmt"
	"sort"
	"strings"
)

// MinNurseRule 最低护士人数规则
type MinNurseRule struct {
	min int
}

// NewMinNurseRule 创建最低护士人数规则
func NewMinNurseRule(min int) *MinNurseRule {
	return &MinNurseRule{min: min}
}

func (r *MinNurseRule) Code() string       { return CodeInsufficientNurses }
func (r *MinNurseRule) Name() string       { return "最低护士人数" }
func (r *MinNurseRule) Severity() Severity { return SeverityError }
func (r *MinNurseRule) Quick() bool        { return true }

// Evaluate 检查护士人数是否满足班次覆盖需求
func (r *MinNurseRule) Evaluate(ctx *Context) []Issue {
	if ctx.NurseCount >= r.min {
		return nil
	}
	return []Issue{{
		Rule:        r.Code(),
		Severity:    r.Severity(),
		Description: fmt.Sprintf("班次覆盖至少需要%d名护士，当前仅%d名", r.min, ctx.NurseCount),
	}}
}

// DoctorPresenceRule 医生在岗规则
type DoctorPresenceRule struct {
	min int
}

// NewDoctorPresenceRule 创建医生在岗规则
func NewDoctorPresenceRule(min int) *DoctorPresenceRule {
	return &DoctorPresenceRule{min: min}
}

func (r *DoctorPresenceRule) Code() string       { return CodeNoDoctorAvailable }
func (r *DoctorPresenceRule) Name() string       { return "医生在岗" }
func (r *DoctorPresenceRule) Severity() Severity { return SeverityError }
func (r *DoctorPresenceRule) Quick() bool        { return true }

// Evaluate 检查是否有医生承担每日处方职责
func (r *DoctorPresenceRule) Evaluate(ctx *Context) []Issue {
	if ctx.DoctorCount >= r.min {
		return nil
	}
	return []Issue{{
		Rule:        r.Code(),
		Severity:    r.Severity(),
		Description: fmt.Sprintf("每日处方职责至少需要%d名医生，当前%d名", r.min, ctx.DoctorCount),
	}}
}

// ShiftCoverageRule 班次覆盖规则
type ShiftCoverageRule struct{}

// NewShiftCoverageRule 创建班次覆盖规则
func NewShiftCoverageRule() *ShiftCoverageRule {
	return &ShiftCoverageRule{}
}

func (r *ShiftCoverageRule) Code() string       { return CodeUncoveredShifts }
func (r *ShiftCoverageRule) Name() string       { return "班次覆盖" }
func (r *ShiftCoverageRule) Severity() Severity { return SeverityError }
func (r *ShiftCoverageRule) Quick() bool        { return true }

// Evaluate 列出全部无人值守的班次槽位
func (r *ShiftCoverageRule) Evaluate(ctx *Context) []Issue {
	if len(ctx.UncoveredSlots) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ctx.UncoveredSlots))
	for _, k := range ctx.UncoveredSlots {
		keys = append(keys, string(k))
	}
	return []Issue{{
		Rule:        r.Code(),
		Severity:    r.Severity(),
		Description: "无人值守班次: " + strings.Join(keys, ", "),
	}}
}

// HourCapRule 每日工时上限规则
type HourCapRule struct {
	maxHours float64
}

// NewHourCapRule 创建每日工时上限规则
func NewHourCapRule(maxHours float64) *HourCapRule {
	return &HourCapRule{maxHours: maxHours}
}

func (r *HourCapRule) Code() string       { return CodeNurseHourViolation }
func (r *HourCapRule) Name() string       { return "每日工时上限" }
func (r *HourCapRule) Severity() Severity { return SeverityError }
func (r *HourCapRule) Quick() bool        { return false }

// Evaluate 逐员工检查每日排班工时，每个超限员工产生一条违规
func (r *HourCapRule) Evaluate(ctx *Context) []Issue {
	maxHours := r.maxHours
	if ctx.MaxDailyHours > 0 {
		maxHours = ctx.MaxDailyHours
	}

	staffIDs := make([]string, 0, len(ctx.StaffDailyHours))
	for id := range ctx.StaffDailyHours {
		staffIDs = append(staffIDs, id)
	}
	sort.Strings(staffIDs)

	var issues []Issue
	for _, id := range staffIDs {
		for _, day := range sortedDays(ctx.StaffDailyHours[id]) {
			hours := ctx.StaffDailyHours[id][day]
			if hours > maxHours {
				issues = append(issues, Issue{
					Rule:        r.Code(),
					Severity:    r.Severity(),
					StaffID:     id,
					Description: fmt.Sprintf("员工 %s 在 %s 排班 %.1f 小时，超过每日%.0f小时上限", id, day, hours, maxHours),
				})
			}
		}
	}
	return issues
}

// sortedDays 返回排序后的日名
func sortedDays(hours map[string]float64) []string {
	days := make([]string, 0, len(hours))
	for d := range hours {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// OccupancyRule 床位占用率规则
type OccupancyRule struct {
	threshold float64 // 百分比
}

// NewOccupancyRule 创建床位占用率规则
func NewOccupancyRule(threshold float64) *OccupancyRule {
	return &OccupancyRule{threshold: threshold}
}

func (r *OccupancyRule) Code() string       { return CodeOvercrowdingRisk }
func (r *OccupancyRule) Name() string       { return "床位占用率" }
func (r *OccupancyRule) Severity() Severity { return SeverityWarning }
func (r *OccupancyRule) Quick() bool        { return false }

// Evaluate 检查占用率是否超过拥挤风险阈值
func (r *OccupancyRule) Evaluate(ctx *Context) []Issue {
	if ctx.OccupancyRate <= r.threshold {
		return nil
	}
	return []Issue{{
		Rule:        r.Code(),
		Severity:    r.Severity(),
		Description: fmt.Sprintf("床位占用率 %.1f%%，存在拥挤风险（阈值%.0f%%）", ctx.OccupancyRate, r.threshold),
	}}
}

// DefaultRules 返回默认规则集
func DefaultRules(minNurses, minDoctors int, maxDailyHours, occupancyThreshold float64) []Rule {
	return []Rule{
		NewMinNurseRule(minNurses),
		NewDoctorPresenceRule(minDoctors),
		NewShiftCoverageRule(),
		NewHourCapRule(maxDailyHours),
		NewOccupancyRule(occupancyThreshold),
	}
}
