// Package compliance 提供合规规则评估引擎
// 规则集对一致性快照做纯函数评估，不产生任何副作用
package compliance

import (
	"github.com/bingfang/bingfang/pkg/model"
)

// 规则编码
const (
	CodeInsufficientNurses = "INSUFFICIENT_NURSES"
	CodeNoDoctorAvailable  = "NO_DOCTOR_AVAILABLE"
	CodeUncoveredShifts    = "UNCOVERED_SHIFTS"
	CodeNurseHourViolation = "NURSE_HOUR_VIOLATION"
	CodeOvercrowdingRisk   = "OVERCROWDING_RISK"
	CodeOccupancyForecast  = "OCCUPANCY_FORECAST"
)

// Severity 违规严重级别
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue 合规违规项
// 评估的瞬时产物，不作为状态持久化
type Issue struct {
	Rule        string   `json:"rule"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	StaffID     string   `json:"staff_id,omitempty"`
}

// Context 合规评估上下文
// 由调用方在持锁期间拷贝构建，评估阶段不再触碰任何存储
type Context struct {
	DoctorCount     int                           `json:"doctor_count"`
	NurseCount      int                           `json:"nurse_count"`
	UncoveredSlots  []model.SlotKey               `json:"uncovered_slots"`
	StaffDailyHours map[string]map[string]float64 `json:"staff_daily_hours"` // staffID -> day -> hours
	OccupancyRate   float64                       `json:"occupancy_rate"`    // 百分比 0-100
	MaxDailyHours   float64                       `json:"max_daily_hours"`
}

// Rule 合规规则接口
type Rule interface {
	// Code 返回规则编码
	Code() string

	// Name 返回规则名称
	Name() string

	// Severity 返回违规严重级别
	Severity() Severity

	// Quick 是否参与快速健康检查
	Quick() bool

	// Evaluate 评估规则，返回全部违规项（可为空）
	Evaluate(ctx *Context) []Issue
}
