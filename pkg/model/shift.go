// Package model 定义院务引擎的核心数据模型
package model

import (
	"fmt"
	"strings"
)

// Period 班段
type Period string

const (
	PeriodMorning   Period = "morning"   // 早班 08:00-16:00
	PeriodAfternoon Period = "afternoon" // 午班 14:00-22:00
)

// 班段时刻表
var periodClock = map[Period]ClockRange{
	PeriodMorning:   {Start: "08:00", End: "16:00"},
	PeriodAfternoon: {Start: "14:00", End: "22:00"},
}

// Days 一周的日名，按固定顺序
var Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// SlotKey 班次槽位键，形如 monday_morning
type SlotKey string

// MakeSlotKey 构造班次槽位键
func MakeSlotKey(day string, period Period) SlotKey {
	return SlotKey(fmt.Sprintf("%s_%s", strings.ToLower(day), period))
}

// Parse 解析班次槽位键，返回日名与班段
func (k SlotKey) Parse() (day string, period Period, ok bool) {
	parts := strings.SplitN(string(k), "_", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	day, period = parts[0], Period(parts[1])
	if !validDay(day) {
		return "", "", false
	}
	if period != PeriodMorning && period != PeriodAfternoon {
		return "", "", false
	}
	return day, period, true
}

// Day 返回槽位所在日名
func (k SlotKey) Day() string {
	day, _, _ := k.Parse()
	return day
}

// validDay 检查日名是否有效
func validDay(day string) bool {
	for _, d := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// ShiftSlot 班次槽位
// 每周固定14个槽位（7天 × 2班段），启动时一次性创建
type ShiftSlot struct {
	Key    SlotKey    `json:"key"`
	Day    string     `json:"day"`
	Period Period     `json:"period"`
	Clock  ClockRange `json:"clock"`
}

// Hours 返回槽位时长（小时）
func (s *ShiftSlot) Hours() float64 {
	return s.Clock.Hours()
}

// NewShiftSlot 创建班次槽位
func NewShiftSlot(day string, period Period) *ShiftSlot {
	return &ShiftSlot{
		Key:    MakeSlotKey(day, period),
		Day:    strings.ToLower(day),
		Period: period,
		Clock:  periodClock[period],
	}
}

// AllSlotKeys 返回全部14个槽位键，顺序固定
func AllSlotKeys() []SlotKey {
	keys := make([]SlotKey, 0, len(Days)*2)
	for _, day := range Days {
		keys = append(keys, MakeSlotKey(day, PeriodMorning))
		keys = append(keys, MakeSlotKey(day, PeriodAfternoon))
	}
	return keys
}

// AllShiftSlots 返回全部14个班次槽位，顺序固定
func AllShiftSlots() []*ShiftSlot {
	slots := make([]*ShiftSlot, 0, len(Days)*2)
	for _, day := range Days {
		slots = append(slots, NewShiftSlot(day, PeriodMorning))
		slots = append(slots, NewShiftSlot(day, PeriodAfternoon))
	}
	return slots
}
