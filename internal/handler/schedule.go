// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bingfang/bingfang/internal/metrics"
	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/hospital"
	"github.com/bingfang/bingfang/pkg/model"
)

// ScheduleHandler 排班处理器
type ScheduleHandler struct {
	svc *hospital.Service
}

// NewScheduleHandler 创建排班处理器
func NewScheduleHandler(svc *hospital.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// AssignRequest 班次分配请求
type AssignRequest struct {
	StaffID string `json:"staff_id"`
	SlotKey string `json:"slot_key"` // 形如 monday_morning
}

// Assign 分配班次
func (h *ScheduleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}
	if req.StaffID == "" {
		respondError(w, errors.InvalidInput("staff_id", "员工编号不能为空"))
		return
	}

	key := model.SlotKey(req.SlotKey)
	if _, _, ok := key.Parse(); !ok {
		respondError(w, errors.InvalidInput("slot_key", "班次键格式应为 <day>_<morning|afternoon>"))
		return
	}

	if err := h.svc.AssignShift(actorFrom(r), req.StaffID, key); err != nil {
		respondError(w, err)
		return
	}

	h.updateCoverageMetrics()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"assignments": h.svc.Schedule().AssignedStaff(key),
	})
}

// Unassign 撤销班次分配
func (h *ScheduleHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	if err := h.svc.UnassignShift(actorFrom(r), req.StaffID, model.SlotKey(req.SlotKey)); err != nil {
		respondError(w, err)
		return
	}

	h.updateCoverageMetrics()
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Week 全周班表
func (h *ScheduleHandler) Week(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	sched := h.svc.Schedule()
	type slotView struct {
		Key     model.SlotKey    `json:"key"`
		Day     string           `json:"day"`
		Period  model.Period     `json:"period"`
		Clock   model.ClockRange `json:"clock"`
		Staff   []string         `json:"staff"`
		Covered bool             `json:"covered"`
	}

	var views []slotView
	for _, slot := range sched.Slots() {
		staff := sched.AssignedStaff(slot.Key)
		views = append(views, slotView{
			Key:     slot.Key,
			Day:     slot.Day,
			Period:  slot.Period,
			Clock:   slot.Clock,
			Staff:   staff,
			Covered: len(staff) > 0,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// Uncovered 无人值守槽位
func (h *ScheduleHandler) Uncovered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"uncovered": h.svc.Schedule().UncoveredSlots(),
	})
}

// Coverage 覆盖率统计
func (h *ScheduleHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	report := h.svc.CoverageReport()
	metrics.SetCoverageRate(report.OverallCoverage)
	respondJSON(w, http.StatusOK, report)
}

// Workload 工时分布统计
func (h *ScheduleHandler) Workload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	report := h.svc.WorkloadReport()
	metrics.SetWorkloadGini(report.WorkloadGini)
	respondJSON(w, http.StatusOK, report)
}

// updateCoverageMetrics 分配变更后刷新覆盖率指标
func (h *ScheduleHandler) updateCoverageMetrics() {
	report := h.svc.CoverageReport()
	metrics.SetCoverageRate(report.OverallCoverage)
}
