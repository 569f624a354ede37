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

// PatientHandler 患者管理处理器
type PatientHandler struct {
	svc *hospital.Service
}

// NewPatientHandler 创建患者管理处理器
func NewPatientHandler(svc *hospital.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

// Admit 患者入院
func (h *PatientHandler) Admit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var cfg model.PatientConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	result, err := h.svc.AdmitPatient(actorFrom(r), cfg)
	if err != nil {
		respondError(w, err)
		return
	}

	metrics.RecordAdmission(result.Queued)
	metrics.SetBedOccupancy(h.svc.Registry().OccupancyRate())
	metrics.SetWaitlistLength(h.svc.WaitingList().Len())

	status := http.StatusCreated
	if result.Queued {
		status = http.StatusAccepted
	}
	respondJSON(w, status, result)
}

// DischargeRequest 出院请求
type DischargeRequest struct {
	PatientID string `json:"patient_id"`
}

// Discharge 患者出院
func (h *PatientHandler) Discharge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req DischargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}
	if req.PatientID == "" {
		respondError(w, errors.InvalidInput("patient_id", "患者编号不能为空"))
		return
	}

	patient, admitted, err := h.svc.DischargePatient(actorFrom(r), req.PatientID)
	if err != nil {
		respondError(w, err)
		return
	}

	metrics.RecordDischarge()
	metrics.SetBedOccupancy(h.svc.Registry().OccupancyRate())
	metrics.SetWaitlistLength(h.svc.WaitingList().Len())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"discharged":          patient,
		"admitted_from_queue": admitted,
	})
}

// MoveRequest 转床请求
type MoveRequest struct {
	PatientID string `json:"patient_id"`
	ToBedID   string `json:"to_bed_id"`
}

// Move 患者转床
func (h *PatientHandler) Move(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}
	if req.PatientID == "" || req.ToBedID == "" {
		respondError(w, errors.InvalidInput("patient_id/to_bed_id", "患者编号与目标床位不能为空"))
		return
	}

	if err := h.svc.MovePatient(actorFrom(r), req.PatientID, req.ToBedID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// SuggestRequest 床位试算请求
type SuggestRequest struct {
	Profile         model.CareProfile `json:"profile"`
	MaxAlternatives int               `json:"max_alternatives,omitempty"`
}

// Suggest 床位试算，不占用床位
func (h *PatientHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	respondJSON(w, http.StatusOK, h.svc.SuggestBed(req.Profile, req.MaxAlternatives))
}

// List 在院患者列表
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Directory().Patients())
}

// Waitlist 入院等候队列
func (h *PatientHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, h.svc.WaitingList().Entries())
}

// Beds 全部床位视图
func (h *PatientHandler) Beds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Registry().AllBeds())
}
