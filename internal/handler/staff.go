// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bingfang/bingfang/internal/security"
	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/hospital"
	"github.com/bingfang/bingfang/pkg/model"
)

// StaffHandler 人员管理处理器
type StaffHandler struct {
	svc      *hospital.Service
	sessions *security.SessionManager
}

// NewStaffHandler 创建人员管理处理器
func NewStaffHandler(svc *hospital.Service, sessions *security.SessionManager) *StaffHandler {
	return &StaffHandler{svc: svc, sessions: sessions}
}

// AddDoctor 医生入职
func (h *StaffHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var cfg model.DoctorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	doc, err := h.svc.AddDoctor(actorFrom(r), cfg)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// AddNurse 护士入职
func (h *StaffHandler) AddNurse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var cfg model.NurseConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	n, err := h.svc.AddNurse(actorFrom(r), cfg)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, n)
}

// AddManager 管理员入职
func (h *StaffHandler) AddManager(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var cfg model.ManagerConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	m, err := h.svc.AddManager(actorFrom(r), cfg)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// List 人员名录列表
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	dir := h.svc.Directory()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"doctors":  dir.Doctors(),
		"nurses":   dir.Nurses(),
		"managers": dir.Managers(),
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	StaffID string `json:"staff_id"`
	Role    string `json:"role"` // doctor/nurse/manager
}

// Login 操作员登录，建立会话
func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.InvalidInput("body", err.Error()))
		return
	}

	dir := h.svc.Directory()
	var name string
	switch model.StaffRole(req.Role) {
	case model.RoleDoctor:
		doc, ok := dir.GetDoctor(req.StaffID)
		if !ok {
			respondError(w, errors.NotFound("医生", req.StaffID))
			return
		}
		name = doc.Name
	case model.RoleNurse:
		n, ok := dir.GetNurse(req.StaffID)
		if !ok {
			respondError(w, errors.NotFound("护士", req.StaffID))
			return
		}
		name = n.Name
	case model.RoleManager:
		if !dir.HasStaff(req.StaffID) {
			respondError(w, errors.NotFound("员工", req.StaffID))
			return
		}
	default:
		respondError(w, errors.InvalidInput("role", "角色必须为 doctor/nurse/manager"))
		return
	}

	session, err := h.sessions.Create(req.StaffID, req.Role, name)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInternal, "会话创建失败"))
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Logout 注销会话
func (h *StaffHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	token := security.ExtractToken(r)
	if token == "" {
		respondError(w, errors.New(errors.CodeUnauthorized, "会话令牌未提供"))
		return
	}
	h.sessions.Revoke(token)
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
