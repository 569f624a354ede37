// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bingfang/bingfang/internal/metrics"
	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/hospital"
)

// ComplianceHandler 合规检查处理器
type ComplianceHandler struct {
	svc *hospital.Service
}

// NewComplianceHandler 创建合规检查处理器
func NewComplianceHandler(svc *hospital.Service) *ComplianceHandler {
	return &ComplianceHandler{svc: svc}
}

// Check 全量合规检查
func (h *ComplianceHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	start := time.Now()
	report := h.svc.RunComplianceCheck(actorFrom(r))
	metrics.RecordComplianceCheck("full", time.Since(start))
	for _, issue := range report.Issues {
		metrics.RecordComplianceViolation(issue.Rule, string(issue.Severity))
	}

	respondJSON(w, http.StatusOK, report)
}

// Quick 快速健康检查
func (h *ComplianceHandler) Quick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	start := time.Now()
	report := h.svc.QuickHealthCheck()
	metrics.RecordComplianceCheck("quick", time.Since(start))

	respondJSON(w, http.StatusOK, report)
}

// Forecast 占用率趋势预测
func (h *ComplianceHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	respondJSON(w, http.StatusOK, h.svc.OccupancyForecast())
}

// Occupancy 床位占用统计
func (h *ComplianceHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	report := h.svc.OccupancyReport()
	metrics.SetBedOccupancy(report.OccupancyRate)
	for ward, wo := range report.WardOccupancy {
		metrics.SetWardOccupancy(ward, wo.OccupancyRate)
	}
	respondJSON(w, http.StatusOK, report)
}

// Integrity 数据完整性校验
func (h *ComplianceHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	mismatches := h.svc.VerifyIntegrity()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"consistent": len(mismatches) == 0,
		"mismatches": mismatches,
	})
}

// AuditHandler 审计日志处理器
type AuditHandler struct {
	svc *hospital.Service
}

// NewAuditHandler 创建审计日志处理器
func NewAuditHandler(svc *hospital.Service) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// Recent 最近审计条目
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	respondJSON(w, http.StatusOK, h.svc.Audit().Recent(limit))
}
