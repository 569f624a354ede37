// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/bingfang/bingfang/internal/middleware"
	"github.com/bingfang/bingfang/pkg/errors"
)

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": appErr.Details,
		"fields":  appErr.Fields,
	})
}

// toAppError 将任意错误转换为应用错误
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, "内部错误")
}

// actorFrom 解析请求的操作员编号
func actorFrom(r *http.Request) string {
	if s, ok := middleware.SessionFromContext(r.Context()); ok {
		return s.StaffID
	}
	return "anonymous"
}
