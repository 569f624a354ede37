// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown       Code = "UNKNOWN"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeTimeout       Code = "TIMEOUT"
	CodeRateLimited   Code = "RATE_LIMITED"

	// 床位相关
	CodeBedNotFound    Code = "BED_NOT_FOUND"
	CodeBedOccupied    Code = "BED_OCCUPIED"
	CodeBedEmpty       Code = "BED_EMPTY"
	CodeBedUnsuitable  Code = "BED_UNSUITABLE"
	CodeNoBedAvailable Code = "NO_BED_AVAILABLE"

	// 人员相关
	CodeDuplicateStaff   Code = "DUPLICATE_STAFF"
	CodeStaffNotFound    Code = "STAFF_NOT_FOUND"
	CodeDuplicatePatient Code = "DUPLICATE_PATIENT"
	CodePatientNotFound  Code = "PATIENT_NOT_FOUND"

	// 排班相关
	CodeSlotNotFound      Code = "SLOT_NOT_FOUND"
	CodeScheduleConflict  Code = "SCHEDULE_CONFLICT"
	CodeHourLimitExceeded Code = "HOUR_LIMIT_EXCEEDED"
	CodeNotAssigned       Code = "NOT_ASSIGNED"

	// 数据相关
	CodeValidationFail    Code = "VALIDATION_FAILED"
	CodeIntegrityMismatch Code = "INTEGRITY_MISMATCH"
	CodeSnapshotFailed    Code = "SNAPSHOT_FAILED"
	CodeDatabaseError     Code = "DATABASE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeBedNotFound, CodeStaffNotFound, CodePatientNotFound, CodeSlotNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeDuplicateStaff, CodeDuplicatePatient,
		CodeBedOccupied, CodeBedEmpty, CodeScheduleConflict, CodeHourLimitExceeded, CodeNotAssigned:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNoBedAvailable, CodeBedUnsuitable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// 预定义错误
var (
	ErrNotFound       = New(CodeNotFound, "资源不存在")
	ErrInvalidInput   = New(CodeInvalidInput, "输入参数无效")
	ErrUnauthorized   = New(CodeUnauthorized, "未授权访问")
	ErrForbidden      = New(CodeForbidden, "禁止访问")
	ErrInternal       = New(CodeInternal, "内部错误")
	ErrNoBedAvailable = New(CodeNoBedAvailable, "无可用床位")
)

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// NotFound 创建资源不存在错误
func NotFound(resource, id string) *AppError {
	code := CodeNotFound
	switch resource {
	case "床位":
		code = CodeBedNotFound
	case "员工", "医生", "护士":
		code = CodeStaffNotFound
	case "患者":
		code = CodePatientNotFound
	case "班次":
		code = CodeSlotNotFound
	}
	return New(code, fmt.Sprintf("%s '%s' 不存在", resource, id))
}

// DuplicateStaff 创建员工重复错误
func DuplicateStaff(staffID string) *AppError {
	return New(CodeDuplicateStaff, fmt.Sprintf("员工 '%s' 已存在", staffID))
}

// DuplicatePatient 创建患者重复错误
func DuplicatePatient(patientID string) *AppError {
	return New(CodeDuplicatePatient, fmt.Sprintf("患者 '%s' 已在院", patientID))
}

// BedOccupied 创建床位被占用错误
func BedOccupied(bedID string) *AppError {
	return New(CodeBedOccupied, fmt.Sprintf("床位 '%s' 已被占用", bedID))
}

// BedUnsuitable 创建床位不适合错误
func BedUnsuitable(bedID, reason string) *AppError {
	return New(CodeBedUnsuitable, fmt.Sprintf("床位 '%s' 不满足患者需求: %s", bedID, reason))
}

// HourLimitExceeded 创建工时超限错误
func HourLimitExceeded(staffID, day string, hours int) *AppError {
	return New(CodeHourLimitExceeded,
		fmt.Sprintf("员工 %s 在 %s 的排班将达到 %d 小时，超过每日8小时上限", staffID, day, hours))
}

// ScheduleConflict 创建排班冲突错误
func ScheduleConflict(staffID, day, details string) *AppError {
	return New(CodeScheduleConflict, fmt.Sprintf("员工 %s 在 %s 存在排班冲突: %s", staffID, day, details))
}

// IntegrityMismatch 创建完整性异常错误
func IntegrityMismatch(details string) *AppError {
	return New(CodeIntegrityMismatch, fmt.Sprintf("床位与患者档案不一致: %s", details))
}

// SnapshotFailed 创建快照失败错误
func SnapshotFailed(err error) *AppError {
	return Wrap(err, CodeSnapshotFailed, "状态快照写入失败")
}

// ValidationErrors 验证错误集合
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError 单个验证错误
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "验证失败"
	}
	return fmt.Sprintf("验证失败: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add 添加验证错误
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors 检查是否有错误
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError 转换为 AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeValidationFail, "验证失败")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
