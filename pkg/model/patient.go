// Package model 定义院务引擎的核心数据模型
package model

import (
	"strings"
	"time"

	"github.com/bingfang/bingfang/pkg/errors"
)

// CareProfile 患者照护需求
type CareProfile struct {
	Condition      string    `json:"condition"`                 // 主要病情
	NeedsIsolation bool      `json:"needs_isolation"`           // 是否需要隔离
	CareLevel      CareLevel `json:"care_level"`                // 护理等级
	Mobility       Mobility  `json:"mobility"`                  // 行动能力
	Diet           string    `json:"diet,omitempty"`            // 饮食要求
	Allergies      string    `json:"allergies,omitempty"`       // 过敏史
	Medications    string    `json:"medications,omitempty"`     // 当前用药
}

// Patient 患者
// BedID 是指向床位注册表的外键引用；患者出院时记录整体移除。
type Patient struct {
	BaseModel
	PatientID  string      `json:"patient_id" db:"patient_id"`
	Name       string      `json:"name" db:"name"`
	Email      string      `json:"email,omitempty" db:"email"`
	Phone      string      `json:"phone,omitempty" db:"phone"`
	Gender     string      `json:"gender,omitempty" db:"gender"`
	Profile    CareProfile `json:"profile" db:"profile"`
	BedID      string      `json:"bed_id,omitempty" db:"bed_id"`
	AdmittedAt time.Time   `json:"admitted_at" db:"admitted_at"`
}

// PatientConfig 患者入院配置
type PatientConfig struct {
	PatientID string      `json:"patient_id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Gender    string      `json:"gender,omitempty"`
	Profile   CareProfile `json:"profile"`
}

// Validate 验证患者配置，返回所有不通过的字段
func (c *PatientConfig) Validate() *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	if strings.TrimSpace(c.PatientID) == "" {
		ve.Add("patient_id", "患者编号不能为空")
	}
	if strings.TrimSpace(c.Name) == "" {
		ve.Add("name", "姓名不能为空")
	}
	if strings.TrimSpace(c.Profile.Condition) == "" {
		ve.Add("profile.condition", "主要病情不能为空")
	}
	if !c.Profile.CareLevel.IsValid() {
		ve.Add("profile.care_level", "护理等级必须在1-3之间")
	}
	if !c.Profile.Mobility.IsValid() {
		ve.Add("profile.mobility", "行动能力取值无效")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		ve.Add("email", "邮箱格式无效")
	}
	return ve
}

// NewPatient 根据已验证配置创建患者记录
func NewPatient(cfg PatientConfig) (*Patient, error) {
	if ve := cfg.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return &Patient{
		BaseModel:  NewBaseModel(),
		PatientID:  cfg.PatientID,
		Name:       cfg.Name,
		Email:      cfg.Email,
		Phone:      cfg.Phone,
		Gender:     cfg.Gender,
		Profile:    cfg.Profile,
		AdmittedAt: time.Now(),
	}, nil
}
