// Package model 定义院务引擎的核心数据模型
package model

import (
	"strings"

	"github.com/bingfang/bingfang/pkg/errors"
)

// StaffRole 员工角色
type StaffRole string

const (
	RoleDoctor  StaffRole = "doctor"
	RoleNurse   StaffRole = "nurse"
	RoleManager StaffRole = "manager"
)

// Doctor 医生
type Doctor struct {
	BaseModel
	StaffID   string `json:"staff_id" db:"staff_id"`
	Name      string `json:"name" db:"name"`
	Email     string `json:"email,omitempty" db:"email"`
	Phone     string `json:"phone,omitempty" db:"phone"`
	Username  string `json:"username" db:"username"`
	Specialty string `json:"specialty" db:"specialty"`
	LicenseNo string `json:"license_no" db:"license_no"`
}

// Nurse 护士
type Nurse struct {
	BaseModel
	StaffID       string `json:"staff_id" db:"staff_id"`
	Name          string `json:"name" db:"name"`
	Email         string `json:"email,omitempty" db:"email"`
	Phone         string `json:"phone,omitempty" db:"phone"`
	Username      string `json:"username" db:"username"`
	Certification string `json:"certification" db:"certification"`
}

// Manager 行政管理员
type Manager struct {
	BaseModel
	StaffID  string `json:"staff_id" db:"staff_id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email,omitempty" db:"email"`
	Phone    string `json:"phone,omitempty" db:"phone"`
	Username string `json:"username" db:"username"`
}

// DoctorConfig 医生创建配置
type DoctorConfig struct {
	StaffID   string `json:"staff_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Username  string `json:"username"`
	Specialty string `json:"specialty"`
	LicenseNo string `json:"license_no"`
}

// Validate 验证医生配置，返回所有不通过的字段
func (c *DoctorConfig) Validate() *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	if strings.TrimSpace(c.StaffID) == "" {
		ve.Add("staff_id", "员工编号不能为空")
	}
	if strings.TrimSpace(c.Name) == "" {
		ve.Add("name", "姓名不能为空")
	}
	if strings.TrimSpace(c.Specialty) == "" {
		ve.Add("specialty", "专科不能为空")
	}
	if strings.TrimSpace(c.LicenseNo) == "" {
		ve.Add("license_no", "执业证号不能为空")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		ve.Add("email", "邮箱格式无效")
	}
	return ve
}

// NewDoctor 根据已验证配置创建医生
func NewDoctor(cfg DoctorConfig) (*Doctor, error) {
	if ve := cfg.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return &Doctor{
		BaseModel: NewBaseModel(),
		StaffID:   cfg.StaffID,
		Name:      cfg.Name,
		Email:     cfg.Email,
		Phone:     cfg.Phone,
		Username:  cfg.Username,
		Specialty: cfg.Specialty,
		LicenseNo: cfg.LicenseNo,
	}, nil
}

// NurseConfig 护士创建配置
type NurseConfig struct {
	StaffID       string `json:"staff_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Username      string `json:"username"`
	Certification string `json:"certification"`
}

// Validate 验证护士配置，返回所有不通过的字段
func (c *NurseConfig) Validate() *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	if strings.TrimSpace(c.StaffID) == "" {
		ve.Add("staff_id", "员工编号不能为空")
	}
	if strings.TrimSpace(c.Name) == "" {
		ve.Add("name", "姓名不能为空")
	}
	if strings.TrimSpace(c.Certification) == "" {
		ve.Add("certification", "资质证书不能为空")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		ve.Add("email", "邮箱格式无效")
	}
	return ve
}

// NewNurse 根据已验证配置创建护士
func NewNurse(cfg NurseConfig) (*Nurse, error) {
	if ve := cfg.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return &Nurse{
		BaseModel:     NewBaseModel(),
		StaffID:       cfg.StaffID,
		Name:          cfg.Name,
		Email:         cfg.Email,
		Phone:         cfg.Phone,
		Username:      cfg.Username,
		Certification: cfg.Certification,
	}, nil
}

// ManagerConfig 管理员创建配置
type ManagerConfig struct {
	StaffID  string `json:"staff_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username"`
}

// Validate 验证管理员配置
func (c *ManagerConfig) Validate() *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	if strings.TrimSpace(c.StaffID) == "" {
		ve.Add("staff_id", "员工编号不能为空")
	}
	if strings.TrimSpace(c.Name) == "" {
		ve.Add("name", "姓名不能为空")
	}
	return ve
}

// NewManager 根据已验证配置创建管理员
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if ve := cfg.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return &Manager{
		BaseModel: NewBaseModel(),
		StaffID:   cfg.StaffID,
		Name:      cfg.Name,
		Email:     cfg.Email,
		Phone:     cfg.Phone,
		Username:  cfg.Username,
	}, nil
}
