// Package model 定义院务引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// WardType 病区类型
type WardType string

const (
	WardGeneral   WardType = "general"   // 普通病区
	WardIntensive WardType = "intensive" // 重症病区
)

// CareLevel 护理等级
type CareLevel int

const (
	CareLevelLow    CareLevel = 1 // 普通护理
	CareLevelMedium CareLevel = 2 // 中级护理
	CareLevelHigh   CareLevel = 3 // 重症护理
)

// IsValid 检查护理等级是否有效
func (c CareLevel) IsValid() bool {
	return c >= CareLevelLow && c <= CareLevelHigh
}

// Mobility 行动能力
type Mobility string

const (
	MobilityIndependent Mobility = "independent" // 自主行动
	MobilityAssisted    Mobility = "assisted"    // 需协助
	MobilityBedridden   Mobility = "bedridden"   // 卧床
)

// IsValid 检查行动能力取值是否有效
func (m Mobility) IsValid() bool {
	switch m {
	case MobilityIndependent, MobilityAssisted, MobilityBedridden:
		return true
	}
	return false
}

// IsLimited 检查是否行动受限
func (m Mobility) IsLimited() bool {
	return m == MobilityAssisted || m == MobilityBedridden
}

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ClockRange 时刻范围（HH:MM）
type ClockRange struct {
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
}

// Hours 返回时刻范围的时长（小时）
func (cr ClockRange) Hours() float64 {
	start, err1 := time.Parse("15:04", cr.Start)
	end, err2 := time.Parse("15:04", cr.End)
	if err1 != nil || err2 != nil {
		return 0
	}
	return end.Sub(start).Hours()
}

// Overlaps 检查两个时刻范围是否重叠
func (cr ClockRange) Overlaps(other ClockRange) bool {
	return cr.Start < other.End && other.Start < cr.End
}
