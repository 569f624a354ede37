// Package model 定义院务引擎的核心数据模型
package model

import "fmt"

// Ward 病区
// 病区在系统启动时一次性创建，房间与床位布局固定不变
type Ward struct {
	Index int      `json:"index"` // 病区序号（用于确定性排序）
	Code  string   `json:"code"`  // 如 WARD_A
	Name  string   `json:"name"`
	Type  WardType `json:"type"`
	Rooms []*Room  `json:"rooms"`
}

// Room 病房
type Room struct {
	Code      string `json:"code"`  // 如 A3
	Index     int    `json:"index"` // 病房在病区内的序号
	Isolation bool   `json:"isolation"` // 是否具备隔离条件
	Beds      []*Bed `json:"beds"`
}

// Bed 床位
// 床位编号形如 A3-2（A3房2号床）；PatientID 为空表示空床。
// PatientID 仅是指向患者名录的外键引用，不拥有患者记录本身。
type Bed struct {
	ID        string `json:"id"`
	RoomCode  string `json:"room_code"`
	Index     int    `json:"index"` // 床位在病房内的序号，序号小的靠近房门
	PatientID string `json:"patient_id,omitempty"`
}

// IsOccupied 检查床位是否被占用
func (b *Bed) IsOccupied() bool {
	return b.PatientID != ""
}

// BedID 构造床位编号
func BedID(roomCode string, bedIndex int) string {
	return fmt.Sprintf("%s-%d", roomCode, bedIndex)
}

// TotalBeds 返回病区床位总数
func (w *Ward) TotalBeds() int {
	total := 0
	for _, r := range w.Rooms {
		total += len(r.Beds)
	}
	return total
}

// OccupiedBeds 返回病区已占用床位数
func (w *Ward) OccupiedBeds() int {
	occupied := 0
	for _, r := range w.Rooms {
		for _, b := range r.Beds {
			if b.IsOccupied() {
				occupied++
			}
		}
	}
	return occupied
}

// Utilization 返回病区占用率 (0-1)
func (w *Ward) Utilization() float64 {
	total := w.TotalBeds()
	if total == 0 {
		return 0
	}
	return float64(w.OccupiedBeds()) / float64(total)
}

// FindRoom 按编号查找病房
func (w *Ward) FindRoom(code string) *Room {
	for _, r := range w.Rooms {
		if r.Code == code {
			return r
		}
	}
	return nil
}
