// Package registry 提供床位注册表
// 病区→病房→床位的固定层级在启动时一次性建立，之后只有占用状态可变
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

// RoomSpec 病房布局定义
type RoomSpec struct {
	Beds      int  `json:"beds"`
	Isolation bool `json:"isolation"`
}

// WardSpec 病区布局定义
type WardSpec struct {
	Code   string         `json:"code"`
	Name   string         `json:"name"`
	Prefix string         `json:"prefix"` // 病房编号前缀，如 A
	Type   model.WardType `json:"type"`
	Rooms  []RoomSpec     `json:"rooms"`
}

// Layout 整体床位布局
type Layout []WardSpec

// DefaultLayout 返回默认的两病区布局
// A区普通护理16床，B区重症护理15床，共31床。
// 单床房（A3、B4）及每区1号房具备隔离条件。
func DefaultLayout() Layout {
	return Layout{
		{
			Code: "WARD_A", Name: "General Care Ward A", Prefix: "A", Type: model.WardGeneral,
			Rooms: []RoomSpec{
				{Beds: 2, Isolation: true},
				{Beds: 4},
				{Beds: 1, Isolation: true},
				{Beds: 3},
				{Beds: 2},
				{Beds: 4},
			},
		},
		{
			Code: "WARD_B", Name: "Intensive Care Ward B", Prefix: "B", Type: model.WardIntensive,
			Rooms: []RoomSpec{
				{Beds: 3, Isolation: true},
				{Beds: 2},
				{Beds: 4},
				{Beds: 1, Isolation: true},
				{Beds: 3},
				{Beds: 2},
			},
		},
	}
}

// position 床位在层级中的定位
type position struct {
	wardIdx int
	roomIdx int
	bedIdx  int
}

// BedView 床位视图（含病区/病房上下文的只读副本）
type BedView struct {
	BedID     string         `json:"bed_id"`
	RoomCode  string         `json:"room_code"`
	WardCode  string         `json:"ward_code"`
	WardType  model.WardType `json:"ward_type"`
	WardIndex int            `json:"ward_index"`
	RoomIndex int            `json:"room_index"`
	BedIndex  int            `json:"bed_index"`
	Isolation bool           `json:"isolation"`
	Occupied  bool           `json:"occupied"`
	PatientID string         `json:"patient_id,omitempty"`
}

// Registry 床位注册表
// 自身的互斥锁只覆盖占用状态变更；跨存储不变量由上层服务的临界区保证
type Registry struct {
	mu        sync.RWMutex
	wards     []*model.Ward
	bedIndex  map[string]*model.Bed
	positions map[string]position
	rooms     map[string]*model.Room
	wardOf    map[string]*model.Ward // roomCode -> ward
}

// New 按布局建立床位注册表
func New(layout Layout) *Registry {
	r := &Registry{
		bedIndex:  make(map[string]*model.Bed),
		positions: make(map[string]position),
		rooms:     make(map[string]*model.Room),
		wardOf:    make(map[string]*model.Ward),
	}

	for wi, ws := range layout {
		ward := &model.Ward{
			Index: wi,
			Code:  ws.Code,
			Name:  ws.Name,
			Type:  ws.Type,
		}
		for ri, rs := range ws.Rooms {
			room := &model.Room{
				Code:      fmt.Sprintf("%s%d", ws.Prefix, ri+1),
				Index:     ri,
				Isolation: rs.Isolation,
			}
			for bi := 0; bi < rs.Beds; bi++ {
				bed := &model.Bed{
					ID:       model.BedID(room.Code, bi+1),
					RoomCode: room.Code,
					Index:    bi,
				}
				room.Beds = append(room.Beds, bed)
				r.bedIndex[bed.ID] = bed
				r.positions[bed.ID] = position{wardIdx: wi, roomIdx: ri, bedIdx: bi}
			}
			ward.Rooms = append(ward.Rooms, room)
			r.rooms[room.Code] = room
			r.wardOf[room.Code] = ward
		}
		r.wards = append(r.wards, ward)
	}

	return r
}

// Occupy 占用床位
// 要么完整成功，要么状态不变
func (r *Registry) Occupy(bedID, patientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bed, ok := r.bedIndex[bedID]
	if !ok {
		return errors.NotFound("床位", bedID)
	}
	if bed.IsOccupied() {
		return errors.BedOccupied(bedID)
	}
	bed.PatientID = patientID
	return nil
}

// Release 释放床位，返回原占用患者编号
func (r *Registry) Release(bedID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bed, ok := r.bedIndex[bedID]
	if !ok {
		return "", errors.NotFound("床位", bedID)
	}
	if !bed.IsOccupied() {
		return "", errors.New(errors.CodeBedEmpty, "床位 '"+bedID+"' 为空床")
	}
	patientID := bed.PatientID
	bed.PatientID = ""
	return patientID, nil
}

// FindBed 查找床位视图
func (r *Registry) FindBed(bedID string) (BedView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bed, ok := r.bedIndex[bedID]
	if !ok {
		return BedView{}, false
	}
	return r.viewOf(bed), true
}

// viewOf 构造床位视图（调用方需持有读锁）
func (r *Registry) viewOf(bed *model.Bed) BedView {
	pos := r.positions[bed.ID]
	room := r.rooms[bed.RoomCode]
	ward := r.wardOf[bed.RoomCode]
	return BedView{
		BedID:     bed.ID,
		RoomCode:  bed.RoomCode,
		WardCode:  ward.Code,
		WardType:  ward.Type,
		WardIndex: pos.wardIdx,
		RoomIndex: pos.roomIdx,
		BedIndex:  pos.bedIdx,
		Isolation: room.Isolation,
		Occupied:  bed.IsOccupied(),
		PatientID: bed.PatientID,
	}
}

// FreeBeds 返回所有空床视图，按（病区、病房、床位）序号确定性排序
func (r *Registry) FreeBeds() []BedView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var views []BedView
	for _, ward := range r.wards {
		for _, room := range ward.Rooms {
			for _, bed := range room.Beds {
				if !bed.IsOccupied() {
					views = append(views, r.viewOf(bed))
				}
			}
		}
	}
	sortViews(views)
	return views
}

// AllBeds 返回所有床位视图（含占用），确定性排序
func (r *Registry) AllBeds() []BedView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var views []BedView
	for _, bed := range r.bedIndex {
		views = append(views, r.viewOf(bed))
	}
	sortViews(views)
	return views
}

// sortViews 按（病区、病房、床位）序号排序
func sortViews(views []BedView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].WardIndex != views[j].WardIndex {
			return views[i].WardIndex < views[j].WardIndex
		}
		if views[i].RoomIndex != views[j].RoomIndex {
			return views[i].RoomIndex < views[j].RoomIndex
		}
		return views[i].BedIndex < views[j].BedIndex
	})
}

// TotalBeds 返回床位总数
func (r *Registry) TotalBeds() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bedIndex)
}

// OccupiedCount 返回已占用床位数
func (r *Registry) OccupiedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, bed := range r.bedIndex {
		if bed.IsOccupied() {
			count++
		}
	}
	return count
}

// OccupancyRate 返回整体占用率（百分比 0-100）
func (r *Registry) OccupancyRate() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.bedIndex) == 0 {
		return 0
	}
	occupied := 0
	for _, bed := range r.bedIndex {
		if bed.IsOccupied() {
			occupied++
		}
	}
	return float64(occupied) * 100.0 / float64(len(r.bedIndex))
}

// WardUtilization 返回各病区占用率 (0-1)，按病区序号排序
func (r *Registry) WardUtilization() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]float64, len(r.wards))
	for _, w := range r.wards {
		result[w.Code] = w.Utilization()
	}
	return result
}

// Occupancy 返回床位占用映射 bedID -> patientID（仅占用床位）
func (r *Registry) Occupancy() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	occ := make(map[string]string)
	for id, bed := range r.bedIndex {
		if bed.IsOccupied() {
			occ[id] = bed.PatientID
		}
	}
	return occ
}

// Restore 从快照恢复床位占用状态
// 先清空再按映射占用；未知床位编号返回错误且不做任何变更
func (r *Registry) Restore(occupancy map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for bedID := range occupancy {
		if _, ok := r.bedIndex[bedID]; !ok {
			return errors.NotFound("床位", bedID)
		}
	}

	for _, bed := range r.bedIndex {
		bed.PatientID = ""
	}
	for bedID, patientID := range occupancy {
		r.bedIndex[bedID].PatientID = patientID
	}
	return nil
}
