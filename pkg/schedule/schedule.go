// Package schedule 提供周班表
// 固定14个班次槽位（7天 × 早/午班），记录每个槽位的人员分配
// 并执行每日工时上限
package schedule

import (
	"sort"
	"sync"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

// DefaultMaxDailyHours 默认每日排班工时上限（小时）
const DefaultMaxDailyHours = 8.0

// Schedule 周班表
// 槽位分配集合与人员自身的分配集合在同一临界区内一同变更，
// 不存在只更新一侧的中间状态
type Schedule struct {
	mu            sync.RWMutex
	slots         map[model.SlotKey]*model.ShiftSlot
	assignments   map[model.SlotKey]map[string]struct{}
	staffSlots    map[string]map[model.SlotKey]struct{}
	maxDailyHours float64
}

// New 创建周班表，建立全部14个固定槽位
func New(maxDailyHours float64) *Schedule {
	if maxDailyHours <= 0 {
		maxDailyHours = DefaultMaxDailyHours
	}
	s := &Schedule{
		slots:         make(map[model.SlotKey]*model.ShiftSlot),
		assignments:   make(map[model.SlotKey]map[string]struct{}),
		staffSlots:    make(map[string]map[model.SlotKey]struct{}),
		maxDailyHours: maxDailyHours,
	}
	for _, slot := range model.AllShiftSlots() {
		s.slots[slot.Key] = slot
		s.assignments[slot.Key] = make(map[string]struct{})
	}
	return s
}

// Assign 将员工分配到班次槽位
// 前置条件按序检查：槽位存在 → 同日无重叠班次 → 不超过每日工时上限。
// 任一条件不满足则不产生任何状态变更。
func (s *Schedule) Assign(staffID string, key model.SlotKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[key]
	if !ok {
		return errors.NotFound("班次", string(key))
	}

	if _, dup := s.assignments[key][staffID]; dup {
		return errors.ScheduleConflict(staffID, slot.Day, "已分配到该班次")
	}

	// 同日重叠检查（早班16:00结束，午班14:00开始，必然重叠）
	for existing := range s.staffSlots[staffID] {
		es := s.slots[existing]
		if es.Day == slot.Day && es.Clock.Overlaps(slot.Clock) {
			return errors.ScheduleConflict(staffID, slot.Day, "与班次 "+string(existing)+" 时间重叠")
		}
	}

	// 每日工时上限检查
	current := s.hoursOnLocked(staffID, slot.Day)
	if current+slot.Hours() > s.maxDailyHours {
		return errors.HourLimitExceeded(staffID, slot.Day, int(current+slot.Hours()))
	}

	// 两侧集合一同更新
	s.assignments[key][staffID] = struct{}{}
	if s.staffSlots[staffID] == nil {
		s.staffSlots[staffID] = make(map[model.SlotKey]struct{})
	}
	s.staffSlots[staffID][key] = struct{}{}
	return nil
}

// Unassign 撤销员工的班次分配（对称操作，用于纠错）
func (s *Schedule) Unassign(staffID string, key model.SlotKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[key]; !ok {
		return errors.NotFound("班次", string(key))
	}
	if _, assigned := s.assignments[key][staffID]; !assigned {
		return errors.New(errors.CodeNotAssigned, "员工 "+staffID+" 未分配到班次 "+string(key))
	}

	delete(s.assignments[key], staffID)
	delete(s.staffSlots[staffID], key)
	if len(s.staffSlots[staffID]) == 0 {
		delete(s.staffSlots, staffID)
	}
	return nil
}

// hoursOnLocked 计算员工某日已排班工时（调用方需持有锁）
func (s *Schedule) hoursOnLocked(staffID, day string) float64 {
	var hours float64
	for key := range s.staffSlots[staffID] {
		if slot := s.slots[key]; slot.Day == day {
			hours += slot.Hours()
		}
	}
	return hours
}

// HoursOn 返回员工某日已排班工时
func (s *Schedule) HoursOn(staffID, day string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hoursOnLocked(staffID, day)
}

// DailyHours 返回员工按日的排班工时映射
func (s *Schedule) DailyHours(staffID string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hours := make(map[string]float64)
	for key := range s.staffSlots[staffID] {
		slot := s.slots[key]
		hours[slot.Day] += slot.Hours()
	}
	return hours
}

// AllDailyHours 返回全部员工按日的排班工时
func (s *Schedule) AllDailyHours() map[string]map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]map[string]float64, len(s.staffSlots))
	for staffID, keys := range s.staffSlots {
		hours := make(map[string]float64)
		for key := range keys {
			slot := s.slots[key]
			hours[slot.Day] += slot.Hours()
		}
		result[staffID] = hours
	}
	return result
}

// UncoveredSlots 返回无人值守的槽位键，顺序固定
func (s *Schedule) UncoveredSlots() []model.SlotKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var uncovered []model.SlotKey
	for _, key := range model.AllSlotKeys() {
		if len(s.assignments[key]) == 0 {
			uncovered = append(uncovered, key)
		}
	}
	return uncovered
}

// HasUncovered 检查是否存在无人值守槽位
func (s *Schedule) HasUncovered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, set := range s.assignments {
		if len(set) == 0 {
			return true
		}
	}
	return false
}

// AssignedStaff 返回某槽位的人员编号，排序后返回
func (s *Schedule) AssignedStaff(key model.SlotKey) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.assignments[key]
	if !ok {
		return nil
	}
	staff := make([]string, 0, len(set))
	for id := range set {
		staff = append(staff, id)
	}
	sort.Strings(staff)
	return staff
}

// StaffSlots 返回某员工的全部槽位键，顺序固定
func (s *Schedule) StaffSlots(staffID string) []model.SlotKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []model.SlotKey
	for _, key := range model.AllSlotKeys() {
		if _, ok := s.staffSlots[staffID][key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// Slots 返回全部班次槽位定义，顺序固定
func (s *Schedule) Slots() []*model.ShiftSlot {
	slots := make([]*model.ShiftSlot, 0, len(s.slots))
	for _, key := range model.AllSlotKeys() {
		slots = append(slots, s.slots[key])
	}
	return slots
}

// Snapshot 导出全部槽位分配（键固定顺序，人员排序）
func (s *Schedule) Snapshot() map[model.SlotKey][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[model.SlotKey][]string, len(s.assignments))
	for key, set := range s.assignments {
		if len(set) == 0 {
			continue
		}
		staff := make([]string, 0, len(set))
		for id := range set {
			staff = append(staff, id)
		}
		sort.Strings(staff)
		snap[key] = staff
	}
	return snap
}

// Restore 从快照恢复槽位分配
// 未知槽位键返回错误且不做任何变更
func (s *Schedule) Restore(snap map[model.SlotKey][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range snap {
		if _, ok := s.slots[key]; !ok {
			return errors.NotFound("班次", string(key))
		}
	}

	for key := range s.assignments {
		s.assignments[key] = make(map[string]struct{})
	}
	s.staffSlots = make(map[string]map[model.SlotKey]struct{})

	for key, staff := range snap {
		for _, id := range staff {
			s.assignments[key][id] = struct{}{}
			if s.staffSlots[id] == nil {
				s.staffSlots[id] = make(map[model.SlotKey]struct{})
			}
			s.staffSlots[id][key] = struct{}{}
		}
	}
	return nil
}
