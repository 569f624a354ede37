// Package directory 提供人员名录
// 医生、护士、管理员与在院患者的唯一属主存储
package directory

import (
	"sort"
	"sync"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

// Directory 人员名录
// 每类集合由同一把锁保护；跨存储（名录↔床位注册表）的一致性
// 由上层服务的入院临界区保证
type Directory struct {
	mu       sync.RWMutex
	doctors  map[string]*model.Doctor
	nurses   map[string]*model.Nurse
	managers map[string]*model.Manager
	patients map[string]*model.Patient
}

// New 创建空名录
func New() *Directory {
	return &Directory{
		doctors:  make(map[string]*model.Doctor),
		nurses:   make(map[string]*model.Nurse),
		managers: make(map[string]*model.Manager),
		patients: make(map[string]*model.Patient),
	}
}

// AddDoctor 登记医生
func (d *Directory) AddDoctor(doc *model.Doctor) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.doctors[doc.StaffID]; exists {
		return errors.DuplicateStaff(doc.StaffID)
	}
	d.doctors[doc.StaffID] = doc
	return nil
}

// AddNurse 登记护士
func (d *Directory) AddNurse(n *model.Nurse) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.nurses[n.StaffID]; exists {
		return errors.DuplicateStaff(n.StaffID)
	}
	d.nurses[n.StaffID] = n
	return nil
}

// AddManager 登记管理员
func (d *Directory) AddManager(m *model.Manager) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.managers[m.StaffID]; exists {
		return errors.DuplicateStaff(m.StaffID)
	}
	d.managers[m.StaffID] = m
	return nil
}

// AddPatient 登记在院患者
func (d *Directory) AddPatient(p *model.Patient) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.patients[p.PatientID]; exists {
		return errors.DuplicatePatient(p.PatientID)
	}
	d.patients[p.PatientID] = p
	return nil
}

// RemovePatient 移除患者记录（出院），返回被移除的记录
func (d *Directory) RemovePatient(patientID string) (*model.Patient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.patients[patientID]
	if !ok {
		return nil, errors.NotFound("患者", patientID)
	}
	delete(d.patients, patientID)
	return p, nil
}

// GetDoctor 查询医生
func (d *Directory) GetDoctor(staffID string) (*model.Doctor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.doctors[staffID]
	return doc, ok
}

// GetNurse 查询护士
func (d *Directory) GetNurse(staffID string) (*model.Nurse, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nurses[staffID]
	return n, ok
}

// GetPatient 查询患者
func (d *Directory) GetPatient(patientID string) (*model.Patient, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.patients[patientID]
	return p, ok
}

// HasStaff 检查员工编号是否已登记（任意角色）
func (d *Directory) HasStaff(staffID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.doctors[staffID]; ok {
		return true
	}
	if _, ok := d.nurses[staffID]; ok {
		return true
	}
	_, ok := d.managers[staffID]
	return ok
}

// SetPatientBed 更新患者的床位引用
func (d *Directory) SetPatientBed(patientID, bedID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.patients[patientID]
	if !ok {
		return errors.NotFound("患者", patientID)
	}
	p.BedID = bedID
	return nil
}

// DoctorCount 返回医生人数
func (d *Directory) DoctorCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.doctors)
}

// NurseCount 返回护士人数
func (d *Directory) NurseCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nurses)
}

// PatientCount 返回在院患者人数
func (d *Directory) PatientCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.patients)
}

// Doctors 返回医生列表副本，按员工编号排序
func (d *Directory) Doctors() []*model.Doctor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Doctor, 0, len(d.doctors))
	for _, doc := range d.doctors {
		c := *doc
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StaffID < result[j].StaffID })
	return result
}

// Nurses 返回护士列表副本，按员工编号排序
func (d *Directory) Nurses() []*model.Nurse {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Nurse, 0, len(d.nurses))
	for _, n := range d.nurses {
		c := *n
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StaffID < result[j].StaffID })
	return result
}

// Managers 返回管理员列表副本，按员工编号排序
func (d *Directory) Managers() []*model.Manager {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Manager, 0, len(d.managers))
	for _, m := range d.managers {
		c := *m
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StaffID < result[j].StaffID })
	return result
}

// Patients 返回在院患者列表副本，按患者编号排序
func (d *Directory) Patients() []*model.Patient {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*model.Patient, 0, len(d.patients))
	for _, p := range d.patients {
		c := *p
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PatientID < result[j].PatientID })
	return result
}

// Restore 从快照恢复名录
func (d *Directory) Restore(doctors []*model.Doctor, nurses []*model.Nurse, managers []*model.Manager, patients []*model.Patient) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.doctors = make(map[string]*model.Doctor, len(doctors))
	for _, doc := range doctors {
		d.doctors[doc.StaffID] = doc
	}
	d.nurses = make(map[string]*model.Nurse, len(nurses))
	for _, n := range nurses {
		d.nurses[n.StaffID] = n
	}
	d.managers = make(map[string]*model.Manager, len(managers))
	for _, m := range managers {
		d.managers[m.StaffID] = m
	}
	d.patients = make(map[string]*model.Patient, len(patients))
	for _, p := range patients {
		d.patients[p.PatientID] = p
	}
}
