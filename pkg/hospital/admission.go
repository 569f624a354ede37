// Package hospital 提供院务引擎门面
package hospital

import (
	"fmt"

	"github.com/bingfang/bingfang/pkg/bedfinder"
	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/logger"
	"github.com/bingfang/bingfang/pkg/model"
)

// AdmitResult 入院结果
// 无床可用时患者进入等候队列，Queued 为真且不占用任何床位
type AdmitResult struct {
	Patient       *model.Patient       `json:"patient,omitempty"`
	BedID         string               `json:"bed_id,omitempty"`
	Match         *bedfinder.BedScore  `json:"match,omitempty"`
	Alternatives  []bedfinder.BedScore `json:"alternatives,omitempty"`
	Queued        bool                 `json:"queued"`
	QueuePosition int                  `json:"queue_position,omitempty"`
}

// AdmitPatient 患者入院
// 先验证档案，再由匹配引擎选床并占用；无床或无合适隔离床时进入等候队列。
// 名录与床位注册表的变更在同一入院临界区内完成。
func (s *Service) AdmitPatient(actor string, cfg model.PatientConfig) (*AdmitResult, error) {
	if ve := cfg.Validate(); ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()

	return s.admitLocked(actor, cfg)
}

// admitLocked 执行入院流程（调用方需持有入院临界区）
func (s *Service) admitLocked(actor string, cfg model.PatientConfig) (*AdmitResult, error) {
	if _, exists := s.dir.GetPatient(cfg.PatientID); exists {
		return nil, errors.DuplicatePatient(cfg.PatientID)
	}
	// 已排队的患者重复入院同样视为冲突
	if s.waitlist.Contains(cfg.PatientID) {
		return nil, errors.DuplicatePatient(cfg.PatientID)
	}

	resp := s.finder.Find(&bedfinder.FindRequest{Profile: cfg.Profile})
	if !resp.Success {
		s.waitlist.Enqueue(cfg)
		s.log.PatientQueued(cfg.PatientID, resp.Reason)
		s.auditLog.PatientAction(actor, "queue_patient",
			fmt.Sprintf("患者 %s 进入等候队列: %s", cfg.PatientID, resp.Reason))
		return &AdmitResult{
			Queued:        true,
			QueuePosition: s.waitlist.Len(),
		}, nil
	}

	p, err := model.NewPatient(cfg)
	if err != nil {
		return nil, err
	}

	bedID := resp.BestMatch.Bed.BedID
	if err := s.reg.Occupy(bedID, p.PatientID); err != nil {
		return nil, err
	}
	p.BedID = bedID
	if err := s.dir.AddPatient(p); err != nil {
		// 回滚床位占用，保持两侧一致
		s.reg.Release(bedID)
		return nil, err
	}

	s.log.AdmissionDecision(p.PatientID, bedID, resp.BestMatch.Confidence)
	s.auditLog.PatientAction(actor, "admit_patient",
		fmt.Sprintf("患者 %s 入院，分配床位 %s (置信度 %.0f%%)", p.PatientID, bedID, resp.BestMatch.Confidence))

	return &AdmitResult{
		Patient:      p,
		BedID:        bedID,
		Match:        resp.BestMatch,
		Alternatives: resp.Alternatives,
	}, nil
}

// SuggestBed 为患者需求试算床位，不产生任何状态变更
func (s *Service) SuggestBed(profile model.CareProfile, maxAlternatives int) *bedfinder.FindResponse {
	return s.finder.Find(&bedfinder.FindRequest{
		Profile:         profile,
		MaxAlternatives: maxAlternatives,
	})
}

// DischargePatient 患者出院
// 移除患者记录并释放床位，然后尝试收治等候队列队首
func (s *Service) DischargePatient(actor, patientID string) (*model.Patient, []*AdmitResult, error) {
	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()

	p, err := s.dir.RemovePatient(patientID)
	if err != nil {
		return nil, nil, err
	}

	if p.BedID != "" {
		if _, err := s.reg.Release(p.BedID); err != nil {
			// 患者档案与床位状态不一致，降级运行
			s.log.IntegrityMismatch(
				fmt.Sprintf("出院患者 %s 的床位 %s 释放失败: %v", patientID, p.BedID, err))
		}
	}

	s.auditLog.PatientAction(actor, "discharge_patient",
		fmt.Sprintf("患者 %s 出院，释放床位 %s", patientID, p.BedID))

	admitted := s.drainWaitlistLocked(actor)
	return p, admitted, nil
}

// MovePatient 患者转床
// 先占新床再释放旧床，目标床位不满足隔离需求时拒绝
func (s *Service) MovePatient(actor, patientID, toBedID string) error {
	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()

	p, ok := s.dir.GetPatient(patientID)
	if !ok {
		return errors.NotFound("患者", patientID)
	}
	if p.BedID == "" {
		return errors.New(errors.CodeBedEmpty, "患者 '"+patientID+"' 当前未占用床位")
	}
	if p.BedID == toBedID {
		return errors.BedOccupied(toBedID)
	}

	target, ok := s.reg.FindBed(toBedID)
	if !ok {
		return errors.NotFound("床位", toBedID)
	}
	if target.Occupied {
		return errors.BedOccupied(toBedID)
	}
	if p.Profile.NeedsIsolation && !target.Isolation {
		return errors.BedUnsuitable(toBedID, "患者需要隔离病房")
	}

	fromBedID := p.BedID
	if err := s.reg.Occupy(toBedID, patientID); err != nil {
		return err
	}
	if _, err := s.reg.Release(fromBedID); err != nil {
		// 回滚新床占用
		s.reg.Release(toBedID)
		return err
	}
	if err := s.dir.SetPatientBed(patientID, toBedID); err != nil {
		return err
	}

	s.auditLog.PatientAction(actor, "move_patient",
		fmt.Sprintf("患者 %s 从床位 %s 转至 %s", patientID, fromBedID, toBedID))
	return nil
}

// DrainWaitlist 尝试收治等候队列中的患者，返回本次入院结果
// 周期任务在床位释放后调用
func (s *Service) DrainWaitlist(actor string) []*AdmitResult {
	s.admissionMu.Lock()
	defer s.admissionMu.Unlock()
	return s.drainWaitlistLocked(actor)
}

// drainWaitlistLocked 按先进先出收治队首患者，队首无法安置时停止
// 不跳过队首是为了保证等候顺序公平
func (s *Service) drainWaitlistLocked(actor string) []*AdmitResult {
	var admitted []*AdmitResult
	for {
		entry, ok := s.waitlist.Peek()
		if !ok {
			break
		}

		resp := s.finder.Find(&bedfinder.FindRequest{Profile: entry.Config.Profile})
		if !resp.Success {
			break
		}

		s.waitlist.Dequeue()
		result, err := s.admitLocked(actor, entry.Config)
		if err != nil {
			logger.WithError(err).
				Str("patient_id", entry.Config.PatientID).
				Msg("等候队列患者入院失败，条目丢弃")
			continue
		}
		admitted = append(admitted, result)
	}
	return admitted
}
