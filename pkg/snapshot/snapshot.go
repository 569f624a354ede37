// Package snapshot 提供全量状态快照的持久化
// 快照是单一扁平JSON文档，写入采用临时文件加原子改名
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/logger"
	"github.com/bingfang/bingfang/pkg/model"
)

// SchemaVersion 快照格式版本
const SchemaVersion = 1

// Snapshot 全量状态快照
// 床位占用与排班只记录引用关系，注册表结构本身由代码定义
type Snapshot struct {
	Version      int                         `json:"version"`
	Timestamp    time.Time                   `json:"timestamp"`
	Doctors      []*model.Doctor             `json:"doctors"`
	Nurses       []*model.Nurse              `json:"nurses"`
	Managers     []*model.Manager            `json:"managers"`
	Patients     []*model.Patient            `json:"patients"`
	BedOccupancy map[string]string           `json:"bed_occupancy"` // bedID -> patientID
	Assignments  map[model.SlotKey][]string  `json:"assignments"`   // slotKey -> staffIDs
}

// Store 快照文件存储
type Store struct {
	path string
	log  *logger.HospitalLogger
}

// NewStore 创建快照存储
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logger.NewHospitalLogger(),
	}
}

// Path 返回快照文件路径
func (s *Store) Path() string {
	return s.path
}

// Save 写入快照
// 先写同目录临时文件再改名，避免崩溃时留下半截文件
func (s *Store) Save(snap *Snapshot) error {
	start := time.Now()
	snap.Version = SchemaVersion
	snap.Timestamp = time.Now()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.SnapshotFailed(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.SnapshotFailed(err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return errors.SnapshotFailed(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.SnapshotFailed(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.SnapshotFailed(err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.SnapshotFailed(err)
	}

	s.log.SnapshotSaved(s.path, time.Since(start), len(data))
	return nil
}

// Load 读取快照
// 文件不存在时返回 (nil, nil)，表示全新启动
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "状态快照读取失败")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotFailed, "状态快照解析失败")
	}
	if snap.Version != SchemaVersion {
		return nil, errors.New(errors.CodeSnapshotFailed,
			fmt.Sprintf("不支持的快照版本 %d，期望 %d", snap.Version, SchemaVersion))
	}
	return &snap, nil
}
