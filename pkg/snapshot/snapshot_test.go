package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bingfang/bingfang/pkg/errors"
	"github.com/bingfang/bingfang/pkg/model"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	store := NewStore(path)

	doc, _ := model.NewDoctor(model.DoctorConfig{
		StaffID: "D001", Name: "张医生", Specialty: "呼吸内科", LicenseNo: "LIC-001",
	})
	snap := &Snapshot{
		Doctors:      []*model.Doctor{doc},
		BedOccupancy: map[string]string{"A1-1": "P001"},
		Assignments:  map[model.SlotKey][]string{"monday_morning": {"N001"}},
	}

	if err := store.Save(snap); err != nil {
		t.Fatalf("快照写入失败: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("快照读取失败: %v", err)
	}
	if loaded == nil {
		t.Fatal("快照不应为空")
	}
	if loaded.Version != SchemaVersion {
		t.Errorf("期望版本 %d, 实际 %d", SchemaVersion, loaded.Version)
	}
	if len(loaded.Doctors) != 1 || loaded.Doctors[0].StaffID != "D001" {
		t.Errorf("医生记录丢失: %v", loaded.Doctors)
	}
	if loaded.BedOccupancy["A1-1"] != "P001" {
		t.Errorf("床位占用丢失: %v", loaded.BedOccupancy)
	}
	if len(loaded.Assignments["monday_morning"]) != 1 {
		t.Errorf("排班分配丢失: %v", loaded.Assignments)
	}
	if loaded.Timestamp.IsZero() {
		t.Error("快照应记录时间戳")
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("文件不存在不应报错: %v", err)
	}
	if snap != nil {
		t.Error("文件不存在应返回空快照")
	}
}

func TestStore_LoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	data, _ := json.Marshal(map[string]interface{}{"version": 99})
	os.WriteFile(path, data, 0644)

	_, err := NewStore(path).Load()
	if !errors.Is(err, errors.CodeSnapshotFailed) {
		t.Errorf("版本不匹配应返回 SNAPSHOT_FAILED, 实际 %v", err)
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	_, err := NewStore(path).Load()
	if !errors.Is(err, errors.CodeSnapshotFailed) {
		t.Errorf("损坏文件应返回 SNAPSHOT_FAILED, 实际 %v", err)
	}
}

func TestStore_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	store := NewStore(path)

	store.Save(&Snapshot{BedOccupancy: map[string]string{"A1-1": "P001"}})
	store.Save(&Snapshot{BedOccupancy: map[string]string{"B2-1": "P002"}})

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("快照读取失败: %v", err)
	}
	if _, ok := loaded.BedOccupancy["A1-1"]; ok {
		t.Error("二次写入应整体覆盖")
	}

	// 不残留临时文件
	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Errorf("目录应只有快照文件, 实际 %d 个文件", len(files))
	}
}
