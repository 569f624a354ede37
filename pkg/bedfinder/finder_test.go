package bedfinder

import (
	"fmt"
	"testing"

	"github.com/bingfang/bingfang/pkg/model"
	"github.com/bingfang/bingfang/pkg/registry"
)

func newFinder() (*Finder, *registry.Registry) {
	reg := registry.New(registry.DefaultLayout())
	return New(reg, DefaultWeights()), reg
}

func TestFinder_Find_IsolationHardFilter(t *testing.T) {
	finder, _ := newFinder()

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition:      "肺结核",
			NeedsIsolation: true,
			CareLevel:      model.CareLevelMedium,
			Mobility:       model.MobilityIndependent,
		},
	})

	if !resp.Success {
		t.Fatalf("隔离床位充足时匹配应成功: %s", resp.Reason)
	}
	if !resp.BestMatch.Bed.Isolation {
		t.Errorf("隔离患者必须匹配隔离床位, 实际 %s", resp.BestMatch.Bed.BedID)
	}
	for _, alt := range resp.Alternatives {
		if !alt.Bed.Isolation {
			t.Errorf("备选床位 %s 不满足隔离条件", alt.Bed.BedID)
		}
	}
}

func TestFinder_Find_NoIsolationBeds(t *testing.T) {
	finder, reg := newFinder()

	// 占满全部隔离床位：A1(2床) A3(1床) B1(3床) B4(1床)
	for i, bedID := range []string{"A1-1", "A1-2", "A3-1", "B1-1", "B1-2", "B1-3", "B4-1"} {
		if err := reg.Occupy(bedID, fmt.Sprintf("P%03d", i+1)); err != nil {
			t.Fatalf("占用 %s 失败: %v", bedID, err)
		}
	}

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition:      "肺结核",
			NeedsIsolation: true,
			CareLevel:      model.CareLevelMedium,
			Mobility:       model.MobilityIndependent,
		},
	})

	if resp.Success {
		t.Errorf("隔离床位耗尽时应匹配失败, 实际分配 %s", resp.BestMatch.Bed.BedID)
	}
	if resp.Reason == "" {
		t.Error("失败响应应给出原因")
	}
}

func TestFinder_Find_HighCareLevelPrefersIntensive(t *testing.T) {
	finder, _ := newFinder()

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition: "心衰",
			CareLevel: model.CareLevelHigh,
			Mobility:  model.MobilityIndependent,
		},
	})

	if !resp.Success {
		t.Fatalf("匹配失败: %s", resp.Reason)
	}
	if resp.BestMatch.Bed.WardCode != "WARD_B" {
		t.Errorf("重症护理患者应优先B区, 实际 %s", resp.BestMatch.Bed.WardCode)
	}
}

func TestFinder_Find_LimitedMobilityPrefersNearDoor(t *testing.T) {
	finder, _ := newFinder()

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition: "骨折",
			CareLevel: model.CareLevelLow,
			Mobility:  model.MobilityBedridden,
		},
	})

	if !resp.Success {
		t.Fatalf("匹配失败: %s", resp.Reason)
	}
	if resp.BestMatch.Bed.BedIndex != 0 {
		t.Errorf("卧床患者应匹配近门床位（序号0）, 实际序号 %d", resp.BestMatch.Bed.BedIndex)
	}
}

func TestFinder_Find_Deterministic(t *testing.T) {
	profile := model.CareProfile{
		Condition: "肺炎",
		CareLevel: model.CareLevelMedium,
		Mobility:  model.MobilityIndependent,
	}

	finder, _ := newFinder()
	first := finder.Find(&FindRequest{Profile: profile})
	for i := 0; i < 5; i++ {
		f, _ := newFinder()
		resp := f.Find(&FindRequest{Profile: profile})
		if resp.BestMatch.Bed.BedID != first.BestMatch.Bed.BedID {
			t.Fatalf("相同状态下匹配结果应确定: %s vs %s",
				first.BestMatch.Bed.BedID, resp.BestMatch.Bed.BedID)
		}
	}
}

func TestFinder_Find_MaxAlternatives(t *testing.T) {
	finder, _ := newFinder()

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition: "肺炎",
			CareLevel: model.CareLevelMedium,
			Mobility:  model.MobilityIndependent,
		},
		MaxAlternatives: 5,
	})

	if !resp.Success {
		t.Fatalf("匹配失败: %s", resp.Reason)
	}
	if len(resp.Alternatives) != 5 {
		t.Errorf("期望5个备选, 实际 %d", len(resp.Alternatives))
	}
}

func TestFinder_Find_ConfidenceRange(t *testing.T) {
	finder, _ := newFinder()

	resp := finder.Find(&FindRequest{
		Profile: model.CareProfile{
			Condition: "肺炎",
			CareLevel: model.CareLevelLow,
			Mobility:  model.MobilityAssisted,
		},
	})

	if !resp.Success {
		t.Fatalf("匹配失败: %s", resp.Reason)
	}
	c := resp.BestMatch.Confidence
	if c < 0 || c > 100 {
		t.Errorf("置信度应在0-100之间, 实际 %.2f", c)
	}
}

func TestWaitingList_FIFO(t *testing.T) {
	w := NewWaitingList()

	for _, id := range []string{"P001", "P002", "P003"} {
		w.Enqueue(model.PatientConfig{PatientID: id})
	}
	if w.Len() != 3 {
		t.Fatalf("期望3人等候, 实际 %d", w.Len())
	}

	head, ok := w.Peek()
	if !ok || head.Config.PatientID != "P001" {
		t.Errorf("队首应为 P001")
	}
	if w.Len() != 3 {
		t.Error("Peek 不应出队")
	}

	for _, expected := range []string{"P001", "P002", "P003"} {
		entry, ok := w.Dequeue()
		if !ok || entry.Config.PatientID != expected {
			t.Errorf("出队顺序错误, 期望 %s", expected)
		}
	}

	if _, ok := w.Dequeue(); ok {
		t.Error("空队列出队应返回 false")
	}
}

func TestWaitingList_Entries(t *testing.T) {
	w := NewWaitingList()
	w.Enqueue(model.PatientConfig{PatientID: "P001"})

	entries := w.Entries()
	if len(entries) != 1 || entries[0].Config.PatientID != "P001" {
		t.Fatalf("等候列表错误: %v", entries)
	}
	if entries[0].EnqueuedAt.IsZero() {
		t.Error("入队时间应被记录")
	}
}
