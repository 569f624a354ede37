// Package bedfinder 提供智能床位匹配引擎
package bedfinder

import (
	"fmt"
	"sort"

	"github.com/bingfang/bingfang/pkg/logger"
	"github.com/bingfang/bingfang/pkg/model"
	"github.com/bingfang/bingfang/pkg/registry"
)

// Weights 评分权重
// 权重属于可调策略而非固定算法，默认值见 DefaultWeights
type Weights struct {
	CareLevelMatch float64 `json:"care_level_match"` // 护理等级与病区专科匹配
	Mobility       float64 `json:"mobility"`         // 行动受限患者偏好近门床位
	WardBalance    float64 `json:"ward_balance"`     // 病区负载均衡
	ReservePenalty float64 `json:"reserve_penalty"`  // 非隔离患者占用隔离房的扣分
}

// DefaultWeights 返回默认评分权重
func DefaultWeights() Weights {
	return Weights{
		CareLevelMatch: 40,
		Mobility:       20,
		WardBalance:    20,
		ReservePenalty: 10,
	}
}

// Finder 床位匹配引擎
type Finder struct {
	reg     *registry.Registry
	weights Weights
	log     *logger.HospitalLogger
}

// New 创建床位匹配引擎
func New(reg *registry.Registry, weights Weights) *Finder {
	return &Finder{
		reg:     reg,
		weights: weights,
		log:     logger.NewHospitalLogger(),
	}
}

// FindRequest 床位匹配请求
type FindRequest struct {
	Profile         model.CareProfile `json:"profile"`
	MaxAlternatives int               `json:"max_alternatives,omitempty"`
}

// BedScore 候选床位评分
type BedScore struct {
	Bed          registry.BedView `json:"bed"`
	Score        float64          `json:"score"`
	Confidence   float64          `json:"confidence"` // 相对该需求最高可得分的百分比
	MatchReasons []string         `json:"match_reasons,omitempty"`
}

// FindResponse 床位匹配响应
type FindResponse struct {
	Success      bool       `json:"success"`
	BestMatch    *BedScore  `json:"best_match,omitempty"`
	Alternatives []BedScore `json:"alternatives,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// Find 为患者需求匹配最优空床
// 隔离需求是硬过滤条件；其余维度加权求和。
// 并列时按（病区、病房、床位）序号取最小，结果确定。
func (f *Finder) Find(req *FindRequest) *FindResponse {
	freeBeds := f.reg.FreeBeds()
	if len(freeBeds) == 0 {
		return &FindResponse{Success: false, Reason: "当前无空床"}
	}

	utilization := f.reg.WardUtilization()
	maxAttainable := f.maxAttainable(req.Profile)

	var scores []BedScore
	for _, bed := range freeBeds {
		// 硬过滤：隔离需求只能匹配隔离病房
		if req.Profile.NeedsIsolation && !bed.Isolation {
			continue
		}
		scores = append(scores, f.scoreBed(bed, req.Profile, utilization, maxAttainable))
	}

	if len(scores) == 0 {
		return &FindResponse{Success: false, Reason: "无满足隔离条件的空床"}
	}

	// 分数降序；FreeBeds 已按层级序号排序，稳定排序保证并列时取序号最小者
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	maxAlternatives := req.MaxAlternatives
	if maxAlternatives <= 0 {
		maxAlternatives = 3
	}

	resp := &FindResponse{
		Success:   true,
		BestMatch: &scores[0],
	}
	if len(scores) > 1 {
		n := len(scores) - 1
		if n > maxAlternatives {
			n = maxAlternatives
		}
		resp.Alternatives = scores[1 : 1+n]
	}
	return resp
}

// maxAttainable 计算该需求下的最高可得分（不适用的维度不计入）
func (f *Finder) maxAttainable(profile model.CareProfile) float64 {
	max := f.weights.CareLevelMatch + f.weights.WardBalance
	if profile.Mobility.IsLimited() {
		max += f.weights.Mobility
	}
	return max
}

// scoreBed 计算单张床位的适配得分
func (f *Finder) scoreBed(bed registry.BedView, profile model.CareProfile, utilization map[string]float64, maxAttainable float64) BedScore {
	var score float64
	var reasons []string

	// 护理等级与病区专科匹配：B区重症，A区普通
	affinity := wardAffinity(bed.WardType, profile.CareLevel)
	score += f.weights.CareLevelMatch * affinity
	if affinity >= 0.75 {
		reasons = append(reasons, fmt.Sprintf("护理等级%d与%s病区匹配", profile.CareLevel, bed.WardCode))
	}

	// 行动受限患者偏好近门床位（床位序号小的靠近房门）
	if profile.Mobility.IsLimited() {
		proximity := 1.0 / float64(1+bed.BedIndex)
		score += f.weights.Mobility * proximity
		if bed.BedIndex == 0 {
			reasons = append(reasons, "近门床位，便于行动受限患者")
		}
	}

	// 病区负载均衡：偏好占用率低的病区
	load := utilization[bed.WardCode]
	score += f.weights.WardBalance * (1 - load)
	if load < 0.5 {
		reasons = append(reasons, fmt.Sprintf("%s当前负载较低", bed.WardCode))
	}

	// 隔离房留给隔离需求：非隔离患者占用隔离房扣分
	if bed.Isolation && !profile.NeedsIsolation {
		score -= f.weights.ReservePenalty
	}
	if bed.Isolation && profile.NeedsIsolation {
		reasons = append(reasons, "满足隔离要求")
	}

	if score < 0 {
		score = 0
	}

	confidence := 0.0
	if maxAttainable > 0 {
		confidence = score * 100.0 / maxAttainable
		if confidence > 100 {
			confidence = 100
		}
	}

	return BedScore{
		Bed:          bed,
		Score:        score,
		Confidence:   confidence,
		MatchReasons: reasons,
	}
}

// wardAffinity 计算护理等级对病区类型的亲和度 (0-1)
func wardAffinity(wardType model.WardType, level model.CareLevel) float64 {
	// 等级1→0，等级2→0.5，等级3→1
	intensity := float64(level-model.CareLevelLow) / float64(model.CareLevelHigh-model.CareLevelLow)
	if wardType == model.WardIntensive {
		return intensity
	}
	return 1 - intensity
}
