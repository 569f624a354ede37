// Package compliance 提供合规规则评估引擎
package compliance

import (
	"fmt"
	"sync"
	"time"
)

// Sample 占用率采样点
type Sample struct {
	At   time.Time `json:"at"`
	Rate float64   `json:"rate"` // 百分比 0-100
}

// TrendAnalyzer 占用率趋势分析器
// 保留最近N个采样点，用最小二乘线性外推预测占用率走势
type TrendAnalyzer struct {
	mu         sync.Mutex
	samples    []Sample
	maxSamples int
	threshold  float64
	horizon    time.Duration
}

// NewTrendAnalyzer 创建趋势分析器
// maxSamples 为参与外推的采样窗口，horizon 为预测时限
func NewTrendAnalyzer(maxSamples int, threshold float64, horizon time.Duration) *TrendAnalyzer {
	if maxSamples < 2 {
		maxSamples = 2
	}
	return &TrendAnalyzer{
		maxSamples: maxSamples,
		threshold:  threshold,
		horizon:    horizon,
	}
}

// Record 记录一次占用率采样
func (t *TrendAnalyzer) Record(rate float64) {
	t.RecordAt(time.Now(), rate)
}

// RecordAt 按指定时刻记录采样（测试用）
func (t *TrendAnalyzer) RecordAt(at time.Time, rate float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, Sample{At: at, Rate: rate})
	if len(t.samples) > t.maxSamples {
		t.samples = t.samples[len(t.samples)-t.maxSamples:]
	}
}

// Samples 返回采样副本
func (t *TrendAnalyzer) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	result := make([]Sample, len(t.samples))
	copy(result, t.samples)
	return result
}

// Forecast 占用率预测结果
type Forecast struct {
	Current     float64    `json:"current"`
	SlopePerHr  float64    `json:"slope_per_hour"`
	Projected   float64    `json:"projected"` // 预测时限末的占用率
	WillExceed  bool       `json:"will_exceed"`
	CrossesAt   *time.Time `json:"crosses_at,omitempty"`
	SampleCount int        `json:"sample_count"`
}

// Forecast 对采样窗口做最小二乘线性外推
// 预测占用率在时限内是否越过阈值；采样不足两点时不预测
func (t *TrendAnalyzer) Forecast() *Forecast {
	t.mu.Lock()
	samples := make([]Sample, len(t.samples))
	copy(samples, t.samples)
	threshold, horizon := t.threshold, t.horizon
	t.mu.Unlock()

	if len(samples) < 2 {
		return &Forecast{SampleCount: len(samples)}
	}

	// 以首个采样为时间原点，单位小时
	origin := samples[0].At
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range samples {
		x := s.At.Sub(origin).Hours()
		sumX += x
		sumY += s.Rate
		sumXY += x * s.Rate
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	current := samples[len(samples)-1].Rate
	if denom == 0 {
		return &Forecast{Current: current, SampleCount: len(samples)}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	lastX := samples[len(samples)-1].At.Sub(origin).Hours()
	horizonX := lastX + horizon.Hours()
	projected := slope*horizonX + intercept

	f := &Forecast{
		Current:     current,
		SlopePerHr:  slope,
		Projected:   projected,
		SampleCount: len(samples),
	}

	if current > threshold {
		f.WillExceed = true
		at := samples[len(samples)-1].At
		f.CrossesAt = &at
		return f
	}

	if slope > 0 {
		crossX := (threshold - intercept) / slope
		if crossX <= horizonX {
			f.WillExceed = true
			at := origin.Add(time.Duration(crossX * float64(time.Hour)))
			f.CrossesAt = &at
		}
	}
	return f
}

// ForecastRule 占用率趋势预测规则
// 线性外推预测在时限内越过拥挤阈值时产生警告
type ForecastRule struct {
	analyzer *TrendAnalyzer
}

// NewForecastRule 创建趋势预测规则
func NewForecastRule(analyzer *TrendAnalyzer) *ForecastRule {
	return &ForecastRule{analyzer: analyzer}
}

func (r *ForecastRule) Code() string       { return CodeOccupancyForecast }
func (r *ForecastRule) Name() string       { return "占用率趋势预测" }
func (r *ForecastRule) Severity() Severity { return SeverityWarning }
func (r *ForecastRule) Quick() bool        { return false }

// Evaluate 预测占用率越线风险
func (r *ForecastRule) Evaluate(ctx *Context) []Issue {
	f := r.analyzer.Forecast()
	if !f.WillExceed {
		return nil
	}
	desc := fmt.Sprintf("占用率趋势上升（%.2f%%/小时），预测将越过拥挤阈值", f.SlopePerHr)
	if f.CrossesAt != nil {
		desc = fmt.Sprintf("%s，预计时间 %s", desc, f.CrossesAt.Format(time.RFC3339))
	}
	return []Issue{{
		Rule:        r.Code(),
		Severity:    r.Severity(),
		Description: desc,
	}}
}
