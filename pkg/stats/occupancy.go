// Package stats 提供院务统计分析功能
package stats

import (
	"github.com/bingfang/bingfang/pkg/registry"
)

// OccupancyMetrics 床位占用指标
type OccupancyMetrics struct {
	TotalBeds     int     `json:"total_beds"`
	OccupiedBeds  int     `json:"occupied_beds"`
	FreeBeds      int     `json:"free_beds"`
	OccupancyRate float64 `json:"occupancy_rate"` // 百分比 0-100

	WardOccupancy map[string]WardOccupancy `json:"ward_occupancy"` // 各病区占用情况
	IsolationFree int                      `json:"isolation_free"` // 空余隔离床位数
}

// WardOccupancy 单病区占用情况
type WardOccupancy struct {
	WardCode      string  `json:"ward_code"`
	TotalBeds     int     `json:"total_beds"`
	OccupiedBeds  int     `json:"occupied_beds"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// AnalyzeOccupancy 对床位视图集合做占用分析
func AnalyzeOccupancy(beds []registry.BedView) *OccupancyMetrics {
	metrics := &OccupancyMetrics{
		WardOccupancy: make(map[string]WardOccupancy),
	}

	for _, bed := range beds {
		metrics.TotalBeds++
		wo := metrics.WardOccupancy[bed.WardCode]
		wo.WardCode = bed.WardCode
		wo.TotalBeds++

		if bed.Occupied {
			metrics.OccupiedBeds++
			wo.OccupiedBeds++
		} else {
			metrics.FreeBeds++
			if bed.Isolation {
				metrics.IsolationFree++
			}
		}
		metrics.WardOccupancy[bed.WardCode] = wo
	}

	for code, wo := range metrics.WardOccupancy {
		if wo.TotalBeds > 0 {
			wo.OccupancyRate = float64(wo.OccupiedBeds) / float64(wo.TotalBeds) * 100
		}
		metrics.WardOccupancy[code] = wo
	}

	if metrics.TotalBeds > 0 {
		metrics.OccupancyRate = float64(metrics.OccupiedBeds) / float64(metrics.TotalBeds) * 100
	}
	return metrics
}
