package types

import "sort"

// SeriesPoint 时间序列点(相对开始时间的秒数,值)
type SeriesPoint struct {
	Time  float64
	Value float64
}

// Inflow 节点入流来源,代替径流、地下水和RDII生成模块
type Inflow struct {
	Node     int            // 节点索引
	Category InflowCategory // 入流分类
	Baseline float64        // 基流 (m³/s)
	Series   []SeriesPoint  // 叠加的时间序列,按时间升序
	Quality  []float64      // 各污染物浓度
	Temp     float64        // 水温
}

// FlowAt 指定时刻(秒)的入流量,序列之外取端点值
func (in *Inflow) FlowAt(t float64) float64 {
	return in.Baseline + Interpolate(in.Series, t)
}

// Interpolate 时间序列线性插值,不外推
func Interpolate(series []SeriesPoint, t float64) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	if t <= series[0].Time {
		return series[0].Value
	}
	if t >= series[n-1].Time {
		return series[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return series[i].Time > t })
	p0, p1 := series[i-1], series[i]
	dt := p1.Time - p0.Time
	if dt <= 0 {
		return p1.Value
	}
	f := (t - p0.Time) / dt
	return p0.Value + f*(p1.Value-p0.Value)
}
