package stats

import (
	"math"

	"hydroroute/types"
)

// TimeSteps 演算时间步长统计
//
//	Intervals 为降序的分级边界 [演算步长, 1/2, 1/4, 1/8, 1/16, 最小步长],
//	Counts[i] (i>=1) 记录落在 [Intervals[i], Intervals[i-1]] 的步数, Counts[0] 不使用。
type TimeSteps struct {
	Intervals       [types.TimeLevels]float64
	Counts          [types.TimeLevels]int
	TimeStepCount   int     // 总步数
	TrialsCount     int     // 总迭代次数
	NonConverged    int     // 未收敛步数
	MinTimeStep     float64 // 最小步长
	MaxTimeStep     float64 // 最大步长
	SteadyStateTime float64 // 稳态累计时间
	RoutingTime     float64 // 非稳态累计时间
}

// NewTimeSteps 根据演算步长与最小步长创建统计
func NewTimeSteps(routeStep, minStep float64) *TimeSteps {
	ts := &TimeSteps{}
	ts.Reset(routeStep, minStep)
	return ts
}

// Reset 重置统计并重新计算分级边界
func (ts *TimeSteps) Reset(routeStep, minStep float64) {
	*ts = TimeSteps{}
	ts.Intervals[0] = routeStep
	for i := 1; i < types.TimeLevels; i++ {
		ts.Intervals[i] = ts.Intervals[i-1] / 2
	}
	ts.Intervals[types.TimeLevels-1] = math.Min(minStep, ts.Intervals[types.TimeLevels-2])
	ts.MinTimeStep = math.Inf(1)
	ts.MaxTimeStep = 0
}

// Record 记录一个完成的时间步
func (ts *TimeSteps) Record(dt float64, trials int, converged, steady bool) {
	ts.TimeStepCount++
	ts.TrialsCount += trials
	if !converged {
		ts.NonConverged++
	}
	ts.MinTimeStep = math.Min(ts.MinTimeStep, dt)
	ts.MaxTimeStep = math.Max(ts.MaxTimeStep, dt)
	level := types.TimeLevels - 1 // 截断到报告时刻的短步归入最末一级
	for i := 1; i < types.TimeLevels; i++ {
		if dt >= ts.Intervals[i] {
			level = i
			break
		}
	}
	ts.Counts[level]++
	if steady {
		ts.SteadyStateTime += dt
	} else {
		ts.RoutingTime += dt
	}
}

// BucketTotal 直方图总数
func (ts *TimeSteps) BucketTotal() int {
	total := 0
	for i := 1; i < types.TimeLevels; i++ {
		total += ts.Counts[i]
	}
	return total
}

// AvgTimeStep 平均步长
func (ts *TimeSteps) AvgTimeStep() float64 {
	if ts.TimeStepCount == 0 {
		return 0
	}
	return (ts.RoutingTime + ts.SteadyStateTime) / float64(ts.TimeStepCount)
}

// AvgTrials 平均每步迭代次数
func (ts *TimeSteps) AvgTrials() float64 {
	if ts.TimeStepCount == 0 {
		return 0
	}
	return float64(ts.TrialsCount) / float64(ts.TimeStepCount)
}

// PctSteady 稳态时间占比(%)
func (ts *TimeSteps) PctSteady() float64 {
	total := ts.SteadyStateTime + ts.RoutingTime
	if total <= 0 {
		return 0
	}
	return math.Min(100*ts.SteadyStateTime/total, 100)
}

// PctNonConverged 未收敛步数占比(%)
func (ts *TimeSteps) PctNonConverged() float64 {
	if ts.TimeStepCount == 0 {
		return 0
	}
	return 100 * float64(ts.NonConverged) / float64(ts.TimeStepCount)
}

// MinStep 最小步长,无记录时为 0
func (ts *TimeSteps) MinStep() float64 {
	if ts.TimeStepCount == 0 {
		return 0
	}
	return ts.MinTimeStep
}
