package route

import (
	"math"

	"hydroroute/graph"
	"hydroroute/types"
)

// StepController 演算步长控制
//
//	Courant > 0 时按柯朗条件变步长,否则固定为 RouteStep。
type StepController struct {
	RouteStep float64          // 最大步长(秒)
	MinStep   float64          // 最小步长(秒)
	Courant   float64          // 柯朗系数
	Model     types.RouteModel // 演算方法
}

// Next 计算下一步长,并返回控制本步长的关键元素
//
//	remaining: 距结束时间的秒数
//	toReport:  距下一报告时刻的秒数,不大于零表示不限制
//	被报告时刻或结束时间截断的步长不记关键元素。
func (c *StepController) Next(g *graph.Graph, remaining, toReport float64) (float64, types.Element) {
	dt := c.RouteStep
	var crit types.Element
	if c.Courant > 0 {
		if t, e := c.courantStep(g); e != nil && t < dt {
			dt, crit = t, e
		}
		if dt < c.MinStep {
			dt = c.MinStep
		}
	}
	if toReport > 0 && toReport < dt {
		dt, crit = toReport, nil
	}
	if remaining < dt {
		dt, crit = remaining, nil
	}
	return dt, crit
}

// courantStep 全网最严格的稳定步长
func (c *StepController) courantStep(g *graph.Graph) (float64, types.Element) {
	best := math.Inf(1)
	var crit types.Element
	for _, l := range g.Links {
		if l.Type == types.Pump || l.Width <= 0 || l.Area <= types.FudgeDepth*l.Width {
			continue
		}
		if l.Depth >= l.Height {
			continue // 满管
		}
		celerity := math.Sqrt(types.Gravity * l.Area / l.Width)
		t := c.Courant * l.Length / (math.Abs(l.Velocity) + celerity)
		if t < best {
			best, crit = t, l
		}
	}
	if c.Model != types.DynamicWave {
		return best, crit
	}
	for _, n := range g.Nodes {
		if n.Type == types.Outfall || n.FullDepth <= 0 {
			continue
		}
		net := math.Abs(n.OldNetIn)
		if net <= types.Epsilon {
			continue
		}
		t := 0.25 * n.FullDepth * n.Area() / net
		if t < best {
			best, crit = t, n
		}
	}
	return best, crit
}
