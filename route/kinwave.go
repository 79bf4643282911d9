package route

import (
	"context"
	"math"

	"hydroroute/graph"
	"hydroroute/types"
)

// KinematicWave 运动波演算,连接按拓扑顺序逐个求解储量方程
//
//	L(A-Aold)/dt = Qin - β·A·R(A)^(2/3)
type KinematicWave struct {
	SolverOptions
	g     *graph.Graph
	order []int
}

// Init 初始化
func (kw *KinematicWave) Init(g *graph.Graph) (err error) {
	kw.g = g
	if kw.order, err = g.NodeOrder(); err != nil {
		return err
	}
	for _, l := range g.Links {
		l.SetArea(normalArea(l, l.Flow))
		l.SaveOld()
	}
	return nil
}

// Step 推进一步
func (kw *KinematicWave) Step(_ context.Context, dt float64) (Result, error) {
	res := Result{Converged: true}
	worst := -1.0
	for _, i := range kw.order {
		n := kw.g.Nodes[i]
		q := nodeInflow(kw.g, i)
		n.Inflow = q
		n.EvapLoss, n.SeepLoss = 0, 0
		if n.Degree == 0 {
			n.Outflow, n.Overflow = q, 0
			continue
		}
		flows, excess := splitFlow(kw.g, i, q)
		n.Outflow, n.Overflow = q-excess, excess
		for j, k := range kw.g.OutLinks[i] {
			l := kw.g.Links[k]
			trials, ok := kw.solveLink(l, flows[j], dt)
			res.Trials = max(res.Trials, trials)
			change := math.Abs(l.Depth - l.DepthAt(l.OldArea))
			res.MaxChange = math.Max(res.MaxChange, change)
			if !ok {
				res.Converged = false
				if change > worst {
					worst, res.Worst = change, n
				}
			}
		}
	}
	if res.Trials == 0 {
		res.Trials = 1
	}
	return res, nil
}

// solveLink 牛顿法求解单个连接的过流面积,出流由储量差反推以保证守恒
func (kw *KinematicWave) solveLink(l *types.Link, qin, dt float64) (int, bool) {
	if l.Type == types.Pump || dt <= 0 {
		l.Flow = math.Min(qin, linkCapacity(l))
		l.SetArea(0)
		return 1, true
	}
	c := l.Length / dt
	aFull := l.FullArea()
	a := l.OldArea
	if a <= 0 {
		a = normalArea(l, qin)
	}
	tol := kw.HeadTol * math.Max(l.Width, types.FudgeDepth)
	converged := false
	trials := 0
	for trials < kw.MaxTrials {
		trials++
		f := c*(a-l.OldArea) + l.ManningFlow(a) - qin
		da := math.Max(a*1e-4, 1e-8)
		df := c + (l.ManningFlow(a+da)-l.ManningFlow(a))/da
		if df <= 0 {
			break
		}
		step := f / df
		a = clamp(a-step, 0, aFull)
		if math.Abs(step) < tol {
			converged = true
			break
		}
	}
	q := qin - c*(a-l.OldArea)
	if q < 0 {
		q = 0
		a = l.OldArea + qin/c
	}
	l.Flow = q
	l.SetArea(a)
	return trials, converged
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
