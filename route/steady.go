package route

import (
	"context"
	"math"

	"hydroroute/graph"
	"hydroroute/types"
)

// SteadyFlow 恒定流演算:连接出流等于入流,超过满管能力的部分为溢流
type SteadyFlow struct {
	g     *graph.Graph
	order []int
}

// Init 初始化
func (s *SteadyFlow) Init(g *graph.Graph) (err error) {
	s.g = g
	if s.order, err = g.NodeOrder(); err != nil {
		return err
	}
	for _, l := range g.Links {
		setNormalFlow(l, l.Flow)
	}
	return nil
}

// Step 按拓扑顺序推进一步
func (s *SteadyFlow) Step(_ context.Context, _ float64) (Result, error) {
	for _, i := range s.order {
		n := s.g.Nodes[i]
		q := nodeInflow(s.g, i)
		n.Inflow = q
		n.EvapLoss, n.SeepLoss = 0, 0
		if n.Degree == 0 {
			n.Outflow, n.Overflow = q, 0
			continue
		}
		flows, excess := splitFlow(s.g, i, q)
		for j, k := range s.g.OutLinks[i] {
			setNormalFlow(s.g.Links[k], flows[j])
		}
		n.Outflow, n.Overflow = q-excess, excess
	}
	return Result{Trials: 1, Converged: true}, nil
}

// setNormalFlow 按均匀流设置连接状态,恒定流不计管道蓄量
func setNormalFlow(l *types.Link, q float64) {
	l.Flow = q
	if l.Type == types.Pump {
		l.SetArea(0)
		return
	}
	l.SetArea(normalArea(l, q))
	l.Volume = 0
}

// splitFlow 把节点流量分配到各出流连接,返回各连接流量与无法排出的溢流
func splitFlow(g *graph.Graph, i int, q float64) ([]float64, float64) {
	out := g.OutLinks[i]
	flows := make([]float64, len(out))
	if len(out) == 0 || q <= 0 {
		return flows, math.Max(q, 0)
	}
	n := g.Nodes[i]
	if n.Type == types.Divider && len(out) > 1 {
		share := n.DividerShare
		if share <= 0 || share > 1 {
			share = 0.5
		}
		flows[0] = q * share
		rest := q * (1 - share) / float64(len(out)-1)
		for j := 1; j < len(out); j++ {
			flows[j] = rest
		}
	} else {
		total := 0.0
		for _, k := range out {
			total += linkCapacity(g.Links[k])
		}
		for j, k := range out {
			if total > 0 {
				flows[j] = q * linkCapacity(g.Links[k]) / total
			} else {
				flows[j] = q / float64(len(out))
			}
		}
	}
	excess := 0.0
	for j, k := range out {
		if c := linkCapacity(g.Links[k]); flows[j] > c {
			excess += flows[j] - c
			flows[j] = c
		}
	}
	return flows, excess
}

// linkCapacity 连接最大输水能力
func linkCapacity(l *types.Link) float64 {
	if l.Type == types.Pump {
		return l.PumpRate * l.Setting
	}
	return l.FullFlow
}

// normalArea 二分法求均匀流过流面积
func normalArea(l *types.Link, q float64) float64 {
	if q <= 0 || l.Beta <= 0 {
		return 0
	}
	hi := l.FullArea() * 0.999
	if q >= l.ManningFlow(hi) {
		return l.FullArea()
	}
	lo := 0.0
	for range 50 {
		mid := (lo + hi) / 2
		if l.ManningFlow(mid) < q {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
