package route

import (
	"context"
	"math"

	"hydroroute/graph"
	"hydroroute/types"
)

// Result 单个时间步的求解结果
type Result struct {
	Trials    int         // 迭代次数
	Converged bool        // 是否收敛
	Worst     *types.Node // 未收敛时水深变化最大的节点
	MaxChange float64     // 本步最大水深变化
}

// Solver 节点-连接求解器
//
//	Step 只修改管网的节点与连接状态,不触碰连续性核算。
type Solver interface {
	Init(g *graph.Graph) error
	Step(ctx context.Context, dt float64) (Result, error)
}

// SolverOptions 求解器参数
type SolverOptions struct {
	MaxTrials int
	HeadTol   float64
	Threads   int
	Omega     float64
}

// NewSolver 根据演算方法创建求解器
func NewSolver(model types.RouteModel, opt SolverOptions) Solver {
	switch model {
	case types.SteadyFlow:
		return &SteadyFlow{}
	case types.KinematicWave:
		return &KinematicWave{SolverOptions: opt}
	default:
		return &DynamicWave{SolverOptions: opt}
	}
}

// nodeInflow 节点本步的总入流:旁侧入流加各入流连接的流量
func nodeInflow(g *graph.Graph, i int) float64 {
	n := g.Nodes[i]
	q := math.Max(n.LatFlow, 0)
	for _, k := range g.InLinks[i] {
		q += math.Max(g.Links[k].Flow, 0)
	}
	for _, k := range g.OutLinks[i] {
		q += math.Max(-g.Links[k].Flow, 0)
	}
	return q
}

// nodeLosses 蒸发与渗漏,受可用水量限制
func nodeLosses(n *types.Node, avail, dt float64) {
	n.EvapLoss, n.SeepLoss = 0, 0
	if n.Type != types.Storage || dt <= 0 {
		return
	}
	evap := n.EvapRate * n.Area()
	seep := n.SeepRate * n.Area()
	if total := evap + seep; total*dt > avail && total > 0 {
		f := math.Max(avail, 0) / (total * dt)
		evap *= f
		seep *= f
	}
	n.EvapLoss, n.SeepLoss = evap, seep
}

// finite 状态值是否有效
func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
