package route

import (
	"time"

	"hydroroute/massbal"
	"hydroroute/types"
)

// ExternalInflows 外部提供的节点入流,如路由接口文件
type ExternalInflows interface {
	Advance(now time.Time) error
	ForEach(fn func(node int, flow float64, qual []float64, temp float64))
}

// OutletWriter 在报告时刻保存出口节点结果
type OutletWriter interface {
	Save(now time.Time) error
}

// lateral 本步各节点的旁侧入流及其携带的负荷
type lateral struct {
	flow []float64   // 流量
	flux [][]float64 // 各污染物 流量×浓度
	heat []float64   // 流量×水温
}

func newLateral(nodes, polluts int) *lateral {
	lat := &lateral{
		flow: make([]float64, nodes),
		flux: make([][]float64, nodes),
		heat: make([]float64, nodes),
	}
	for i := range lat.flux {
		lat.flux[i] = make([]float64, polluts)
	}
	return lat
}

func (lat *lateral) reset() {
	clear(lat.flow)
	clear(lat.heat)
	for _, f := range lat.flux {
		clear(f)
	}
}

func (lat *lateral) add(node int, q float64, qual []float64, temp float64) {
	lat.flow[node] += q
	for p := range lat.flux[node] {
		if p < len(qual) {
			lat.flux[node][p] += q * qual[p]
		}
	}
	lat.heat[node] += q * temp
}

// total 全网旁侧入流合计
func (lat *lateral) total() float64 {
	sum := 0.0
	for _, q := range lat.flow {
		sum += q
	}
	return sum
}

// assembleInflows 汇总 t 时刻的全部入流来源,写入节点旁侧入流并计入步收支
func (r *Router) assembleInflows(now time.Time, dt float64) error {
	r.lat.reset()
	t := now.Sub(r.Settings.Start).Seconds()
	for _, src := range r.Net.Inflows {
		if src.Node < 0 || src.Node >= len(r.Net.Nodes) {
			continue
		}
		q := src.FlowAt(t)
		if q <= 0 {
			continue
		}
		r.lat.add(src.Node, q, src.Quality, src.Temp)
		r.budget.AddInflow(src.Category, q, src.Quality, src.Temp, dt)
	}
	if r.Inflows != nil {
		if err := r.Inflows.Advance(now); err != nil {
			return err
		}
		r.Inflows.ForEach(func(node int, q float64, qual []float64, temp float64) {
			if node < 0 || node >= len(r.Net.Nodes) || q <= 0 {
				return
			}
			r.lat.add(node, q, qual, temp)
			r.budget.AddInflow(types.External, q, qual, temp, dt)
		})
	}
	for i, n := range r.Net.Nodes {
		n.LatFlow = r.lat.flow[i]
	}
	return nil
}

// addLosses 计入本步的出流、溢流、蒸发与渗漏
func (r *Router) addLosses(dt float64, sb *massbal.StepBudget) {
	for i, n := range r.Net.Nodes {
		if r.Graph.IsOutlet(i, r.Settings.RouteModel) {
			sb.AddOutflow(n.Outflow, n.Qual, n.Temp, dt)
		}
		sb.AddFlooding(n.Overflow, n.Qual, n.Temp, dt)
		sb.AddEvap(n.EvapLoss, n.Temp, dt)
		sb.AddSeep(n.SeepLoss, n.Qual, n.Temp, dt)
	}
}
