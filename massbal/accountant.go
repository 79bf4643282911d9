package massbal

import (
	"math"

	"hydroroute/types"
)

// Budget 单个物理量在一个时间步内的收支
type Budget struct {
	Inflow   [types.NumInflowCategory]float64
	Outflow  float64
	Flooding float64
	Evap     float64
	Seep     float64
	Reacted  float64
}

// StepBudget 一个时间步内流量、各污染物和水温的收支
type StepBudget struct {
	Flow Budget
	Qual []Budget
	Temp Budget
	pol  []*types.Pollutant
}

// NewStepBudget 创建步收支
func NewStepBudget(pollutants []*types.Pollutant) *StepBudget {
	return &StepBudget{Qual: make([]Budget, len(pollutants)), pol: pollutants}
}

// Reset 清零
func (sb *StepBudget) Reset() {
	sb.Flow = Budget{}
	sb.Temp = Budget{}
	for i := range sb.Qual {
		sb.Qual[i] = Budget{}
	}
}

// mass 浓度随流量在 dt 内携带的负荷
func (sb *StepBudget) mass(p int, q, c, dt float64) float64 {
	return q * c * dt * sb.pol[p].Units.MassFactor()
}

// AddInflow 累加入流及其携带的水质水温
func (sb *StepBudget) AddInflow(cat types.InflowCategory, q float64, qual []float64, temp, dt float64) {
	if q <= 0 {
		return
	}
	sb.Flow.Inflow[cat] += q * dt
	for p := range sb.Qual {
		if p < len(qual) {
			sb.Qual[p].Inflow[cat] += sb.mass(p, q, qual[p], dt)
		}
	}
	sb.Temp.Inflow[cat] += q * temp * dt
}

// AddOutflow 累加系统出流
func (sb *StepBudget) AddOutflow(q float64, qual []float64, temp, dt float64) {
	if q <= 0 {
		return
	}
	sb.Flow.Outflow += q * dt
	for p := range sb.Qual {
		sb.Qual[p].Outflow += sb.mass(p, q, qual[p], dt)
	}
	sb.Temp.Outflow += q * temp * dt
}

// AddFlooding 累加溢流损失
func (sb *StepBudget) AddFlooding(q float64, qual []float64, temp, dt float64) {
	if q <= 0 {
		return
	}
	sb.Flow.Flooding += q * dt
	for p := range sb.Qual {
		sb.Qual[p].Flooding += sb.mass(p, q, qual[p], dt)
	}
	sb.Temp.Flooding += q * temp * dt
}

// AddEvap 累加蒸发损失,蒸发不带走污染物
func (sb *StepBudget) AddEvap(q, temp, dt float64) {
	if q <= 0 {
		return
	}
	sb.Flow.Evap += q * dt
	sb.Temp.Evap += q * temp * dt
}

// AddSeep 累加渗漏损失
func (sb *StepBudget) AddSeep(q float64, qual []float64, temp, dt float64) {
	if q <= 0 {
		return
	}
	sb.Flow.Seep += q * dt
	for p := range sb.Qual {
		sb.Qual[p].Seep += sb.mass(p, q, qual[p], dt)
	}
	sb.Temp.Seep += q * temp * dt
}

// AddReacted 累加反应损失,mass 为浓度×体积
func (sb *StepBudget) AddReacted(p int, cv float64) {
	sb.Qual[p].Reacted += cv * sb.pol[p].Units.MassFactor()
}

// Accountant 连续性核算,每次运行一个实例
type Accountant struct {
	Flow       Totals
	Qual       []Totals
	Temp       Totals
	TempActive bool
	pol        []*types.Pollutant
}

// NewAccountant 创建核算器
func NewAccountant(net *types.Network) *Accountant {
	a := &Accountant{}
	a.Reset(net)
	return a
}

// Reset 运行开始时重置并记录初始蓄量
func (a *Accountant) Reset(net *types.Network) {
	a.pol = net.Pollutants
	a.Flow = Totals{}
	a.Temp = Totals{}
	a.Qual = make([]Totals, net.NumPollutants())
	a.TempActive = net.Temperature.Active
	a.Flow.InitStorage = net.Volume()
	for p := range a.Qual {
		a.Qual[p].InitStorage = storedMass(net, p)
	}
	a.Temp.InitStorage = storedHeat(net)
}

// Add 累加一个完成时间步的收支
func (a *Accountant) Add(sb *StepBudget) {
	addBudget(&a.Flow, &sb.Flow)
	for p := range a.Qual {
		addBudget(&a.Qual[p], &sb.Qual[p])
	}
	addBudget(&a.Temp, &sb.Temp)
}

func addBudget(t *Totals, b *Budget) {
	for cat, v := range b.Inflow {
		t.AddInflow(types.InflowCategory(cat), v)
	}
	t.Outflow += b.Outflow
	t.Flooding += b.Flooding
	t.EvapLoss += b.Evap
	t.SeepLoss += b.Seep
	t.Reacted += b.Reacted
}

// AddNodeFlows 累加各节点本步的进出体积
func (a *Accountant) AddNodeFlows(net *types.Network, dt float64) {
	for _, n := range net.Nodes {
		n.Stats.InflowVol += n.Inflow * dt
		n.Stats.OutflowVol += (n.Outflow + n.Overflow + n.EvapLoss + n.SeepLoss) * dt
		n.Stats.FloodVol += n.Overflow * dt
		n.Stats.MaxDepth = math.Max(n.Stats.MaxDepth, n.Depth)
	}
}

// Finalize 运行结束时记录最终蓄量并推导各项误差
func (a *Accountant) Finalize(net *types.Network) {
	a.Flow.FinalStorage = net.Volume()
	a.Flow.Finalize()
	for p := range a.Qual {
		a.Qual[p].FinalStorage = storedMass(net, p)
		a.Qual[p].Finalize()
	}
	a.Temp.FinalStorage = storedHeat(net)
	a.Temp.Finalize()
	for _, n := range net.Nodes {
		in := n.Stats.InflowVol + n.Stats.InitVolume
		out := n.Stats.OutflowVol + n.Volume
		if n.Type == types.Outfall {
			out = n.Stats.OutflowVol
		}
		n.Stats.MassBalanceErr = PercentError(in, out)
	}
}

func storedMass(net *types.Network, p int) float64 {
	f := net.Pollutants[p].Units.MassFactor()
	m := 0.0
	for _, n := range net.Nodes {
		if n.Type != types.Outfall {
			m += n.Volume * n.Qual[p] * f
		}
	}
	for _, l := range net.Links {
		m += l.Volume * l.Qual[p] * f
	}
	return m
}

func storedHeat(net *types.Network) float64 {
	h := 0.0
	for _, n := range net.Nodes {
		if n.Type != types.Outfall {
			h += n.Volume * n.Temp
		}
	}
	for _, l := range net.Links {
		h += l.Volume * l.Temp
	}
	return h
}
