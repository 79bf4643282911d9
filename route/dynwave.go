package route

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"hydroroute/graph"
	"hydroroute/types"
)

// DynamicWave 动力波隐式迭代求解
//
//	每次迭代: 连接动量方程求流量 -> 节点连续性残差与雅可比 -> Cholesky 求解水深修正。
//	排放口为边界条件,不进入矩阵。
type DynamicWave struct {
	SolverOptions
	g     *graph.Graph
	row   []int // 节点 -> 矩阵行,排放口为 -1
	nodes []int // 矩阵行 -> 节点

	data []float64     // 雅可比上三角存储
	jac  *mat.SymDense // 雅可比
	rhs  *mat.VecDense // 负残差
	dy   *mat.VecDense // 水深修正
	chol mat.Cholesky

	surf []float64 // 各行本次迭代的自由水面面积
	net  []float64 // 各行本次迭代的净入流
}

// Init 建立行号映射并分配矩阵
func (dw *DynamicWave) Init(g *graph.Graph) error {
	dw.g = g
	dw.row = make([]int, len(g.Nodes))
	dw.nodes = dw.nodes[:0]
	for i, n := range g.Nodes {
		dw.row[i] = -1
		if n.Type != types.Outfall {
			dw.row[i] = len(dw.nodes)
			dw.nodes = append(dw.nodes, i)
		}
	}
	m := len(dw.nodes)
	dw.surf = make([]float64, m)
	dw.net = make([]float64, m)
	if m > 0 {
		dw.data = make([]float64, m*m)
		dw.jac = mat.NewSymDense(m, dw.data)
		dw.rhs = mat.NewVecDense(m, nil)
		dw.dy = mat.NewVecDense(m, nil)
	}
	dw.setBoundaries()
	for _, l := range g.Links {
		dw.syncLink(l)
		l.SaveOld()
	}
	return nil
}

// Step 推进一步
func (dw *DynamicWave) Step(_ context.Context, dt float64) (Result, error) {
	res := Result{}
	if dt <= 0 {
		return Result{Trials: 1, Converged: true}, nil
	}
	worst := -1
	for trial := 0; trial < dw.MaxTrials; trial++ {
		res.Trials = trial + 1
		dw.setBoundaries()
		if err := parallel(dw.Threads, len(dw.g.Links), func(lo, hi int) error {
			for k := lo; k < hi; k++ {
				dw.linkFlow(dw.g.Links[k], dt, trial)
			}
			return nil
		}); err != nil {
			return res, err
		}
		if dw.jac == nil {
			dw.nodeFlows()
			res.Converged = true
			break
		}
		clear(dw.data)
		if err := parallel(dw.Threads, len(dw.g.Nodes), func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				dw.assemble(i, dt)
			}
			return nil
		}); err != nil {
			return res, err
		}
		if !dw.solve() {
			if worst < 0 {
				worst = dw.worstResidual()
			}
			break
		}
		maxChange, w := dw.update(dt, trial)
		worst = w
		if maxChange < dw.HeadTol {
			res.Converged = true
			break
		}
	}
	for _, l := range dw.g.Links {
		dw.syncLink(l)
	}
	for _, n := range dw.g.Nodes {
		res.MaxChange = math.Max(res.MaxChange, math.Abs(n.Depth-n.OldDepth))
	}
	if !res.Converged && worst >= 0 && len(dw.nodes) > 0 {
		res.Worst = dw.g.Nodes[dw.nodes[worst]]
	}
	return res, nil
}

// endDepths 连接两端水深
func (dw *DynamicWave) endDepths(l *types.Link) (y1, y2 float64) {
	n1, n2 := dw.g.Nodes[l.Node1], dw.g.Nodes[l.Node2]
	y1 = clamp(n1.Head-(n1.Invert+l.Offset1), 0, l.Height)
	y2 = clamp(n2.Head-(n2.Invert+l.Offset2), 0, l.Height)
	return
}

// syncLink 根据两端水深更新过流面积,不改变流量
func (dw *DynamicWave) syncLink(l *types.Link) {
	if l.Type == types.Pump {
		l.SetArea(0)
		return
	}
	y1, y2 := dw.endDepths(l)
	l.SetArea(l.AreaAt((y1 + y2) / 2))
}

// linkFlow 动量方程求连接流量
//
//	Q = (Qold - g·A·dt·(H2-H1)/L) / (1 + g·n²·|Q|·dt / (A·R^(4/3)))
func (dw *DynamicWave) linkFlow(l *types.Link, dt float64, trial int) {
	last := l.Flow
	y1, y2 := dw.endDepths(l)
	if l.Type == types.Pump {
		q := 0.0
		if y1 > types.FudgeDepth {
			q = l.PumpRate * l.Setting
		}
		l.Flow, l.Dqdh = q, 0
		l.SetArea(0)
		return
	}
	y := (y1 + y2) / 2
	a := l.AreaAt(y)
	if a <= types.FudgeDepth*l.Width {
		l.Flow, l.Dqdh = 0, 0
		l.SetArea(a)
		return
	}
	n1, n2 := dw.g.Nodes[l.Node1], dw.g.Nodes[l.Node2]
	h1 := n1.Invert + l.Offset1 + y1
	h2 := n2.Invert + l.Offset2 + y2
	r := l.HydRadius(y)
	denom := 1.0
	if r > 0 {
		denom += types.Gravity * l.Roughness * l.Roughness * math.Abs(last) * dt / (a * math.Pow(r, 4.0/3.0))
	}
	c := types.Gravity * a * dt / l.Length
	q := (l.OldFlow - c*(h2-h1)) / denom
	if trial > 0 {
		q = dw.Omega*q + (1-dw.Omega)*last
	}
	if !finite(q) {
		q, denom = last, math.Inf(1)
	}
	l.Flow = q
	l.Dqdh = c / denom
	l.SetArea(a)
}

// nodeSums 节点的入流与出流合计
func (dw *DynamicWave) nodeSums(i int) (in, out float64) {
	in = math.Max(dw.g.Nodes[i].LatFlow, 0)
	for _, k := range dw.g.InLinks[i] {
		if q := dw.g.Links[k].Flow; q > 0 {
			in += q
		} else {
			out -= q
		}
	}
	for _, k := range dw.g.OutLinks[i] {
		if q := dw.g.Links[k].Flow; q > 0 {
			out += q
		} else {
			in -= q
		}
	}
	return
}

// nodeFlows 仅更新节点进出流量,用于没有待求节点的管网
func (dw *DynamicWave) nodeFlows() {
	for i, n := range dw.g.Nodes {
		n.Inflow, n.Outflow = dw.nodeSums(i)
		if n.Type == types.Outfall {
			n.Outflow = math.Max(n.Inflow, n.Outflow)
		}
	}
}

// assemble 计算节点残差并写入雅可比的对角元与上三角元
func (dw *DynamicWave) assemble(i int, dt float64) {
	n := dw.g.Nodes[i]
	n.Inflow, n.Outflow = dw.nodeSums(i)
	r := dw.row[i]
	if r < 0 {
		n.Outflow = math.Max(n.Inflow, n.Outflow)
		return
	}
	nodeLosses(n, n.OldVolume+n.Inflow*dt, dt)
	m := len(dw.nodes)
	as := n.Area()
	diag := 0.0
	for _, k := range dw.g.Incident(i) {
		l := dw.g.Links[k]
		if l.Type == types.Pump {
			continue
		}
		if l.Depth < l.Height {
			as += l.Width * l.Length / 2
		}
		diag += l.Dqdh / 2
		other := l.Node1
		if other == i {
			other = l.Node2
		}
		if rj := dw.row[other]; rj > r {
			dw.data[r*m+rj] -= l.Dqdh / 2
		}
	}
	net := n.NetInflow()
	dw.surf[r], dw.net[r] = as, net
	dw.data[r*m+r] = as/dt + diag
	resid := as*(n.Depth-n.OldDepth)/dt - (n.OldNetIn+net)/2
	dw.rhs.SetVec(r, -resid)
}

// solve Cholesky 分解求水深修正,矩阵非正定时退化为对角求解
func (dw *DynamicWave) solve() bool {
	m := len(dw.nodes)
	if ok := dw.chol.Factorize(dw.jac); ok {
		if err := dw.chol.SolveVecTo(dw.dy, dw.rhs); err == nil {
			return dw.finiteCorrection()
		}
	}
	for r := range m {
		d := dw.data[r*m+r]
		if d == 0 {
			d = 1
		}
		dw.dy.SetVec(r, dw.rhs.AtVec(r)/d)
	}
	return dw.finiteCorrection()
}

func (dw *DynamicWave) finiteCorrection() bool {
	for r := range dw.dy.Len() {
		if !finite(dw.dy.AtVec(r)) {
			return false
		}
	}
	return true
}

// worstResidual 连续性残差绝对值最大的行,首次迭代求解失败时用于归因
func (dw *DynamicWave) worstResidual() int {
	worst, maxResid := 0, -1.0
	for r := range dw.rhs.Len() {
		if v := math.Abs(dw.rhs.AtVec(r)); v > maxResid {
			worst, maxResid = r, v
		}
	}
	return worst
}

// update 应用水深修正,返回最大修正量及其行号
func (dw *DynamicWave) update(dt float64, trial int) (float64, int) {
	maxChange, worst := 0.0, -1
	for r, i := range dw.nodes {
		n := dw.g.Nodes[i]
		step := dw.dy.AtVec(r)
		if trial > 0 {
			step *= dw.Omega
		}
		y := math.Max(n.Depth+step, 0)
		full := n.FullDepth > 0 && y >= n.FullDepth
		if full {
			y = n.FullDepth
		}
		if change := math.Abs(y - n.Depth); change > maxChange || worst < 0 {
			maxChange, worst = change, r
		}
		n.SetDepth(y)
		n.Overflow = 0
		if full {
			ov := (n.OldNetIn+dw.net[r])/2 - dw.surf[r]*(y-n.OldDepth)/dt
			n.Overflow = math.Max(ov, 0)
		}
	}
	return maxChange, worst
}

// setBoundaries 设置排放口水深
func (dw *DynamicWave) setBoundaries() {
	for i, n := range dw.g.Nodes {
		if n.Type != types.Outfall {
			continue
		}
		if n.OutfallType == types.FixedOutfall {
			n.SetDepth(math.Max(n.FixedStage-n.Invert, 0))
			continue
		}
		n.SetDepth(dw.freeDepth(i))
	}
}

// freeDepth 自由出流排放口取临界水深与正常水深的较小值
func (dw *DynamicWave) freeDepth(i int) float64 {
	links := dw.g.Incident(i)
	if len(links) == 0 {
		return 0
	}
	l := dw.g.Links[links[0]]
	offset := l.Offset2
	if l.Node1 == i {
		offset = l.Offset1
	}
	q := 0.0
	for _, k := range links {
		q += math.Abs(dw.g.Links[k].Flow)
	}
	if q <= 0 || l.Width <= 0 || l.Type == types.Pump {
		return offset
	}
	yc := math.Cbrt(q * q / (types.Gravity * l.Width * l.Width))
	y := yc
	if l.Beta > 0 {
		y = math.Min(yc, normalArea(l, q)/l.Width)
	}
	return offset + math.Min(y, l.Height)
}
