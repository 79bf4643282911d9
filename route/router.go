package route

import (
	"context"
	"log"
	"math"
	"os"
	"time"

	"hydroroute/config"
	"hydroroute/graph"
	"hydroroute/massbal"
	"hydroroute/stats"
	"hydroroute/types"
)

// Debug 调试记录接口
type Debug interface {
	Init(net *types.Network)
	IsDebug() bool
	Update(elapsed float64, net *types.Network)
}

// Observer 每步结束时的观测回调
type Observer interface {
	ObserveStep(dt float64, trials int, converged, steady bool)
}

// Router 一次演算运行的上下文,持有全部累计量
type Router struct {
	Settings   *config.Settings
	Net        *types.Network
	Graph      *graph.Graph
	Solver     Solver
	Controller *StepController
	TimeSteps  *stats.TimeSteps
	Mass       *massbal.Accountant
	Critical   *stats.Critical

	Inflows  ExternalInflows // 入流接口文件,可为 nil
	Outflows OutletWriter    // 出流接口文件,可为 nil
	Debug    Debug
	Observer Observer
	Logger   *log.Logger

	lat        *lateral
	budget     *massbal.StepBudget
	elapsed    float64   // 已模拟秒数
	nextReport time.Time // 下一报告时刻

	lastConverged   bool
	prevLat         float64 // 上一步旁侧入流合计
	prevIn, prevOut float64 // 上一步系统入流与出流
}

// NewRouter 创建演算上下文
func NewRouter(s *config.Settings, net *types.Network) (*Router, error) {
	g, err := graph.NewGraph(net)
	if err != nil {
		return nil, err
	}
	r := &Router{
		Settings: s,
		Net:      net,
		Graph:    g,
		Solver: NewSolver(s.RouteModel, SolverOptions{
			MaxTrials: max(s.MaxTrials, 1),
			HeadTol:   s.HeadTol,
			Threads:   s.Threads,
			Omega:     s.Omega,
		}),
		Controller: &StepController{
			RouteStep: s.RouteStep,
			MinStep:   s.MinRouteStep,
			Courant:   s.CourantFactor,
			Model:     s.RouteModel,
		},
		TimeSteps: stats.NewTimeSteps(s.RouteStep, s.MinRouteStep),
		Critical:  stats.NewCritical(s.MaxStats),
		Logger:    log.New(os.Stderr, "[route] ", log.LstdFlags),
	}
	return r, nil
}

// Open 重置管网与全部累计量
func (r *Router) Open() error {
	if err := r.Settings.Validate(); err != nil {
		return err
	}
	r.Net.Reset()
	if err := r.Graph.Init(); err != nil {
		return err
	}
	if err := r.Solver.Init(r.Graph); err != nil {
		return err
	}
	for _, n := range r.Net.Nodes {
		n.SaveOld()
	}
	for _, l := range r.Net.Links {
		l.SaveOld()
	}
	r.Mass = massbal.NewAccountant(r.Net)
	r.TimeSteps.Reset(r.Settings.RouteStep, r.Settings.MinRouteStep)
	r.Critical.Reset()
	r.lat = newLateral(len(r.Net.Nodes), r.Net.NumPollutants())
	r.budget = massbal.NewStepBudget(r.Net.Pollutants)
	r.elapsed = 0
	r.lastConverged = true
	r.prevLat, r.prevIn, r.prevOut = 0, 0, 0
	if r.Debug != nil && r.Debug.IsDebug() {
		r.Debug.Init(r.Net)
		r.Debug.Update(0, r.Net)
	}
	r.nextReport = r.Settings.ReportStart
	if !r.Settings.ReportStart.After(r.Settings.Start) {
		if err := r.save(r.Settings.Start); err != nil {
			return err
		}
		r.nextReport = r.Settings.Start.Add(r.Settings.ReportStep)
	}
	return nil
}

// Now 当前模拟时刻,按毫秒取整
func (r *Router) Now() time.Time {
	return r.Settings.Start.Add(time.Duration(math.Round(r.elapsed*1000)) * time.Millisecond)
}

// Elapsed 已模拟秒数
func (r *Router) Elapsed() float64 { return r.elapsed }

// Done 是否到达结束时间
func (r *Router) Done() bool {
	return r.elapsed >= r.Settings.Duration()-1e-6
}

// Run 运行至结束,取消只在时间步之间生效
func (r *Router) Run(ctx context.Context) error {
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(ctx); err != nil {
			return err
		}
	}
	r.Finish()
	return nil
}

// Step 推进一个时间步
func (r *Router) Step(ctx context.Context) error {
	now := r.Now()
	remaining := r.Settings.Duration() - r.elapsed
	toReport := r.nextReport.Sub(now).Seconds()
	dt, crit := r.Controller.Next(r.Graph, remaining, toReport)
	if dt <= 0 {
		dt = remaining
	}
	end := now.Add(time.Duration(math.Round(dt*1000)) * time.Millisecond)

	r.budget.Reset()
	if err := r.assembleInflows(end, dt); err != nil {
		return err
	}
	res := Result{Trials: 0, Converged: true}
	skip := r.steadySkip()
	if skip {
		crit = nil
	} else {
		var err error
		if res, err = r.Solver.Step(ctx, dt); err != nil {
			return err
		}
	}
	r.routeQuality(dt)
	r.addLosses(dt, r.budget)
	r.Mass.Add(r.budget)
	r.Mass.AddNodeFlows(r.Net, dt)

	steady := skip || (res.Converged && res.MaxChange < r.Settings.HeadTol)
	r.TimeSteps.Record(dt, res.Trials, res.Converged, steady)
	r.Critical.UpdateStep(r.Net, crit, res.Worst)
	if r.Observer != nil {
		r.Observer.ObserveStep(dt, res.Trials, res.Converged, steady)
	}

	r.prevLat = r.lat.total()
	r.prevIn, r.prevOut = r.systemFlows(dt)
	r.lastConverged = res.Converged
	for _, n := range r.Net.Nodes {
		n.SaveOld()
	}
	for _, l := range r.Net.Links {
		l.MaxFlow = math.Max(l.MaxFlow, math.Abs(l.Flow))
		l.SaveOld()
	}
	r.elapsed += dt

	if now = r.Now(); !now.Before(r.nextReport) {
		if err := r.save(now); err != nil {
			return err
		}
		if r.Debug != nil && r.Debug.IsDebug() {
			r.Debug.Update(r.elapsed, r.Net)
		}
		for !r.nextReport.After(now) {
			r.nextReport = r.nextReport.Add(r.Settings.ReportStep)
		}
	}
	return nil
}

// Finish 记录最终蓄量,推导误差并生成关键元素排行
func (r *Router) Finish() {
	r.Mass.Finalize(r.Net)
	r.Critical.Finalize(r.Net)
	if ts := r.TimeSteps; ts.NonConverged > 0 {
		r.Logger.Printf("%d 个时间步未收敛 (%.2f%%)", ts.NonConverged, ts.PctNonConverged())
	}
}

func (r *Router) save(now time.Time) error {
	if r.Outflows == nil {
		return nil
	}
	return r.Outflows.Save(now)
}

// systemFlows 本步系统平均入流与出流
func (r *Router) systemFlows(dt float64) (in, out float64) {
	if dt <= 0 {
		return 0, 0
	}
	b := &r.budget.Flow
	for _, v := range b.Inflow {
		in += v
	}
	out = b.Outflow + b.Flooding + b.Evap + b.Seep
	return in / dt, out / dt
}

// steadySkip 系统处于稳态时跳过求解
//
//	上一步收敛,旁侧入流变化及上一步系统入出流差均小于 SysFlowTol。
func (r *Router) steadySkip() bool {
	if !r.Settings.SkipSteadyState || !r.lastConverged || r.TimeSteps.TimeStepCount == 0 {
		return false
	}
	tol := r.Settings.SysFlowTol
	return relChange(r.lat.total(), r.prevLat) <= tol && relChange(r.prevOut, r.prevIn) <= tol
}

func relChange(a, b float64) float64 {
	d := math.Max(math.Abs(a), math.Abs(b))
	if d < types.Epsilon {
		return 0
	}
	return math.Abs(a-b) / d
}
