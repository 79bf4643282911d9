package hydroroute

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"hydroroute/config"
	"hydroroute/iface"
	"hydroroute/report"
	"hydroroute/route"
	"hydroroute/types"
)

// Project 一次完整运行: 加载、打开、演算、报告、关闭
//
//	Err 保存第一个致命错误,之后的阶段全部跳过,报告只输出该错误。
type Project struct {
	Config   *config.Project
	Settings *config.Settings
	Net      *types.Network
	Router   *route.Router
	Inflows  *iface.Reader
	Outflows *iface.Writer

	Debug    route.Debug
	Observer route.Observer
	Logger   *log.Logger
	Err      error
}

// NewProject 初始化
func NewProject() *Project {
	return &Project{Logger: log.New(os.Stderr, "[hydroroute] ", log.LstdFlags)}
}

// fail 记录第一个错误
func (p *Project) fail(err error) error {
	if p.Err == nil && err != nil {
		p.Err = err
	}
	return p.Err
}

// Load 读取项目文件并创建管网
func (p *Project) Load(filename string) error {
	if p.Err != nil {
		return p.Err
	}
	cfg, err := config.Load(filename)
	if err != nil {
		return p.fail(err)
	}
	return p.Use(cfg)
}

// Use 使用已解析的项目定义
func (p *Project) Use(cfg *config.Project) error {
	if p.Err != nil {
		return p.Err
	}
	s, err := cfg.Settings()
	if err != nil {
		return p.fail(err)
	}
	net, err := cfg.Build(s)
	if err != nil {
		return p.fail(err)
	}
	p.Config, p.Settings, p.Net = cfg, s, net
	return nil
}

// Export 导出项目文件
func (p *Project) Export(filename string) error {
	if p.Config == nil {
		return types.NewError(types.ErrInput, filename, 0, "没有已加载的项目")
	}
	data, err := yaml.Marshal(p.Config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// Start 创建演算上下文,打开接口文件并重置状态
func (p *Project) Start() error {
	if p.Err != nil {
		return p.Err
	}
	if p.Net == nil {
		return p.fail(types.NewError(types.ErrInput, "", 0, "项目未加载"))
	}
	r, err := route.NewRouter(p.Settings, p.Net)
	if err != nil {
		return p.fail(err)
	}
	r.Debug, r.Observer = p.Debug, p.Observer
	p.Router = r
	if err := p.Settings.Validate(); err != nil {
		return p.fail(err)
	}
	if name := p.Settings.InflowsFile; name != "" {
		if p.Inflows, err = iface.OpenReader(name, p.Net); err != nil {
			return p.fail(err)
		}
		if ids := p.Inflows.Unmatched(); len(ids) > 0 {
			p.Logger.Printf("入流接口文件中的节点不在项目中: %v", ids)
		}
		r.Inflows = p.Inflows
	}
	if name := p.Settings.OutflowsFile; name != "" {
		if p.Outflows, err = iface.CreateWriter(name, r.Graph, p.Settings); err != nil {
			return p.fail(err)
		}
		r.Outflows = p.Outflows
	}
	return p.fail(r.Open())
}

// Run 演算至结束时间
func (p *Project) Run(ctx context.Context) error {
	if p.Err != nil {
		return p.Err
	}
	if p.Router == nil {
		return p.fail(types.NewError(types.ErrInput, "", 0, "演算未开始"))
	}
	return p.fail(p.Router.Run(ctx))
}

// Report 运行报告
func (p *Project) Report() *report.Report {
	rpt := &report.Report{Settings: p.Settings, Net: p.Net, Err: p.Err}
	if p.Err == nil && p.Router != nil {
		rpt.TimeSteps = p.Router.TimeSteps
		rpt.Mass = p.Router.Mass
		rpt.Critical = p.Router.Critical
	}
	return rpt
}

// WriteReport 输出报告
func (p *Project) WriteReport(w io.Writer) error { return p.Report().Render(w) }

// Close 关闭接口文件
func (p *Project) Close() error {
	var errs []error
	if p.Inflows != nil {
		errs = append(errs, p.Inflows.Close())
		p.Inflows = nil
	}
	if p.Outflows != nil {
		errs = append(errs, p.Outflows.Close())
		p.Outflows = nil
	}
	return errors.Join(errs...)
}

// Simulate 加载并运行项目,set 可在开始前修改项目参数
func Simulate(ctx context.Context, filename string, set func(p *Project)) (*Project, error) {
	p := NewProject()
	if err := p.Load(filename); err == nil && set != nil {
		set(p)
	}
	p.Start()
	p.Run(ctx)
	if err := p.Close(); err != nil {
		p.fail(err)
	}
	return p, p.Err
}
