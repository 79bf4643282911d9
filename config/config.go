package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hydroroute/types"
)

// Project 项目文件结构,对应一个 YAML 文件
type Project struct {
	Title       string           `yaml:"title"`
	Options     Options          `yaml:"options"`
	Pollutants  []PollutantSpec  `yaml:"pollutants,omitempty"`
	Temperature *TemperatureSpec `yaml:"temperature,omitempty"`
	Nodes       []NodeSpec       `yaml:"nodes"`
	Links       []LinkSpec       `yaml:"links"`
	Inflows     []InflowSpec     `yaml:"inflows,omitempty"`

	dir string // 项目文件所在目录,用于解析相对路径
}

// Options 分析选项
type Options struct {
	FlowUnits       string   `yaml:"flow_units"`
	RouteModel      string   `yaml:"route_model"`
	Start           string   `yaml:"start"`
	End             string   `yaml:"end"`
	ReportStart     string   `yaml:"report_start,omitempty"`
	ReportStep      int      `yaml:"report_step,omitempty"`
	RouteStep       float64  `yaml:"route_step,omitempty"`
	MinRouteStep    float64  `yaml:"min_route_step,omitempty"`
	CourantFactor   *float64 `yaml:"courant_factor,omitempty"`
	MaxTrials       int      `yaml:"max_trials,omitempty"`
	HeadTol         float64  `yaml:"head_tol,omitempty"`
	Threads         int      `yaml:"threads,omitempty"`
	MaxStats        *int     `yaml:"max_stats,omitempty"`
	SkipSteadyState bool     `yaml:"skip_steady_state,omitempty"`
	SysFlowTol      float64  `yaml:"sys_flow_tol,omitempty"`
	Omega           float64  `yaml:"omega,omitempty"`
	InflowsFile     string   `yaml:"inflows_file,omitempty"`
	OutflowsFile    string   `yaml:"outflows_file,omitempty"`
}

// PollutantSpec 污染物定义
type PollutantSpec struct {
	ID    string  `yaml:"id"`
	Units string  `yaml:"units"`
	Decay float64 `yaml:"decay,omitempty"`
}

// TemperatureSpec 水温定义
type TemperatureSpec struct {
	ID    string `yaml:"id"`
	Units string `yaml:"units"`
}

// NodeSpec 节点定义
type NodeSpec struct {
	ID          string  `yaml:"id"`
	Type        string  `yaml:"type"`
	Invert      float64 `yaml:"invert"`
	MaxDepth    float64 `yaml:"max_depth,omitempty"`
	InitDepth   float64 `yaml:"init_depth,omitempty"`
	Area        float64 `yaml:"area,omitempty"`
	Outfall     string  `yaml:"outfall,omitempty"`
	Stage       float64 `yaml:"stage,omitempty"`
	EvapRate    float64 `yaml:"evap_rate,omitempty"` // mm/day
	SeepRate    float64 `yaml:"seep_rate,omitempty"` // mm/hr
	DivertShare float64 `yaml:"divert_share,omitempty"`
}

// LinkSpec 连接定义
type LinkSpec struct {
	ID        string  `yaml:"id"`
	Type      string  `yaml:"type,omitempty"`
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	Length    float64 `yaml:"length"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Roughness float64 `yaml:"roughness,omitempty"`
	Offset1   float64 `yaml:"offset1,omitempty"`
	Offset2   float64 `yaml:"offset2,omitempty"`
	InitFlow  float64 `yaml:"init_flow,omitempty"`
	PumpRate  float64 `yaml:"pump_rate,omitempty"`
}

// InflowSpec 入流定义,series 为 [秒, 流量] 对
type InflowSpec struct {
	Node        string             `yaml:"node"`
	Category    string             `yaml:"category"`
	Baseline    float64            `yaml:"baseline,omitempty"`
	Series      [][2]float64       `yaml:"series,omitempty"`
	Quality     map[string]float64 `yaml:"quality,omitempty"`
	Temperature float64            `yaml:"temperature,omitempty"`
}

// Load 读取项目文件
func Load(filename string) (*Project, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, types.WrapError(types.ErrInput, filename, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(filename)
	return p, nil
}

// Parse 解析项目数据并填充默认值
func Parse(data []byte) (*Project, error) {
	p := &Project{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, types.WrapError(types.ErrInput, "", err)
	}
	p.ApplyDefaults()
	return p, nil
}

// ApplyDefaults 未设置的选项取默认值
func (p *Project) ApplyDefaults() {
	o := &p.Options
	if o.FlowUnits == "" {
		o.FlowUnits = "CMS"
	}
	if o.RouteModel == "" {
		o.RouteModel = "DYNWAVE"
	}
	if o.ReportStep <= 0 {
		o.ReportStep = types.DefaultReportStep
	}
	if o.RouteStep <= 0 {
		o.RouteStep = types.DefaultRouteStep
	}
	if o.MinRouteStep <= 0 {
		o.MinRouteStep = types.DefaultMinRouteStep
	}
	if o.CourantFactor == nil {
		cf := types.DefaultCourant
		o.CourantFactor = &cf
	}
	if o.MaxTrials <= 0 {
		o.MaxTrials = types.DefaultMaxTrials
	}
	if o.HeadTol <= 0 {
		o.HeadTol = types.DefaultHeadTol
	}
	if o.Threads <= 0 {
		o.Threads = types.DefaultThreads
	}
	if o.MaxStats == nil {
		k := types.DefaultMaxStats
		o.MaxStats = &k
	}
	if o.SysFlowTol <= 0 {
		o.SysFlowTol = types.DefaultSysFlowTol
	}
	if o.Omega <= 0 || o.Omega > 1 {
		o.Omega = types.DefaultOmega
	}
}

// Settings 解析后的运行参数
type Settings struct {
	FlowUnits       types.FlowUnits
	RouteModel      types.RouteModel
	Start           time.Time
	End             time.Time
	ReportStart     time.Time
	ReportStep      time.Duration
	RouteStep       float64 // 秒
	MinRouteStep    float64 // 秒
	CourantFactor   float64 // 0 表示固定步长
	MaxTrials       int
	HeadTol         float64
	Threads         int
	MaxStats        int
	SkipSteadyState bool
	SysFlowTol      float64
	Omega           float64
	InflowsFile     string
	OutflowsFile    string
}

// Duration 模拟总时长(秒)
func (s *Settings) Duration() float64 { return s.End.Sub(s.Start).Seconds() }

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
}

// ParseTime 解析日期时间
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期时间: %q", s)
}

// Settings 校验并解析选项
func (p *Project) Settings() (*Settings, error) {
	o := &p.Options
	s := &Settings{
		RouteStep:       o.RouteStep,
		MinRouteStep:    o.MinRouteStep,
		CourantFactor:   *o.CourantFactor,
		MaxTrials:       o.MaxTrials,
		HeadTol:         o.HeadTol,
		Threads:         o.Threads,
		MaxStats:        *o.MaxStats,
		SkipSteadyState: o.SkipSteadyState,
		SysFlowTol:      o.SysFlowTol,
		Omega:           o.Omega,
		ReportStep:      time.Duration(o.ReportStep) * time.Second,
		InflowsFile:     p.resolve(o.InflowsFile),
		OutflowsFile:    p.resolve(o.OutflowsFile),
	}
	var ok bool
	if s.FlowUnits, ok = types.ParseFlowUnits(o.FlowUnits); !ok {
		return nil, types.NewError(types.ErrInput, "", 0, "未知流量单位: "+o.FlowUnits)
	}
	if s.RouteModel, ok = types.ParseRouteModel(o.RouteModel); !ok {
		return nil, types.NewError(types.ErrInput, "", 0, "未知演算方法: "+o.RouteModel)
	}
	var err error
	if s.Start, err = ParseTime(o.Start); err != nil {
		return nil, types.WrapError(types.ErrInput, "", err)
	}
	if s.End, err = ParseTime(o.End); err != nil {
		return nil, types.WrapError(types.ErrInput, "", err)
	}
	s.ReportStart = s.Start
	if o.ReportStart != "" {
		if s.ReportStart, err = ParseTime(o.ReportStart); err != nil {
			return nil, types.WrapError(types.ErrInput, "", err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 检查参数冲突,在打开任何文件之前调用
func (s *Settings) Validate() error {
	switch {
	case !s.End.After(s.Start):
		return types.NewError(types.ErrConfig, "", 0, "结束时间必须晚于开始时间")
	case s.ReportStart.Before(s.Start) || s.ReportStart.After(s.End):
		return types.NewError(types.ErrConfig, "", 0, "报告开始时间超出模拟时段")
	case s.RouteStep <= 0 || s.ReportStep <= 0:
		return types.NewError(types.ErrConfig, "", 0, "演算步长与报告步长必须大于零")
	case s.MinRouteStep > s.RouteStep:
		return types.NewError(types.ErrConfig, "", 0, "最小演算步长大于演算步长")
	case s.CourantFactor < 0 || s.CourantFactor > 2:
		return types.NewError(types.ErrConfig, "", 0, "柯朗系数必须在 0~2 之间")
	case s.MaxStats < 0:
		return types.NewError(types.ErrConfig, "", 0, "关键元素统计数量不能为负")
	}
	if s.InflowsFile != "" && s.OutflowsFile != "" && sameFile(s.InflowsFile, s.OutflowsFile) {
		return types.NewError(types.ErrRoutingFileNames, s.InflowsFile, 0, "")
	}
	return nil
}

func sameFile(a, b string) bool {
	pa, err1 := filepath.Abs(a)
	pb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return strings.EqualFold(a, b)
	}
	return strings.EqualFold(filepath.Clean(pa), filepath.Clean(pb))
}

func (p *Project) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) || p.dir == "" {
		return name
	}
	return filepath.Join(p.dir, name)
}
