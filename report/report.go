package report

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"hydroroute/config"
	"hydroroute/massbal"
	"hydroroute/stats"
	"hydroroute/types"
)

// Report 文本报告,各节均为定宽表格
type Report struct {
	Settings  *config.Settings
	Net       *types.Network
	TimeSteps *stats.TimeSteps
	Mass      *massbal.Accountant
	Critical  *stats.Critical
	Err       error // 运行错误,非空时只输出错误信息
}

// printer 记录第一个写错误,之后的写入全部忽略
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}

// line 每行以换行和两个空格开头
func (p *printer) line(s string) { p.printf("\n  %s", s) }

func (p *printer) banner(title string) {
	p.line("")
	stars := strings.Repeat("*", len(title))
	p.line(stars)
	p.line(title)
	p.line(stars)
}

// Render 输出完整报告
func (r *Report) Render(w io.Writer) error {
	p := &printer{w: w}
	if r.Err != nil {
		p.line("")
		p.line(r.Err.Error())
		p.line("")
		if p.err != nil {
			return p.err
		}
		return r.Err
	}
	r.writeTitle(p)
	r.writeOptions(p)
	if r.Mass != nil {
		r.writeFlowError(p)
		r.writeQualError(p)
		r.writeTempError(p)
	}
	if r.Critical != nil {
		r.writeMaxStats(p)
		r.writeMaxFlowTurns(p)
		r.writeNonconverged(p)
	}
	if r.TimeSteps != nil {
		r.writeTimeStepStats(p)
	}
	p.line("")
	return p.err
}

// Handler 发布到网页
func (r *Report) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := r.Render(w); err != nil {
		log.Println(err)
	}
}

// usUnits 流量单位是否属于英制
func (r *Report) usUnits() bool {
	switch r.Settings.FlowUnits {
	case types.CFS, types.GPM, types.MGD:
		return true
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func (r *Report) writeTitle(p *printer) {
	if r.Net.Title == "" {
		return
	}
	p.line("")
	p.line(r.Net.Title)
}

func (r *Report) writeOptions(p *printer) {
	s := r.Settings
	p.banner("Analysis Options")
	p.printf("\n  Flow Units ............... %s", s.FlowUnits)
	p.printf("\n  Process Models:")
	p.printf("\n    Flow Routing ........... %s", yesNo(len(r.Net.Links) > 0))
	p.printf("\n    Water Quality .......... %s", yesNo(r.Net.NumPollutants() > 0))
	p.printf("\n    Water Temperature ...... %s", yesNo(r.Net.Temperature.Active))
	if len(r.Net.Links) > 0 {
		p.printf("\n  Flow Routing Method ...... %s", s.RouteModel)
	}
	p.printf("\n  Starting Date ............ %s", s.Start.Format("01/02/2006 15:04:05"))
	p.printf("\n  Ending Date .............. %s", s.End.Format("01/02/2006 15:04:05"))
	p.printf("\n  Report Time Step ......... %s", clock(s.ReportStep))
	if len(r.Net.Links) > 0 {
		p.printf("\n  Routing Time Step ........ %.2f sec", s.RouteStep)
		if s.RouteModel == types.DynamicWave {
			p.printf("\n  Variable Time Step ....... %s", yesNo(s.CourantFactor > 0))
			p.printf("\n  Maximum Trials ........... %d", s.MaxTrials)
			p.printf("\n  Number of Threads ........ %d", s.Threads)
			if r.usUnits() {
				p.printf("\n  Head Tolerance ........... %.6f ft", s.HeadTol*3.28084)
			} else {
				p.printf("\n  Head Tolerance ........... %.6f m", s.HeadTol)
			}
		}
	}
	p.line("")
}

// clock 时长格式化为 hh:mm:ss
func clock(d time.Duration) string {
	sec := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec/60%60, sec%60)
}
