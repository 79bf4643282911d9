package report

import (
	"hydroroute/massbal"
	"hydroroute/types"
)

// 体积换算: m³ -> 英亩英尺 / 百万加仑 / 公顷米 / 百万升
const (
	m3PerAcreFt  = 1233.48
	m3PerMGal    = 3785.41
	m3PerHectM   = 10000.0
	m3PerMLiter  = 1000.0
	lbsPerKg     = 2.20462
	qualChunkLen = 5
)

func (r *Report) writeFlowError(p *printer) {
	t := &r.Mass.Flow
	f1, f2 := 1/m3PerHectM, 1/m3PerMLiter
	p.line("")
	p.printf("\n  **************************        Volume        Volume")
	if r.usUnits() {
		f1, f2 = 1/m3PerAcreFt, 1/m3PerMGal
		p.printf("\n  Flow Routing Continuity        acre-feet      10^6 gal")
	} else {
		p.printf("\n  Flow Routing Continuity        hectare-m      10^6 ltr")
	}
	p.printf("\n  **************************     ---------     ---------")
	rows := []struct {
		label string
		v     float64
	}{
		{"Dry Weather Inflow .......", t.DwInflow},
		{"Wet Weather Inflow .......", t.WwInflow},
		{"Groundwater Inflow .......", t.GwInflow},
		{"RDII Inflow ..............", t.IiInflow},
		{"External Inflow ..........", t.ExInflow},
		{"External Outflow .........", t.Outflow},
		{"Flooding Loss ............", t.Flooding},
		{"Evaporation Loss .........", t.EvapLoss},
		{"Exfiltration Loss ........", t.SeepLoss},
		{"Initial Stored Volume ....", t.InitStorage},
		{"Final Stored Volume ......", t.FinalStorage},
	}
	for _, row := range rows {
		p.printf("\n  %s%14.3f%14.3f", row.label, row.v*f1, row.v*f2)
	}
	p.printf("\n  Continuity Error (%%) .....%14.3f", t.PctError)
	p.line("")
}

// loadFactor 负荷单位名称与换算系数
func (r *Report) loadFactor(u types.ConcUnits) (string, float64) {
	if u != types.CountPerL && r.usUnits() {
		return "lbs", lbsPerKg
	}
	return u.LoadUnits(), 1
}

// writeQualError 污染物每 5 个一组输出
func (r *Report) writeQualError(p *printer) {
	n := len(r.Mass.Qual)
	for p1 := 0; p1 < n; p1 += qualChunkLen {
		r.qualErrors(p, p1, min(p1+qualChunkLen, n))
	}
}

func (r *Report) qualErrors(p *printer, p1, p2 int) {
	pol := r.Net.Pollutants
	factors := make([]float64, 0, p2-p1)
	p.line("")
	p.printf("\n  **************************")
	for i := p1; i < p2; i++ {
		p.printf("%14s", pol[i].ID)
	}
	p.printf("\n  Quality Routing Continuity")
	for i := p1; i < p2; i++ {
		units, f := r.loadFactor(pol[i].Units)
		factors = append(factors, f)
		p.printf("%14s", units)
	}
	p.printf("\n  **************************")
	for i := p1; i < p2; i++ {
		p.printf("    ----------")
	}
	r.totalsRows(p, r.Mass.Qual[p1:p2], factors, "Mass")
	p.line("")
}

func (r *Report) writeTempError(p *printer) {
	if !r.Mass.TempActive {
		return
	}
	p.line("")
	p.printf("\n  **************************%14s", r.Net.Temperature.ID)
	p.printf("\n  Temperature Routing Cont. %14s", "deg-m3")
	p.printf("\n  **************************    ----------")
	r.totalsRows(p, []massbal.Totals{r.Mass.Temp}, []float64{1}, "Heat")
	p.line("")
}

// totalsRows 水质与水温连续性表格共用的行
func (r *Report) totalsRows(p *printer, totals []massbal.Totals, factors []float64, stored string) {
	row := func(label string, get func(t *massbal.Totals) float64, scaled bool) {
		p.printf("\n  %s", label)
		for i := range totals {
			v := get(&totals[i])
			if scaled {
				v *= factors[i]
			}
			p.printf("%14.3f", v)
		}
	}
	row("Dry Weather Inflow .......", func(t *massbal.Totals) float64 { return t.DwInflow }, true)
	row("Wet Weather Inflow .......", func(t *massbal.Totals) float64 { return t.WwInflow }, true)
	row("Groundwater Inflow .......", func(t *massbal.Totals) float64 { return t.GwInflow }, true)
	row("RDII Inflow ..............", func(t *massbal.Totals) float64 { return t.IiInflow }, true)
	row("External Inflow ..........", func(t *massbal.Totals) float64 { return t.ExInflow }, true)
	row("External Outflow .........", func(t *massbal.Totals) float64 { return t.Outflow }, true)
	row("Flooding Loss ............", func(t *massbal.Totals) float64 { return t.Flooding }, true)
	row("Exfiltration Loss ........", func(t *massbal.Totals) float64 { return t.SeepLoss }, true)
	row(stored+" Reacted .............", func(t *massbal.Totals) float64 { return t.Reacted }, true)
	row("Initial Stored "+stored+" ......", func(t *massbal.Totals) float64 { return t.InitStorage }, true)
	row("Final Stored "+stored+" ........", func(t *massbal.Totals) float64 { return t.FinalStorage }, true)
	row("Continuity Error (%) .....", func(t *massbal.Totals) float64 { return t.PctError }, false)
}
