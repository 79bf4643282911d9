package report

import (
	"hydroroute/types"
)

// writeMaxStats 连续性误差最大的节点与控制步长最频繁的元素,仅动力波
func (r *Report) writeMaxStats(p *printer) {
	s := r.Settings
	if s.RouteModel != types.DynamicWave || len(r.Net.Links) == 0 || s.MaxStats <= 0 {
		return
	}
	if mb := r.Critical.MassBalance.Entries(); mb[0].Used() {
		p.banner("Highest Continuity Errors")
		for _, e := range mb {
			if e.Used() {
				p.printf("\n  Node %s (%.2f%%)", e.Element.ElementID(), e.Value)
			}
		}
		p.line("")
	}
	if s.CourantFactor == 0 {
		return
	}
	p.banner("Time-Step Critical Elements")
	k := 0
	for _, e := range r.Critical.Courant.Entries() {
		if !e.Used() {
			continue
		}
		k++
		p.printf("\n  %s %s (%.2f%%)", e.Element.ObjectType(), e.Element.ElementID(), e.Value)
	}
	if k == 0 {
		p.printf("\n  None")
	}
	p.line("")
}

// writeMaxFlowTurns 流量折返次数最多的连接
func (r *Report) writeMaxFlowTurns(p *printer) {
	if len(r.Net.Links) == 0 {
		return
	}
	p.banner("Highest Flow Instability Indexes")
	entries := r.Critical.FlowTurns.Entries()
	if len(entries) == 0 || !entries[0].Used() {
		p.printf("\n  All links are stable.")
	} else {
		for _, e := range entries {
			if e.Used() {
				p.printf("\n  Link %s (%.0f)", e.Element.ElementID(), e.Value)
			}
		}
	}
	p.line("")
}

// writeNonconverged 未收敛最频繁的节点,仅动力波
func (r *Report) writeNonconverged(p *printer) {
	if len(r.Net.Nodes) == 0 || r.Settings.RouteModel != types.DynamicWave {
		return
	}
	p.banner("Most Frequent Nonconverging Nodes")
	list := r.Critical.VisibleNonConverged()
	if len(list) == 0 {
		p.printf("\n  Convergence obtained at all time steps.")
	} else {
		for _, e := range list {
			p.printf("\n  Node %s (%.2f%%)", e.Element.ElementID(), 100*e.Value)
		}
	}
	p.line("")
}

// writeTimeStepStats 演算步长统计
func (r *Report) writeTimeStepStats(p *printer) {
	ts := r.TimeSteps
	if len(r.Net.Links) == 0 || ts.TimeStepCount == 0 {
		return
	}
	p.banner("Routing Time Step Summary")
	p.printf("\n  Minimum Time Step           :  %7.2f sec", ts.MinStep())
	p.printf("\n  Average Time Step           :  %7.2f sec", ts.AvgTimeStep())
	p.printf("\n  Maximum Time Step           :  %7.2f sec", ts.MaxTimeStep)
	p.printf("\n  %% of Time in Steady State   :  %7.2f", ts.PctSteady())
	p.printf("\n  Average Iterations per Step :  %7.2f", ts.AvgTrials())
	p.printf("\n  %% of Steps Not Converging   :  %7.2f", ts.PctNonConverged())
	if r.Settings.RouteModel == types.DynamicWave && r.Settings.CourantFactor > 0 {
		r.writeStepFreq(p)
	}
	p.line("")
}

func (r *Report) writeStepFreq(p *printer) {
	ts := r.TimeSteps
	total := ts.BucketTotal()
	if total == 0 {
		return
	}
	p.printf("\n  Time Step Frequencies       :")
	for i := 1; i < types.TimeLevels; i++ {
		p.printf("\n     %6.3f - %6.3f sec      :  %7.2f %%",
			ts.Intervals[i-1], ts.Intervals[i], 100*float64(ts.Counts[i])/float64(total))
	}
}
