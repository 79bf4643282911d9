package debug

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"hydroroute/stats"
	"hydroroute/types"
)

// 图片尺寸
const (
	plotWidth  = 24 * vg.Inch
	plotHeight = 8 * vg.Inch
)

// Hydrograph 指定连接的流量过程线,links 为空时绘制全部连接
func (list *Record) Hydrograph(links ...int) (*plot.Plot, error) {
	if len(links) == 0 {
		links = make([]int, len(list.Links))
		for i := range links {
			links[i] = i
		}
	}
	p := plot.New()
	p.Title.Text = "Hydrograph"
	p.X.Label.Text = "hours"
	p.Y.Label.Text = "flow"
	lines := make([]any, 0, 2*len(links))
	for _, k := range links {
		if k < 0 || k >= len(list.Links) {
			return nil, fmt.Errorf("连接索引越界: %d", k)
		}
		xy := make(plotter.XYs, len(list.Time))
		for t, row := range list.Flow {
			xy[t].X = list.Time[t]
			xy[t].Y = row[k]
		}
		lines = append(lines, list.Links[k], xy)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	return p, nil
}

// StepHistogram 演算步长频率柱状图
func StepHistogram(ts *stats.TimeSteps) (*plot.Plot, error) {
	total := ts.BucketTotal()
	values := make(plotter.Values, types.TimeLevels-1)
	names := make([]string, types.TimeLevels-1)
	for i := 1; i < types.TimeLevels; i++ {
		names[i-1] = fmt.Sprintf("%.3f-%.3f", ts.Intervals[i], ts.Intervals[i-1])
		if total > 0 {
			values[i-1] = 100 * float64(ts.Counts[i]) / float64(total)
		}
	}
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(0)
	p := plot.New()
	p.Title.Text = "Time Step Frequencies"
	p.Y.Label.Text = "%"
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// SavePlot 保存为图片,格式由扩展名决定
func SavePlot(p *plot.Plot, filename string) error {
	return p.Save(plotWidth, plotHeight, filename)
}

// WritePNG 以 PNG 格式写出
func WritePNG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
