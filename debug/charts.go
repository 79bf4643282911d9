package debug

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

var legendOpts = opts.Legend{
	Type:   "scroll",
	Orient: "vertical",
	Right:  "10",
	Top:    "20",
	Bottom: "20",
}

// newLine 时间曲线,横轴为小时
func newLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(legendOpts),
		charts.WithXAxisOpts(opts.XAxis{
			Name:        "h",
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	return line
}

// addColumns 按列添加曲线,rows[t][i] 为第 i 条曲线在第 t 个时刻的值
func addColumns(line *charts.Line, names []string, time []float64, rows [][]float64) {
	line.SetXAxis(time)
	for i, name := range names {
		items := make([]opts.LineData, len(rows))
		for t, row := range rows {
			items[t] = opts.LineData{Value: row[i]}
		}
		line.AddSeries(name, items)
	}
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "管网拓扑",
			Subtitle: "节点与连接网络图",
		}),
		charts.WithLegendOpts(legendOpts),
	)
	graph.SetSeriesOptions(
		charts.WithEmphasisOpts(opts.Emphasis{
			Label: &opts.Label{
				Show:     opts.Bool(true),
				Color:    "black",
				Position: "left",
			},
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Curveness: 0.3,
		}),
	)
	// 连接以最后一个时刻的流量为边权
	var last []float64
	if n := len(c.Flow); n > 0 {
		last = c.Flow[n-1]
	}
	nodes := make([]opts.GraphNode, len(c.Nodes))
	for i, id := range c.Nodes {
		nodes[i] = opts.GraphNode{
			Name:     id,
			Category: 0,
			Tooltip:  &opts.Tooltip{Show: opts.Bool(true)},
		}
	}
	links := make([]opts.GraphLink, len(c.Edges))
	for i, e := range c.Edges {
		links[i] = opts.GraphLink{
			Source: c.Nodes[e[0]],
			Target: c.Nodes[e[1]],
		}
		if last != nil {
			links[i].Value = float32(last[i])
		}
	}
	graph.AddSeries("管网", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Categories: []*opts.GraphCategory{
				{Name: "节点", ItemStyle: &opts.ItemStyle{Color: "#1987c7b7"}},
			},
			Roam:               opts.Bool(true),
			Force:              &opts.GraphForce{Repulsion: 80},
			EdgeLabel:          &opts.EdgeLabel{Show: opts.Bool(true)},
			FocusNodeAdjacency: opts.Bool(true),
		}))

	depth := newLine("节点水深", "节点水深随时间变化曲线")
	addColumns(depth, c.Nodes, c.Time, c.Depth)
	head := newLine("节点水头", "节点水头随时间变化曲线")
	addColumns(head, c.Nodes, c.Time, c.Head)
	flow := newLine("连接流量", fmt.Sprintf("%d 条连接的流量随时间变化曲线", len(c.Links)))
	addColumns(flow, c.Links, c.Time, c.Flow)

	page := components.NewPage()
	page.AddCharts(graph, depth, head, flow)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		c.Error(err)
	}
}

func (c *Charts) Error(err error) { log.Println(err) }
