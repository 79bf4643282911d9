package iface

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"hydroroute/config"
	"hydroroute/graph"
	"hydroroute/types"
)

// Writer 出流接口文件,在每个报告时刻写出出口节点的流量与水质
type Writer struct {
	File    string
	Outlets []int // 出口节点索引

	g      *graph.Graph
	factor float64
	temp   bool
	f      *os.File
	w      *bufio.Writer
}

// CreateWriter 创建出流接口文件并写入文件头
func CreateWriter(filename string, g *graph.Graph, s *config.Settings) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, types.WrapError(types.ErrRoutingFileOpen, filename, err)
	}
	w := &Writer{
		File:    filename,
		Outlets: g.Outlets(s.RouteModel),
		g:       g,
		factor:  s.FlowUnits.Factor(),
		temp:    g.Temperature.Active,
		f:       f,
		w:       bufio.NewWriter(f),
	}
	w.writeHeader(s)
	return w, nil
}

func (w *Writer) writeHeader(s *config.Settings) {
	net := w.g.Network
	n := net.NumPollutants() + 1
	if w.temp {
		n++
	}
	fmt.Fprint(w.w, Magic+" Interface File")
	fmt.Fprintf(w.w, "\n%s", net.Title)
	fmt.Fprintf(w.w, "\n%-4d - reporting time step in sec", int(s.ReportStep/time.Second))
	fmt.Fprintf(w.w, "\n%-4d - number of constituents as listed below:", n)
	fmt.Fprintf(w.w, "\nFLOW %s", s.FlowUnits)
	for _, p := range net.Pollutants {
		fmt.Fprintf(w.w, "\n%s %s", p.ID, p.Units)
	}
	if w.temp {
		fmt.Fprintf(w.w, "\n%s %s", net.Temperature.ID, net.Temperature.Units)
	}
	fmt.Fprintf(w.w, "\n%-4d - number of nodes as listed below:", len(w.Outlets))
	for _, i := range w.Outlets {
		fmt.Fprintf(w.w, "\n%s", net.Nodes[i].ID)
	}
	fmt.Fprint(w.w, "\nNode             Year Mon Day Hr  Min Sec FLOW      ")
	for _, p := range net.Pollutants {
		fmt.Fprintf(w.w, " %-10s", p.ID)
	}
	if w.temp {
		fmt.Fprintf(w.w, " %-10s", net.Temperature.ID)
	}
}

// Save 写出 now 时刻各出口节点的入流、浓度与水温
func (w *Writer) Save(now time.Time) error {
	date := fmt.Sprintf(" %04d %02d  %02d  %02d  %02d  %02d ",
		now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute(), now.Second())
	for _, i := range w.Outlets {
		n := w.g.Nodes[i]
		fmt.Fprintf(w.w, "\n%-16s", n.ID)
		fmt.Fprint(w.w, date)
		fmt.Fprintf(w.w, " %-10f", n.Inflow*w.factor)
		for _, c := range n.Qual {
			fmt.Fprintf(w.w, " %-10f", c)
		}
		if w.temp {
			fmt.Fprintf(w.w, " %-10f", n.Temp)
		}
	}
	if err := w.w.Flush(); err != nil {
		return types.WrapError(types.ErrRoutingFileOpen, w.File, err)
	}
	return nil
}

// Close 刷新并关闭文件
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	err := w.w.Flush()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	w.f = nil
	return err
}
