package iface

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hydroroute/types"
)

// Magic 接口文件首行标识
const Magic = "SWMM5"

// Sample 单个接口节点在某一时刻的值,流量为内部单位
type Sample struct {
	Flow float64
	Qual []float64 // 按项目污染物索引,文件中没有的污染物为 0
	Temp float64
}

// Snapshot 某一时刻全部接口节点的值
type Snapshot struct {
	Date   time.Time
	Values []Sample
}

func newSnapshot(nodes, polluts int) Snapshot {
	s := Snapshot{Values: make([]Sample, nodes)}
	for i := range s.Values {
		s.Values[i].Qual = make([]float64, polluts)
	}
	return s
}

func (s *Snapshot) copyFrom(src *Snapshot) {
	s.Date = src.Date
	for i := range s.Values {
		s.Values[i].Flow = src.Values[i].Flow
		copy(s.Values[i].Qual, src.Values[i].Qual)
		s.Values[i].Temp = src.Values[i].Temp
	}
}

// Reader 入流接口文件,在新旧两个时刻之间线性插值
type Reader struct {
	File      string
	Step      int             // 文件报告步长(秒)
	FlowUnits types.FlowUnits // 文件流量单位
	Nodes     []int           // 文件节点 -> 项目节点索引,未知节点为 -1
	NodeIDs   []string        // 文件节点名称

	cols    int   // 每行数值列数(含流量)
	polCol  []int // 项目污染物 -> 文件数值列,-1 表示文件中没有
	tempCol int   // 水温所在数值列,-1 表示没有

	f    *os.File
	scan *bufio.Scanner
	line int

	old, new Snapshot
	frac     float64
	active   bool // 当前时刻是否有数据
	eof      bool
}

// OpenReader 打开入流接口文件并读取文件头与第一个时刻
func OpenReader(filename string, net *types.Network) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, types.WrapError(types.ErrRoutingFileOpen, filename, err)
	}
	r := &Reader{File: filename, f: f, scan: bufio.NewScanner(f)}
	r.scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if err := r.readHeader(net); err != nil {
		f.Close()
		return nil, err
	}
	np := net.NumPollutants()
	r.old = newSnapshot(len(r.Nodes), np)
	r.new = newSnapshot(len(r.Nodes), np)
	if err := r.readNext(); err != nil {
		f.Close()
		return nil, err
	}
	r.old.copyFrom(&r.new)
	return r, nil
}

// Close 关闭文件
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

func (r *Reader) formatError(msg string) error {
	return types.NewError(types.ErrRoutingFileFormat, r.File, r.line, msg)
}

// nextLine 读取下一行,文件结束返回 false
func (r *Reader) nextLine() (string, bool, error) {
	if !r.scan.Scan() {
		if err := r.scan.Err(); err != nil {
			return "", false, types.WrapError(types.ErrRoutingFileFormat, r.File, err)
		}
		return "", false, nil
	}
	r.line++
	return r.scan.Text(), true, nil
}

// headerLine 读取文件头中必需的一行
func (r *Reader) headerLine() ([]string, error) {
	s, ok, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, r.formatError("文件头不完整")
	}
	return strings.Fields(s), nil
}

// headerInt 读取行首整数
func (r *Reader) headerInt() (int, error) {
	fields, err := r.headerLine()
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, r.formatError("缺少整数")
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, r.formatError(fmt.Sprintf("无效整数 %q", fields[0]))
	}
	return v, nil
}

func (r *Reader) readHeader(net *types.Network) error {
	fields, err := r.headerLine()
	if err != nil {
		return err
	}
	if len(fields) == 0 || fields[0] != Magic {
		return r.formatError("不是接口文件")
	}
	if _, err := r.headerLine(); err != nil { // 标题
		return err
	}
	if r.Step, err = r.headerInt(); err != nil {
		return err
	}
	if r.Step <= 0 {
		return r.formatError("报告步长必须大于零")
	}
	n, err := r.headerInt()
	if err != nil {
		return err
	}
	if n < 1 {
		return r.formatError("组分数量必须至少为 1")
	}
	r.cols = n
	if fields, err = r.headerLine(); err != nil {
		return err
	}
	if len(fields) < 2 || !strings.EqualFold(fields[0], "FLOW") {
		return r.formatError("缺少 FLOW 行")
	}
	var ok bool
	if r.FlowUnits, ok = types.ParseFlowUnits(fields[1]); !ok {
		return r.formatError("未知流量单位 " + fields[1])
	}
	r.polCol = make([]int, net.NumPollutants())
	for i := range r.polCol {
		r.polCol[i] = -1
	}
	r.tempCol = -1
	for c := 1; c < n; c++ {
		if fields, err = r.headerLine(); err != nil {
			return err
		}
		if len(fields) < 2 {
			return r.formatError("组分行格式错误")
		}
		if err := r.matchConstituent(net, c, fields[0], fields[1]); err != nil {
			return err
		}
	}
	count, err := r.headerInt()
	if err != nil {
		return err
	}
	if count <= 0 {
		return r.formatError("节点数量必须大于零")
	}
	r.Nodes = make([]int, count)
	r.NodeIDs = make([]string, count)
	for i := range count {
		if fields, err = r.headerLine(); err != nil {
			return err
		}
		if len(fields) == 0 {
			return r.formatError("缺少节点名称")
		}
		r.NodeIDs[i] = fields[0]
		r.Nodes[i] = net.FindNode(fields[0])
	}
	_, err = r.headerLine() // 列标题
	return err
}

// matchConstituent 按名称匹配污染物或水温,单位不一致为致命错误,未匹配的组分忽略
func (r *Reader) matchConstituent(net *types.Network, col int, name, units string) error {
	if p := net.FindPollutant(name); p >= 0 {
		u, ok := types.ParseConcUnits(units)
		if !ok || u != net.Pollutants[p].Units {
			return types.NewError(types.ErrRoutingFileNoMatch, r.File, r.line, name)
		}
		r.polCol[p] = col
		return nil
	}
	if t := net.Temperature; t.Active && strings.EqualFold(name, t.ID) {
		u, ok := types.ParseTempUnits(units)
		if !ok || u != t.Units {
			return types.NewError(types.ErrRoutingFileNoMatch, r.File, r.line, name)
		}
		r.tempCol = col
	}
	return nil
}

// readNext 读取下一时刻到 new,文件结束时置 eof
func (r *Reader) readNext() error {
	factor := r.FlowUnits.Factor()
	for i := range r.Nodes {
		var s string
		for {
			line, ok, err := r.nextLine()
			if err != nil {
				return err
			}
			if !ok {
				if i > 0 {
					return r.formatError("记录不完整")
				}
				r.eof = true
				return nil
			}
			if s = strings.TrimSpace(line); s != "" {
				break
			}
		}
		fields := strings.Fields(s)
		if len(fields) < 7+r.cols {
			return r.formatError("记录字段不足")
		}
		var date [6]int
		for k := range date {
			v, err := strconv.Atoi(fields[1+k])
			if err != nil {
				return r.formatError(fmt.Sprintf("无效日期字段 %q", fields[1+k]))
			}
			date[k] = v
		}
		values := make([]float64, r.cols)
		for k := range values {
			v, err := strconv.ParseFloat(fields[7+k], 64)
			if err != nil {
				return r.formatError(fmt.Sprintf("无效数值 %q", fields[7+k]))
			}
			values[k] = v
		}
		smp := &r.new.Values[i]
		smp.Flow = values[0] / factor
		for p, c := range r.polCol {
			smp.Qual[p] = 0
			if c >= 0 {
				smp.Qual[p] = values[c]
			}
		}
		smp.Temp = 0
		if r.tempCol >= 0 {
			smp.Temp = values[r.tempCol]
		}
		r.new.Date = time.Date(date[0], time.Month(date[1]), date[2], date[3], date[4], date[5], 0, time.UTC)
	}
	return nil
}

// Advance 推进到 now,必要时读取新的时刻并更新插值系数
//
//	文件开始时刻晚于 now 或数据已读完时本步没有入流。
func (r *Reader) Advance(now time.Time) error {
	r.active = false
	if r.old.Date.After(now) {
		return nil
	}
	for !r.eof && r.new.Date.Before(now) {
		r.old.copyFrom(&r.new)
		if err := r.readNext(); err != nil {
			return err
		}
	}
	if r.eof {
		return nil
	}
	span := r.new.Date.Sub(r.old.Date).Seconds()
	r.frac = 1
	if span > 0 {
		r.frac = now.Sub(r.old.Date).Seconds() / span
		r.frac = max(0, min(r.frac, 1))
	}
	r.active = true
	return nil
}

// Frac 当前插值系数
func (r *Reader) Frac() float64 { return r.frac }

// Active 当前时刻是否有数据
func (r *Reader) Active() bool { return r.active }

// Value 文件第 i 个节点的插值结果
func (r *Reader) Value(i int) Sample {
	o, n := &r.old.Values[i], &r.new.Values[i]
	s := Sample{
		Flow: lerp(o.Flow, n.Flow, r.frac),
		Qual: make([]float64, len(o.Qual)),
		Temp: lerp(o.Temp, n.Temp, r.frac),
	}
	for p := range s.Qual {
		s.Qual[p] = lerp(o.Qual[p], n.Qual[p], r.frac)
	}
	return s
}

// ForEach 遍历项目中存在的接口节点
func (r *Reader) ForEach(fn func(node int, flow float64, qual []float64, temp float64)) {
	if !r.active {
		return
	}
	for i, node := range r.Nodes {
		if node < 0 {
			continue
		}
		s := r.Value(i)
		fn(node, s.Flow, s.Qual, s.Temp)
	}
}

// Unmatched 项目中不存在的接口节点名称
func (r *Reader) Unmatched() []string {
	var list []string
	for i, node := range r.Nodes {
		if node < 0 {
			list = append(list, r.NodeIDs[i])
		}
	}
	return list
}

func lerp(a, b, f float64) float64 { return (1-f)*a + f*b }
