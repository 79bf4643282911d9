package debug

import (
	"encoding/json"
	"io"
	"log"

	"hydroroute/types"
)

// Record 记录报告时刻的管网状态
type Record struct {
	Nodes []string    // 节点列表
	Links []string    // 连接列表
	Edges [][2]int    // 连接两端节点索引
	Time  []float64   // 时间列(小时)
	Depth [][]float64 // 节点水深列
	Head  [][]float64 // 节点水头列
	Flow  [][]float64 // 连接流量列
}

// Init 初始化
func (list *Record) Init(net *types.Network) {
	list.Nodes = make([]string, len(net.Nodes))
	for i, n := range net.Nodes {
		list.Nodes[i] = n.ID
	}
	list.Links = make([]string, len(net.Links))
	list.Edges = make([][2]int, len(net.Links))
	for i, l := range net.Links {
		list.Links[i] = l.ID
		list.Edges[i] = [2]int{l.Node1, l.Node2}
	}
	list.Time = list.Time[:0]
	list.Depth = list.Depth[:0]
	list.Head = list.Head[:0]
	list.Flow = list.Flow[:0]
}

func (Record) IsDebug() bool { return true }

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

// Update 记录数据
func (list *Record) Update(elapsed float64, net *types.Network) {
	list.Time = append(list.Time, elapsed/3600)
	depth := make([]float64, len(net.Nodes))
	head := make([]float64, len(net.Nodes))
	for i, n := range net.Nodes {
		depth[i], head[i] = n.Depth, n.Head
	}
	flow := make([]float64, len(net.Links))
	for i, l := range net.Links {
		flow[i] = l.Flow
	}
	list.Depth = append(list.Depth, depth)
	list.Head = append(list.Head, head)
	list.Flow = append(list.Flow, flow)
}

// Len 已记录的时刻数量
func (list *Record) Len() int { return len(list.Time) }

func (list *Record) Error(err error) { log.Println(err) }
