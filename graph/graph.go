package graph

import (
	"fmt"
	"hydroroute/types"
)

// Graph 管网连接关系
type Graph struct {
	*types.Network
	InLinks  [][]int // 各节点的入流连接
	OutLinks [][]int // 各节点的出流连接
	order    []int   // 连接拓扑顺序(上游在前)
}

// NewGraph 创建图并计算节点出度
func NewGraph(net *types.Network) (graph *Graph, err error) {
	graph = &Graph{Network: net}
	err = graph.Init()
	return graph, err
}

// Init 初始化
func (graph *Graph) Init() error {
	n := len(graph.Nodes)
	graph.InLinks = make([][]int, n)
	graph.OutLinks = make([][]int, n)
	for _, l := range graph.Links {
		if l.Node1 < 0 || l.Node1 >= n || l.Node2 < 0 || l.Node2 >= n {
			return types.NewError(types.ErrInput, "", 0, fmt.Sprintf("连接 %s 节点索引越界", l.ID))
		}
		graph.OutLinks[l.Node1] = append(graph.OutLinks[l.Node1], l.Index)
		graph.InLinks[l.Node2] = append(graph.InLinks[l.Node2], l.Index)
	}
	for i, node := range graph.Nodes {
		node.Degree = len(graph.OutLinks[i])
	}
	graph.order = nil
	return nil
}

// Incident 节点相关的全部连接
func (graph *Graph) Incident(node int) []int {
	in, out := graph.InLinks[node], graph.OutLinks[node]
	all := make([]int, 0, len(in)+len(out))
	all = append(all, in...)
	return append(all, out...)
}

// TopoOrder 按拓扑顺序返回连接索引,存在环路时返回错误
func (graph *Graph) TopoOrder() ([]int, error) {
	if graph.order != nil {
		return graph.order, nil
	}
	n := len(graph.Nodes)
	indeg := make([]int, n)
	for _, l := range graph.Links {
		indeg[l.Node2]++
	}
	queue := make([]int, 0, n)
	for i := range n {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, len(graph.Links))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, k := range graph.OutLinks[i] {
			order = append(order, k)
			j := graph.Links[k].Node2
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	if len(order) != len(graph.Links) {
		return nil, types.NewError(types.ErrInput, "", 0, "管网存在环路,无法进行稳态或运动波演算")
	}
	graph.order = order
	return order, nil
}

// IsOutlet 判断节点是否为出口:动力波下只有排放口,其他方法下为出度为零的节点
func (graph *Graph) IsOutlet(node int, model types.RouteModel) bool {
	nd := graph.Nodes[node]
	if model == types.DynamicWave {
		return nd.Type == types.Outfall
	}
	return nd.Degree == 0
}

// Outlets 全部出口节点索引
func (graph *Graph) Outlets(model types.RouteModel) []int {
	list := make([]int, 0)
	for i := range graph.Nodes {
		if graph.IsOutlet(i, model) {
			list = append(list, i)
		}
	}
	return list
}

// NodeOrder 按拓扑顺序返回节点索引,出口节点排在最后
func (graph *Graph) NodeOrder() ([]int, error) {
	links, err := graph.TopoOrder()
	if err != nil {
		return nil, err
	}
	seen := make([]bool, len(graph.Nodes))
	order := make([]int, 0, len(graph.Nodes))
	for _, k := range links {
		if i := graph.Links[k].Node1; !seen[i] {
			seen[i] = true
			order = append(order, i)
		}
	}
	for i := range graph.Nodes {
		if !seen[i] {
			order = append(order, i)
		}
	}
	return order, nil
}
