package types

import "fmt"

// Network 管网状态存储,节点与连接由求解器独占修改
type Network struct {
	Title       string       // 项目标题
	Nodes       []*Node      // 节点列表
	Links       []*Link      // 连接列表
	Pollutants  []*Pollutant // 污染物列表
	Temperature Temperature  // 水温变量
	Inflows     []*Inflow    // 入流来源

	nodeIndex   map[string]int
	linkIndex   map[string]int
	pollutIndex map[string]int
}

// NewNetwork 创建空管网
func NewNetwork(title string) *Network {
	return &Network{
		Title:       title,
		nodeIndex:   map[string]int{},
		linkIndex:   map[string]int{},
		pollutIndex: map[string]int{},
	}
}

// AddNode 添加节点
func (net *Network) AddNode(n *Node) error {
	if _, ok := net.nodeIndex[n.ID]; ok {
		return NewError(ErrInput, "", 0, fmt.Sprintf("节点重复定义: %s", n.ID))
	}
	n.Index = len(net.Nodes)
	net.nodeIndex[n.ID] = n.Index
	net.Nodes = append(net.Nodes, n)
	return nil
}

// AddLink 添加连接,两端节点必须已经存在
func (net *Network) AddLink(l *Link, from, to string) error {
	if _, ok := net.linkIndex[l.ID]; ok {
		return NewError(ErrInput, "", 0, fmt.Sprintf("连接重复定义: %s", l.ID))
	}
	n1, n2 := net.FindNode(from), net.FindNode(to)
	if n1 < 0 || n2 < 0 {
		return NewError(ErrInput, "", 0, fmt.Sprintf("连接 %s 的节点不存在: %s -> %s", l.ID, from, to))
	}
	if n1 == n2 {
		return NewError(ErrInput, "", 0, fmt.Sprintf("连接 %s 首尾节点相同", l.ID))
	}
	l.Index = len(net.Links)
	l.Node1, l.Node2 = n1, n2
	net.linkIndex[l.ID] = l.Index
	net.Links = append(net.Links, l)
	return nil
}

// AddPollutant 添加污染物
func (net *Network) AddPollutant(p *Pollutant) error {
	if _, ok := net.pollutIndex[p.ID]; ok {
		return NewError(ErrInput, "", 0, fmt.Sprintf("污染物重复定义: %s", p.ID))
	}
	p.Index = len(net.Pollutants)
	net.pollutIndex[p.ID] = p.Index
	net.Pollutants = append(net.Pollutants, p)
	return nil
}

// FindNode 查找节点索引,不存在返回 -1
func (net *Network) FindNode(id string) int {
	if i, ok := net.nodeIndex[id]; ok {
		return i
	}
	return -1
}

// FindLink 查找连接索引,不存在返回 -1
func (net *Network) FindLink(id string) int {
	if i, ok := net.linkIndex[id]; ok {
		return i
	}
	return -1
}

// FindPollutant 查找污染物索引,不存在返回 -1
func (net *Network) FindPollutant(id string) int {
	if i, ok := net.pollutIndex[id]; ok {
		return i
	}
	return -1
}

// NumPollutants 污染物数量
func (net *Network) NumPollutants() int { return len(net.Pollutants) }

// Reset 所有对象恢复初始状态并计算连接几何参数
func (net *Network) Reset() {
	np := net.NumPollutants()
	for _, n := range net.Nodes {
		n.Reset(np)
	}
	for _, l := range net.Links {
		l.InitGeometry(net.Nodes[l.Node1], net.Nodes[l.Node2])
		l.Reset(np)
	}
}

// Volume 管网当前总蓄水体积
func (net *Network) Volume() float64 {
	v := 0.0
	for _, n := range net.Nodes {
		if n.Type != Outfall {
			v += n.Volume
		}
	}
	for _, l := range net.Links {
		v += l.Volume
	}
	return v
}
