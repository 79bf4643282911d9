package config

import (
	"fmt"
	"sort"

	"hydroroute/types"
)

// 速率换算: mm/day、mm/hr -> m/s
const (
	mmPerDay = 1.0 / (1000 * types.SecPerDay)
	mmPerHr  = 1.0 / (1000 * 3600)
)

func inputError(format string, a ...any) error {
	return types.NewError(types.ErrInput, "", 0, fmt.Sprintf(format, a...))
}

// Build 由项目定义创建管网,流量换算为 m³/s
func (p *Project) Build(s *Settings) (*types.Network, error) {
	net := types.NewNetwork(p.Title)
	factor := s.FlowUnits.Factor()
	for _, ps := range p.Pollutants {
		u, ok := types.ParseConcUnits(ps.Units)
		if !ok {
			return nil, inputError("污染物 %s 的浓度单位未知: %s", ps.ID, ps.Units)
		}
		if err := net.AddPollutant(&types.Pollutant{ID: ps.ID, Units: u, Decay: ps.Decay}); err != nil {
			return nil, err
		}
	}
	if t := p.Temperature; t != nil {
		u, ok := types.ParseTempUnits(t.Units)
		if !ok {
			return nil, inputError("水温单位未知: %s", t.Units)
		}
		net.Temperature = types.Temperature{ID: t.ID, Units: u, Active: true}
	}
	for _, ns := range p.Nodes {
		n, err := ns.node()
		if err != nil {
			return nil, err
		}
		if err := net.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, ls := range p.Links {
		l, err := ls.link(factor)
		if err != nil {
			return nil, err
		}
		if err := net.AddLink(l, ls.From, ls.To); err != nil {
			return nil, err
		}
	}
	for _, is := range p.Inflows {
		in, err := is.inflow(net, factor)
		if err != nil {
			return nil, err
		}
		net.Inflows = append(net.Inflows, in)
	}
	return net, nil
}

func (ns *NodeSpec) node() (*types.Node, error) {
	t := types.Junction
	if ns.Type != "" {
		var ok bool
		if t, ok = types.ParseNodeType(ns.Type); !ok {
			return nil, inputError("节点 %s 的类型未知: %s", ns.ID, ns.Type)
		}
	}
	if ns.MaxDepth < 0 || ns.InitDepth < 0 || ns.Area < 0 {
		return nil, inputError("节点 %s 的几何参数不能为负", ns.ID)
	}
	n := &types.Node{
		ID:           ns.ID,
		Type:         t,
		Invert:       ns.Invert,
		FullDepth:    ns.MaxDepth,
		SurfArea:     ns.Area,
		InitDepth:    ns.InitDepth,
		FixedStage:   ns.Stage,
		EvapRate:     ns.EvapRate * mmPerDay,
		SeepRate:     ns.SeepRate * mmPerHr,
		DividerShare: ns.DivertShare,
	}
	if ns.MaxDepth > 0 && ns.InitDepth > ns.MaxDepth {
		n.InitDepth = ns.MaxDepth
	}
	if ns.Outfall != "" {
		var ok bool
		if n.OutfallType, ok = types.ParseOutfallType(ns.Outfall); !ok {
			return nil, inputError("排放口 %s 的边界类型未知: %s", ns.ID, ns.Outfall)
		}
	}
	if ns.DivertShare < 0 || ns.DivertShare > 1 {
		return nil, inputError("分流节点 %s 的分流比例必须在 0~1 之间", ns.ID)
	}
	return n, nil
}

func (ls *LinkSpec) link(factor float64) (*types.Link, error) {
	t := types.Conduit
	if ls.Type != "" {
		var ok bool
		if t, ok = types.ParseLinkType(ls.Type); !ok {
			return nil, inputError("连接 %s 的类型未知: %s", ls.ID, ls.Type)
		}
	}
	if t == types.Conduit && (ls.Width <= 0 || ls.Height <= 0) {
		return nil, inputError("管渠 %s 的断面尺寸必须大于零", ls.ID)
	}
	if ls.Length < 0 || ls.Roughness < 0 || ls.PumpRate < 0 {
		return nil, inputError("连接 %s 的参数不能为负", ls.ID)
	}
	return &types.Link{
		ID:        ls.ID,
		Type:      t,
		Length:    ls.Length,
		Width:     ls.Width,
		Height:    ls.Height,
		Roughness: ls.Roughness,
		Offset1:   ls.Offset1,
		Offset2:   ls.Offset2,
		InitFlow:  ls.InitFlow / factor,
		PumpRate:  ls.PumpRate / factor,
	}, nil
}

func (is *InflowSpec) inflow(net *types.Network, factor float64) (*types.Inflow, error) {
	node := net.FindNode(is.Node)
	if node < 0 {
		return nil, inputError("入流节点不存在: %s", is.Node)
	}
	cat := types.External
	if is.Category != "" {
		var ok bool
		if cat, ok = types.ParseInflowCategory(is.Category); !ok {
			return nil, inputError("节点 %s 的入流分类未知: %s", is.Node, is.Category)
		}
	}
	in := &types.Inflow{
		Node:     node,
		Category: cat,
		Baseline: is.Baseline / factor,
		Quality:  make([]float64, net.NumPollutants()),
		Temp:     is.Temperature,
	}
	for id, c := range is.Quality {
		p := net.FindPollutant(id)
		if p < 0 {
			return nil, inputError("节点 %s 的入流污染物不存在: %s", is.Node, id)
		}
		in.Quality[p] = c
	}
	for _, pt := range is.Series {
		in.Series = append(in.Series, types.SeriesPoint{Time: pt[0], Value: pt[1] / factor})
	}
	sort.SliceStable(in.Series, func(i, j int) bool { return in.Series[i].Time < in.Series[j].Time })
	return in, nil
}
