package stats

import (
	"math"

	"hydroroute/types"
)

// Critical 关键元素统计,维护四个独立的排行
type Critical struct {
	MassBalance  *Tracker // 节点质量平衡误差(%)
	Courant      *Tracker // 柯朗步长控制频率(%),节点与连接混合
	FlowTurns    *Tracker // 连接流量折返次数
	NonConverged *Tracker // 节点未收敛频率 (0~1)
	steps        int      // 参与统计的步数
}

// NewCritical 创建容量为 k 的关键元素统计
func NewCritical(k int) *Critical {
	return &Critical{
		MassBalance:  NewTracker(k),
		Courant:      NewTracker(k),
		FlowTurns:    NewTracker(k),
		NonConverged: NewTracker(k),
	}
}

// Reset 重置
func (c *Critical) Reset() {
	c.MassBalance.Reset()
	c.Courant.Reset()
	c.FlowTurns.Reset()
	c.NonConverged.Reset()
	c.steps = 0
}

// Steps 已统计步数
func (c *Critical) Steps() int { return c.steps }

// UpdateStep 时间步完成后调用,并行计算全部汇合后单线程执行
//
//	courant: 控制本步柯朗步长的元素,可为 nil
//	worst: 未收敛时误差最大的节点,收敛时为 nil
func (c *Critical) UpdateStep(net *types.Network, courant types.Element, worst *types.Node) {
	c.steps++
	switch e := courant.(type) {
	case *types.Node:
		e.Stats.CourantCrit++
	case *types.Link:
		e.CourantCrit++
	}
	if worst != nil {
		worst.Stats.NonConverged++
	}
	for _, l := range net.Links {
		l.ObserveFlow(l.Flow)
	}
}

// Finalize 运行结束时按各对象的最终指标填充排行
func (c *Critical) Finalize(net *types.Network) {
	c.MassBalance.Reset()
	c.Courant.Reset()
	c.FlowTurns.Reset()
	c.NonConverged.Reset()
	steps := float64(c.steps)
	for _, n := range net.Nodes {
		if n.Type != types.Outfall {
			c.MassBalance.Insert(n, math.Abs(n.Stats.MassBalanceErr))
		}
		if steps > 0 && n.Stats.CourantCrit > 0 {
			c.Courant.Insert(n, 100*float64(n.Stats.CourantCrit)/steps)
		}
		if steps > 0 && n.Stats.NonConverged > 0 {
			c.NonConverged.Insert(n, float64(n.Stats.NonConverged)/steps)
		}
	}
	for _, l := range net.Links {
		if steps > 0 && l.CourantCrit > 0 {
			c.Courant.Insert(l, 100*float64(l.CourantCrit)/steps)
		}
		if l.FlowTurns > 0 {
			c.FlowTurns.Insert(l, float64(l.FlowTurns))
		}
	}
}

// VisibleNonConverged 显示用的未收敛节点,过滤低于阈值的记录
func (c *Critical) VisibleNonConverged() []Entry {
	list := make([]Entry, 0, c.NonConverged.Cap())
	for _, e := range c.NonConverged.Entries() {
		if e.Used() && e.Value >= types.NoConvergeMin {
			list = append(list, e)
		}
	}
	return list
}
