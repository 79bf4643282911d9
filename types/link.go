package types

import "math"

// TurnState 流量变化方向状态
type TurnState int

const (
	TurnFlat    TurnState = iota // 无变化
	TurnRising                   // 上升
	TurnFalling                  // 下降
)

// Link 连接状态,矩形断面管渠或理想泵
type Link struct {
	ID    string   // 连接名称
	Index int      // 连接索引
	Type  LinkType // 连接类型
	Node1 int      // 上游节点索引
	Node2 int      // 下游节点索引

	// 几何参数
	Length    float64 // 长度 (m)
	Width     float64 // 断面宽度 (m)
	Height    float64 // 断面高度 (m)
	Roughness float64 // 曼宁糙率
	Offset1   float64 // 上游端底部偏移 (m)
	Offset2   float64 // 下游端底部偏移 (m)
	InitFlow  float64 // 初始流量 (m³/s)
	PumpRate  float64 // 理想泵流量上限 (m³/s)
	Slope     float64 // 底坡,由节点高程计算
	FullFlow  float64 // 满管流量
	Beta      float64 // 曼宁系数 √S/n

	// 水力状态
	Flow      float64 // 流量
	OldFlow   float64 // 上一步流量
	Velocity  float64 // 流速
	Depth     float64 // 平均水深
	Area      float64 // 过流面积
	OldArea   float64 // 上一步过流面积
	Volume    float64 // 蓄水体积
	OldVolume float64 // 上一步蓄水体积
	Capacity  float64 // 充满度
	Setting   float64 // 控制设置 (0~1)
	Dqdh      float64 // 流量对水头差的导数

	// 水质水温
	Qual []float64
	Temp float64

	// 稳定性统计
	TurnState   TurnState // 流量变化方向
	FlowTurns   int       // 流量折返次数
	CourantCrit int       // 柯朗步长控制次数
	MaxFlow     float64   // 最大流量
	prevFlow    float64   // 折返检测的上一个样本
	hasPrev     bool      // 是否已有样本
}

// ObjectType 对象类型
func (l *Link) ObjectType() ObjectType { return LinkObject }

// ElementID 对象名称
func (l *Link) ElementID() string { return l.ID }

// ElementIndex 对象索引
func (l *Link) ElementIndex() int { return l.Index }

// AreaAt 指定水深的过流面积
func (l *Link) AreaAt(y float64) float64 {
	y = clamp(y, 0, l.Height)
	return l.Width * y
}

// DepthAt 指定面积的水深
func (l *Link) DepthAt(a float64) float64 {
	if l.Width <= 0 {
		return 0
	}
	return clamp(a/l.Width, 0, l.Height)
}

// HydRadius 指定水深的水力半径
func (l *Link) HydRadius(y float64) float64 {
	y = clamp(y, 0, l.Height)
	if y <= 0 {
		return 0
	}
	p := l.Width + 2*y
	if y >= l.Height {
		p += l.Width // 满管时顶部也为湿周
	}
	return l.Width * y / p
}

// FullArea 满管面积
func (l *Link) FullArea() float64 { return l.Width * l.Height }

// ManningFlow 指定面积的曼宁均匀流流量
func (l *Link) ManningFlow(a float64) float64 {
	if a <= 0 {
		return 0
	}
	r := l.HydRadius(l.DepthAt(a))
	return l.Beta * a * math.Pow(r, 2.0/3.0)
}

// InitGeometry 根据节点高程计算底坡与满管流量
func (l *Link) InitGeometry(n1, n2 *Node) {
	if l.Roughness <= 0 {
		l.Roughness = 0.013
	}
	if l.Length <= 0 {
		l.Length = 1
	}
	drop := (n1.Invert + l.Offset1) - (n2.Invert + l.Offset2)
	l.Slope = math.Max(drop/l.Length, 0.0001)
	l.Beta = math.Sqrt(l.Slope) / l.Roughness
	l.FullFlow = l.ManningFlow(l.FullArea())
	if l.Type == Pump {
		l.FullFlow = l.PumpRate
	}
}

// Reset 恢复初始状态
func (l *Link) Reset(numPolluts int) {
	l.Flow, l.OldFlow = l.InitFlow, l.InitFlow
	l.Velocity, l.Depth, l.Area, l.OldArea, l.Volume, l.OldVolume = 0, 0, 0, 0, 0, 0
	l.Capacity, l.Dqdh = 0, 0
	l.Setting = 1
	l.Qual = make([]float64, numPolluts)
	l.Temp = 0
	l.TurnState, l.FlowTurns, l.CourantCrit = TurnFlat, 0, 0
	l.MaxFlow = math.Abs(l.InitFlow)
	l.prevFlow, l.hasPrev = 0, false
}

// SetArea 设置过流面积并更新派生状态
func (l *Link) SetArea(a float64) {
	a = clamp(a, 0, l.FullArea())
	l.Area = a
	l.Depth = l.DepthAt(a)
	l.Volume = a * l.Length
	if a > FudgeDepth*l.Width {
		l.Velocity = l.Flow / a
	} else {
		l.Velocity = 0
	}
	if l.FullArea() > 0 {
		l.Capacity = a / l.FullArea()
	}
}

// SaveOld 保存当前状态作为下一步的旧值
func (l *Link) SaveOld() {
	l.OldFlow = l.Flow
	l.OldArea = l.Area
	l.OldVolume = l.Volume
}

// ObserveFlow 记录一个流量样本,检测上一个样本是否为严格局部极值
//
//	流量持平时方向状态归零,平段两端均不计为折返。
func (l *Link) ObserveFlow(q float64) bool {
	if !l.hasPrev {
		l.prevFlow, l.hasPrev = q, true
		return false
	}
	var state TurnState
	switch {
	case q > l.prevFlow:
		state = TurnRising
	case q < l.prevFlow:
		state = TurnFalling
	default:
		state = TurnFlat
	}
	l.prevFlow = q
	turned := false
	if state != TurnFlat {
		turned = (l.TurnState == TurnRising && state == TurnFalling) ||
			(l.TurnState == TurnFalling && state == TurnRising)
		if turned {
			l.FlowTurns++
		}
	}
	l.TurnState = state
	return turned
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
