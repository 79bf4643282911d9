package types

// Node 节点状态,由项目加载时创建,每个时间步由求解器更新
type Node struct {
	ID    string   // 节点名称
	Index int      // 节点索引
	Type  NodeType // 节点类型

	// 几何参数
	Invert       float64     // 底部高程 (m)
	FullDepth    float64     // 最大水深 (m)
	SurfArea     float64     // 调蓄节点自由水面面积 (m²)
	InitDepth    float64     // 初始水深 (m)
	OutfallType  OutfallType // 排放口边界类型
	FixedStage   float64     // 固定水位排放口的水位高程 (m)
	EvapRate     float64     // 蒸发速率 (m/s)
	SeepRate     float64     // 渗漏速率 (m/s)
	Degree       int         // 出流连接数量
	DividerShare float64     // 分流节点主出流比例

	// 水力状态
	Head      float64 // 水头高程
	Depth     float64 // 当前水深
	OldDepth  float64 // 上一步水深
	Volume    float64 // 当前蓄水体积
	OldVolume float64 // 上一步蓄水体积
	Inflow    float64 // 总入流
	Outflow   float64 // 总出流
	OldNetIn  float64 // 上一步净入流
	LatFlow   float64 // 旁侧入流
	Overflow  float64 // 溢流流量
	EvapLoss  float64 // 当前步蒸发流量
	SeepLoss  float64 // 当前步渗漏流量

	// 水质水温
	Qual    []float64 // 各污染物浓度
	OldQual []float64 // 上一步浓度
	Temp    float64   // 水温
	OldTemp float64   // 上一步水温

	// 生命周期统计
	Stats NodeStats
}

// NodeStats 节点累计统计
type NodeStats struct {
	InflowVol      float64 // 累计入流体积
	OutflowVol     float64 // 累计出流体积
	InitVolume     float64 // 初始蓄水体积
	NonConverged   int     // 未收敛步数
	CourantCrit    int     // 柯朗步长控制次数
	MaxDepth       float64 // 最大水深
	FloodVol       float64 // 累计溢流体积
	MassBalanceErr float64 // 质量平衡误差(%),运行结束时计算
}

// ObjectType 对象类型
func (n *Node) ObjectType() ObjectType { return NodeObject }

// ElementID 对象名称
func (n *Node) ElementID() string { return n.ID }

// ElementIndex 对象索引
func (n *Node) ElementIndex() int { return n.Index }

// IsOutfall 是否为排放口
func (n *Node) IsOutfall() bool { return n.Type == Outfall }

// Area 自由水面面积,检查井取最小面积
func (n *Node) Area() float64 {
	if n.Type == Storage && n.SurfArea > MinSurfArea {
		return n.SurfArea
	}
	return MinSurfArea
}

// VolumeAt 指定水深对应体积(棱柱体)
func (n *Node) VolumeAt(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return n.Area() * depth
}

// SetDepth 设置水深并同步水头和体积
func (n *Node) SetDepth(depth float64) {
	if depth < 0 {
		depth = 0
	}
	n.Depth = depth
	n.Head = n.Invert + depth
	n.Volume = n.VolumeAt(depth)
}

// Reset 恢复初始状态
func (n *Node) Reset(numPolluts int) {
	n.SetDepth(n.InitDepth)
	n.OldDepth = n.Depth
	n.OldVolume = n.Volume
	n.Inflow, n.Outflow, n.OldNetIn, n.LatFlow = 0, 0, 0, 0
	n.Overflow, n.EvapLoss, n.SeepLoss = 0, 0, 0
	n.Qual = make([]float64, numPolluts)
	n.OldQual = make([]float64, numPolluts)
	n.Temp, n.OldTemp = 0, 0
	n.Stats = NodeStats{InitVolume: n.Volume, MaxDepth: n.Depth}
}

// NetInflow 净入流,不含溢流
func (n *Node) NetInflow() float64 {
	return n.Inflow - n.Outflow - n.EvapLoss - n.SeepLoss
}

// SaveOld 保存当前状态作为下一步的旧值
func (n *Node) SaveOld() {
	n.OldDepth = n.Depth
	n.OldVolume = n.Volume
	n.OldNetIn = n.NetInflow()
	copy(n.OldQual, n.Qual)
	n.OldTemp = n.Temp
}
