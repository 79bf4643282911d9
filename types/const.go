package types

// 物理与数值常量定义
const (
	Gravity       = 9.81    // 重力加速度 (m/s²)
	TimeLevels    = 6       // 时间步长频率表分级数量
	MinSurfArea   = 1.167   // 节点最小自由水面面积 (m²)
	FudgeDepth    = 0.0001  // 视为干涸的最小水深 (m)
	Epsilon       = 1e-10   // 浮点比较下限
	NoConvergeMin = 0.00005 // 非收敛频率显示下限
	SecPerDay     = 86400.0 // 每日秒数
)

// 默认参数常量定义
var (
	DefaultReportStep   = 900    // 默认报告步长(秒)
	DefaultRouteStep    = 30.0   // 默认演算步长(秒)
	DefaultMinRouteStep = 0.5    // 最小演算步长(秒)
	DefaultCourant      = 0.75   // 柯朗系数
	DefaultMaxTrials    = 8      // 最大迭代次数
	DefaultHeadTol      = 0.0015 // 水头收敛容差(m)
	DefaultThreads      = 1      // 并行线程数
	DefaultMaxStats     = 5      // 关键元素统计数量
	DefaultSysFlowTol   = 0.05   // 稳态判定的系统流量相对容差
	DefaultOmega        = 0.5    // 迭代欠松弛系数
)
