package types

import "strings"

// findMatch 不区分大小写查找关键字索引,未找到返回 -1
func findMatch(s string, words []string) int {
	for i, w := range words {
		if strings.EqualFold(s, w) {
			return i
		}
	}
	return -1
}

// NodeType 节点类型
type NodeType int

const (
	Junction NodeType = iota // 检查井
	Outfall                  // 排放口
	Storage                  // 调蓄节点
	Divider                  // 分流节点
)

var NodeTypeWords = []string{"JUNCTION", "OUTFALL", "STORAGE", "DIVIDER"}

func (t NodeType) String() string { return wordOf(int(t), NodeTypeWords) }

// ParseNodeType 解析节点类型
func ParseNodeType(s string) (NodeType, bool) {
	i := findMatch(s, NodeTypeWords)
	return NodeType(i), i >= 0
}

// LinkType 连接类型
type LinkType int

const (
	Conduit LinkType = iota // 管渠
	Pump                    // 理想泵
)

var LinkTypeWords = []string{"CONDUIT", "PUMP"}

func (t LinkType) String() string { return wordOf(int(t), LinkTypeWords) }

// ParseLinkType 解析连接类型
func ParseLinkType(s string) (LinkType, bool) {
	i := findMatch(s, LinkTypeWords)
	return LinkType(i), i >= 0
}

// OutfallType 排放口边界类型
type OutfallType int

const (
	FreeOutfall  OutfallType = iota // 自由出流
	FixedOutfall                    // 固定水位
)

var OutfallTypeWords = []string{"FREE", "FIXED"}

func (t OutfallType) String() string { return wordOf(int(t), OutfallTypeWords) }

// ParseOutfallType 解析排放口类型
func ParseOutfallType(s string) (OutfallType, bool) {
	i := findMatch(s, OutfallTypeWords)
	return OutfallType(i), i >= 0
}

// RouteModel 流量演算方法
type RouteModel int

const (
	SteadyFlow    RouteModel = iota // 稳态流
	KinematicWave                   // 运动波
	DynamicWave                     // 动力波
)

var RouteModelWords = []string{"STEADY", "KINWAVE", "DYNWAVE"}

func (m RouteModel) String() string { return wordOf(int(m), RouteModelWords) }

// ParseRouteModel 解析演算方法
func ParseRouteModel(s string) (RouteModel, bool) {
	i := findMatch(s, RouteModelWords)
	return RouteModel(i), i >= 0
}

// FlowUnits 流量单位
type FlowUnits int

const (
	CFS FlowUnits = iota
	GPM
	MGD
	CMS
	LPS
	MLD
)

var FlowUnitWords = []string{"CFS", "GPM", "MGD", "CMS", "LPS", "MLD"}

// flowFactors 内部单位(CMS)到各流量单位的换算系数
var flowFactors = []float64{35.31467, 15850.32, 22.82447, 1.0, 1000.0, 86.4}

func (u FlowUnits) String() string { return wordOf(int(u), FlowUnitWords) }

// Factor 由内部流量(m³/s)换算到该单位的系数
func (u FlowUnits) Factor() float64 {
	if u < 0 || int(u) >= len(flowFactors) {
		return 1
	}
	return flowFactors[u]
}

// ParseFlowUnits 解析流量单位
func ParseFlowUnits(s string) (FlowUnits, bool) {
	i := findMatch(s, FlowUnitWords)
	return FlowUnits(i), i >= 0
}

// ConcUnits 水质浓度单位
type ConcUnits int

const (
	MgPerL ConcUnits = iota
	UgPerL
	CountPerL
)

var ConcUnitWords = []string{"MG/L", "UG/L", "#/L"}

// LoadUnitWords 水质连续性表格中使用的负荷单位
var LoadUnitWords = []string{"kg", "kg", "Mcount"}

func (u ConcUnits) String() string { return wordOf(int(u), ConcUnitWords) }

// LoadUnits 负荷单位
func (u ConcUnits) LoadUnits() string { return wordOf(int(u), LoadUnitWords) }

// MassFactor 浓度×体积(m³)换算到负荷单位的系数
func (u ConcUnits) MassFactor() float64 {
	switch u {
	case MgPerL:
		return 1e-3 // mg/L*m³ = g -> kg
	case UgPerL:
		return 1e-6
	default:
		return 1e3 * 1e-6 // #/L*m³ -> 10^6 count
	}
}

// ParseConcUnits 解析浓度单位
func ParseConcUnits(s string) (ConcUnits, bool) {
	i := findMatch(s, ConcUnitWords)
	return ConcUnits(i), i >= 0
}

// TempUnits 水温单位
type TempUnits int

const (
	Celsius TempUnits = iota
	Fahrenheit
)

var TempUnitWords = []string{"C", "F"}

func (u TempUnits) String() string { return wordOf(int(u), TempUnitWords) }

// ParseTempUnits 解析水温单位
func ParseTempUnits(s string) (TempUnits, bool) {
	i := findMatch(s, TempUnitWords)
	return TempUnits(i), i >= 0
}

// InflowCategory 入流来源分类,各分类互斥
type InflowCategory int

const (
	DryWeather  InflowCategory = iota // 旱季入流
	WetWeather                        // 雨季入流
	Groundwater                       // 地下水入流
	RDII                              // 降雨入渗入流
	External                          // 外部直接入流(含接口文件)
	numInflowCategory
)

// NumInflowCategory 入流分类数量
const NumInflowCategory = int(numInflowCategory)

var InflowCategoryWords = []string{"DWF", "WET", "GW", "RDII", "EXTERNAL"}

func (c InflowCategory) String() string { return wordOf(int(c), InflowCategoryWords) }

// ParseInflowCategory 解析入流分类
func ParseInflowCategory(s string) (InflowCategory, bool) {
	i := findMatch(s, InflowCategoryWords)
	return InflowCategory(i), i >= 0
}

// ObjectType 统计对象类型
type ObjectType int

const (
	NodeObject ObjectType = iota
	LinkObject
)

var objectTypeWords = []string{"Node", "Link"}

func (t ObjectType) String() string { return wordOf(int(t), objectTypeWords) }

func wordOf(i int, words []string) string {
	if i < 0 || i >= len(words) {
		return "Unknown"
	}
	return words[i]
}
