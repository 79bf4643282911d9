package massbal

import (
	"math"

	"hydroroute/types"
)

// Totals 演算连续性累计量,流量、各污染物和水温各一份
//
//	PctError 只在运行结束时由其他各项推导,不参与累加。
type Totals struct {
	DwInflow     float64 // 旱季入流
	WwInflow     float64 // 雨季入流
	GwInflow     float64 // 地下水入流
	IiInflow     float64 // RDII 入流
	ExInflow     float64 // 外部入流
	Outflow      float64 // 外部出流
	Flooding     float64 // 溢流损失
	EvapLoss     float64 // 蒸发损失
	SeepLoss     float64 // 渗漏损失
	Reacted      float64 // 反应损失
	InitStorage  float64 // 初始蓄量
	FinalStorage float64 // 最终蓄量
	PctError     float64 // 连续性误差(%)
}

// AddInflow 按入流分类累加
func (t *Totals) AddInflow(cat types.InflowCategory, v float64) {
	switch cat {
	case types.DryWeather:
		t.DwInflow += v
	case types.WetWeather:
		t.WwInflow += v
	case types.Groundwater:
		t.GwInflow += v
	case types.RDII:
		t.IiInflow += v
	default:
		t.ExInflow += v
	}
}

// TotalIn 入流与初始蓄量之和
func (t *Totals) TotalIn() float64 {
	return t.DwInflow + t.WwInflow + t.GwInflow + t.IiInflow + t.ExInflow + t.InitStorage
}

// TotalOut 出流、损失与最终蓄量之和
func (t *Totals) TotalOut() float64 {
	return t.Outflow + t.Flooding + t.EvapLoss + t.SeepLoss + t.Reacted + t.FinalStorage
}

// Finalize 推导连续性误差,无流量时为零
func (t *Totals) Finalize() {
	t.PctError = PercentError(t.TotalIn(), t.TotalOut())
}

// PercentError 100*(入-出)/max(入,出,ε)
func PercentError(in, out float64) float64 {
	d := math.Max(math.Max(in, out), types.Epsilon)
	if math.Abs(in-out) < types.Epsilon {
		return 0
	}
	return 100 * (in - out) / d
}
