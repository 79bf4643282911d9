package types

// Pollutant 污染物定义,加载后只读
type Pollutant struct {
	ID    string    // 名称
	Index int       // 索引
	Units ConcUnits // 浓度单位
	Decay float64   // 一阶衰减系数 (1/day)
}

// Temperature 水温变量定义
type Temperature struct {
	ID     string    // 名称
	Units  TempUnits // 单位
	Active bool      // 是否启用水温演算
}
