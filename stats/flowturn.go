package stats

// IsFlowTurn 三点检测:中间值严格大于或严格小于两侧值时为折返
func IsFlowTurn(prev, cur, next float64) bool {
	return (cur > prev && cur > next) || (cur < prev && cur < next)
}

// CountFlowTurns 统计流量序列中严格局部极值的数量,首尾样本不计
func CountFlowTurns(series []float64) int {
	count := 0
	for i := 1; i+1 < len(series); i++ {
		if IsFlowTurn(series[i-1], series[i], series[i+1]) {
			count++
		}
	}
	return count
}
