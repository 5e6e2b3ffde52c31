package util

// 分析结果缓存键前缀
const (
	CachePrefixPeriod = "analysis:period"
	CachePrefixStreak = "analysis:streak"
)
