package util

import (
	"strconv"
	"time"

	"nutritrack_backend/internal/analysis"

	"github.com/gin-gonic/gin"
)

// MustParseUint 解析失败或为 0 时返回 0
func MustParseUint(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// ParseIDParam 读取路径参数中的正整数 ID
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id := MustParseUint(c.Param(name))
	return id, id != 0
}

// ParseDateQuery 读取 yyyy-mm-dd 查询参数，为空时使用 fallback
func ParseDateQuery(c *gin.Context, name string, fallback time.Time, loc *time.Location) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	t, err := analysis.ParseDate(raw, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
