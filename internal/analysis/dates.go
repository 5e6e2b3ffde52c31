package analysis

import "time"

const DateLayout = "2006-01-02"

// DayStart 返回 t 所在日期的零点（保留时区）
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate 按 loc 解析 yyyy-mm-dd
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// DatesInRange 列出 [start, end] 内的每一个日历日，end 早于 start 时返回 ErrInvalidRange
func DatesInRange(start, end time.Time) ([]time.Time, error) {
	from := DayStart(start)
	to := DayStart(end.In(start.Location()))
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	dates := make([]time.Time, 0, civilDay(to)-civilDay(from)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// civilDay 把日历日换算成连续的整数，不受夏令时影响
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
