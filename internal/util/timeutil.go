package util

import (
	"fmt"
	"strings"
	"time"
)

// FixedZone 以整点偏移构造固定时区，如 8 -> UTC+8
func FixedZone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// DayWindow 返回 loc 时区下某一天的 [start, end) 区间（UTC）
// date 为空时取 now 所在的那一天
func DayWindow(date string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		local := now.In(loc)
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	} else {
		parsed, err := time.ParseInLocation(DateFormat, strings.TrimSpace(date), loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidDate
		}
		day = parsed
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}

// ParseSubmitTime 接受 RFC3339 或 "YYYY-MM-DD HH:mm:ss"（按 loc 解释）
func ParseSubmitTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{TimeFormat, "2006/01/02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04", DateFormat} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid submit time %q", value)
}

// FormatLocal 以 "YYYY-MM-DD HH:mm:ss" 输出 loc 时区时间
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimeFormat)
}
