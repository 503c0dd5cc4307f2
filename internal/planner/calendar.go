package planner

import "time"

// DateInterval 表示一个闭区间 [Start, End]，粒度为天
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// truncateToDay 把时间归一化到当天零点，保证区间运算只按天比较
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WorkingDays 统计闭区间内的工作日数量（排除周六和周日）。
// 区间为空或者起止颠倒时返回 0
func WorkingDays(interval DateInterval) int {
	start := truncateToDay(interval.Start)
	end := truncateToDay(interval.End)

	if end.Before(start) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		count++
	}

	return count
}

// Overlap 返回两个闭区间的交集。
// 区间是闭的，端点相接也算重叠
func Overlap(a DateInterval, b DateInterval) (DateInterval, bool) {
	aStart, aEnd := truncateToDay(a.Start), truncateToDay(a.End)
	bStart, bEnd := truncateToDay(b.Start), truncateToDay(b.End)

	start := aStart
	if bStart.After(start) {
		start = bStart
	}

	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}

	if end.Before(start) {
		return DateInterval{}, false
	}

	return DateInterval{Start: start, End: end}, true
}

// ContainsDate 判断某个日期是否落在闭区间内
func ContainsDate(interval DateInterval, date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(truncateToDay(interval.Start)) && !d.After(truncateToDay(interval.End))
}
