package calendar

import (
	"testing"
	"time"
)

// ── BuildWeekdayGroups 测试 ──

func TestBuildWeekdayGroups_SingleWeek(t *testing.T) {
	// 2024-01-01 是周一，2024-01-07 是周日
	groups, err := BuildWeekdayGroups("2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("BuildWeekdayGroups 应成功: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("期望 1 个分组，实际 %d", len(groups))
	}
	if groups[0].Index != 0 {
		t.Errorf("期望 Index=0，实际 %d", groups[0].Index)
	}
	if len(groups[0].Days) != 5 {
		t.Fatalf("期望 5 个工作日，实际 %d", len(groups[0].Days))
	}
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	for i, day := range groups[0].Days {
		if day.Key != want[i] {
			t.Errorf("第 %d 天期望 %s，实际 %s", i, want[i], day.Key)
		}
	}
}

func TestBuildWeekdayGroups_WeekendOnly(t *testing.T) {
	// 仅覆盖一个周末 → 空结果
	groups, err := BuildWeekdayGroups("2024-01-06", "2024-01-07")
	if err != nil {
		t.Fatalf("BuildWeekdayGroups 应成功: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("期望空分组，实际 %d 个", len(groups))
	}
}

func TestBuildWeekdayGroups_MidWeekStart(t *testing.T) {
	// 2024-01-10 是周三：首组仅含周三至周五
	groups, err := BuildWeekdayGroups("2024-01-10", "2024-01-21")
	if err != nil {
		t.Fatalf("BuildWeekdayGroups 应成功: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("期望 2 个分组，实际 %d", len(groups))
	}
	if len(groups[0].Days) != 3 {
		t.Errorf("首组期望 3 个工作日，实际 %d", len(groups[0].Days))
	}
	if len(groups[1].Days) != 5 {
		t.Errorf("第二组期望 5 个工作日，实际 %d", len(groups[1].Days))
	}
	// 分组编号必须连续
	for i, g := range groups {
		if g.Index != i {
			t.Errorf("分组 %d 的 Index 期望 %d，实际 %d", i, i, g.Index)
		}
	}
	// 周起始日期为周一
	if FormatDate(groups[0].Start) != "2024-01-08" {
		t.Errorf("首组周起始期望 2024-01-08，实际 %s", FormatDate(groups[0].Start))
	}
}

func TestBuildWeekdayGroups_InvalidDate(t *testing.T) {
	if _, err := BuildWeekdayGroups("not-a-date", "2024-01-07"); err == nil {
		t.Error("非法日期应返回错误")
	}
}

func TestFlattenWeekdays(t *testing.T) {
	groups, err := BuildWeekdayGroups("2024-01-01", "2024-01-12")
	if err != nil {
		t.Fatalf("BuildWeekdayGroups 应成功: %v", err)
	}
	days := FlattenWeekdays(groups)
	if len(days) != 10 {
		t.Fatalf("期望 10 个工作日，实际 %d", len(days))
	}
	if days[0].Key != "2024-01-01" || days[9].Key != "2024-01-12" {
		t.Errorf("平铺顺序异常: 首=%s 末=%s", days[0].Key, days[9].Key)
	}
}

func TestMondayOnOrBefore(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-08", "2024-01-08"}, // 周一保持不变
		{"2024-01-10", "2024-01-08"}, // 周三回溯
		{"2024-01-14", "2024-01-08"}, // 周日回溯
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("ParseDate 应成功: %v", err)
		}
		got := FormatDate(MondayOnOrBefore(d))
		if got != tc.want {
			t.Errorf("MondayOnOrBefore(%s) 期望 %s，实际 %s", tc.in, tc.want, got)
		}
	}
}

// ── 节假日测试 ──

func TestHolidaysForYear_2024(t *testing.T) {
	holidays := HolidaysForYear(2024)

	// 复活节 2024 = 3 月 31 日
	cases := map[string]string{
		"2024-01-01": "Neujahr",
		"2024-03-29": "Karfreitag",
		"2024-04-01": "Ostermontag",
		"2024-05-01": "Tag der Arbeit",
		"2024-05-09": "Christi Himmelfahrt",
		"2024-05-20": "Pfingstmontag",
		"2024-10-03": "Tag der Deutschen Einheit",
		"2024-10-31": "Reformationstag",
		"2024-12-25": "1. Weihnachtstag",
		"2024-12-26": "2. Weihnachtstag",
	}
	for key, want := range cases {
		if got := holidays[key]; got != want {
			t.Errorf("%s 期望 %q，实际 %q", key, want, got)
		}
	}
	if len(holidays) != len(cases) {
		t.Errorf("期望 %d 个节假日，实际 %d", len(cases), len(holidays))
	}
}

func TestEasterSunday_KnownYears(t *testing.T) {
	cases := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
	}
	for year, want := range cases {
		got := FormatDate(easterSunday(year))
		if got != want {
			t.Errorf("复活节 %d 期望 %s，实际 %s", year, want, got)
		}
	}
}

func TestHolidayResolver_CachesPerYear(t *testing.T) {
	r := NewHolidayResolver()
	first := r.Year(2024)
	second := r.Year(2024)
	// 同一年份必须命中缓存（返回同一 map）
	if &first == &second {
		// map 比较地址无意义，这里通过写入侧面验证
	}
	first["probe"] = "x"
	if second["probe"] != "x" {
		t.Error("同一年份应返回缓存的同一张表")
	}
}

func TestHolidayResolver_InRange_CrossYear(t *testing.T) {
	r := NewHolidayResolver()
	holidays, err := r.InRange("2024-12-20", "2025-01-05")
	if err != nil {
		t.Fatalf("InRange 应成功: %v", err)
	}
	if holidays["2024-12-25"] != "1. Weihnachtstag" {
		t.Errorf("期望包含 2024-12-25")
	}
	if holidays["2024-12-26"] != "2. Weihnachtstag" {
		t.Errorf("期望包含 2024-12-26")
	}
	if holidays["2025-01-01"] != "Neujahr" {
		t.Errorf("期望包含 2025-01-01")
	}
	if _, ok := holidays["2024-10-03"]; ok {
		t.Error("区间外日期不应出现")
	}
}

func TestHolidayResolver_InRange_InvalidDate(t *testing.T) {
	r := NewHolidayResolver()
	if _, err := r.InRange("bad", "2024-01-01"); err == nil {
		t.Error("非法日期应返回错误")
	}
}

func TestWeekdayDatesAreUTC(t *testing.T) {
	d, err := ParseDate("2024-06-03")
	if err != nil {
		t.Fatalf("ParseDate 应成功: %v", err)
	}
	if d.Location() != time.UTC {
		t.Errorf("日期应按 UTC 解析，实际 %v", d.Location())
	}
}
