package dto

// ── 派生视图 DTO ──

// DayResponse 单个工作日列
type DayResponse struct {
	Date     string `json:"date"`
	Holiday  string `json:"holiday,omitempty"`
	Editable bool   `json:"editable"`
}

// WeekGroupResponse 按周分组的工作日
type WeekGroupResponse struct {
	Index     int           `json:"index"`
	Label     string        `json:"label"`
	WeekStart string        `json:"week_start"`
	Days      []DayResponse `json:"days"`
}

// GridRowResponse 网格中的一行，shifts 与扁平化的工作日列一一对应
type GridRowResponse struct {
	EmployeeID string   `json:"employee_id"`
	Name       string   `json:"name"`
	Role       string   `json:"role,omitempty"`
	Shifts     []string `json:"shifts"`
}

// GridResponse 排班网格响应
type GridResponse struct {
	RangeStart string              `json:"range_start"`
	RangeEnd   string              `json:"range_end"`
	Weeks      []WeekGroupResponse `json:"weeks"`
	Days       []DayResponse       `json:"days"`
	Rows       []GridRowResponse   `json:"rows"`
}

// EmployeeStatsResponse 单个员工的逐周班次统计
type EmployeeStatsResponse struct {
	EmployeeID string           `json:"employee_id"`
	Name       string           `json:"name"`
	PerWeek    []map[string]int `json:"per_week"`
}

// StatisticsResponse 班次统计响应
type StatisticsResponse struct {
	WeekLabels []string                `json:"week_labels"`
	ShiftTypes []string                `json:"shift_types"`
	Rows       []EmployeeStatsResponse `json:"rows"`
}

// HolidaysResponse 指定区间内的法定节假日响应
type HolidaysResponse struct {
	Holidays map[string]string `json:"holidays"`
}
