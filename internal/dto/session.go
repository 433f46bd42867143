package dto

// ── 会话 DTO ──

// SetAdminRequest 切换管理模式请求
type SetAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// SetFiltersRequest 更新筛选条件请求
type SetFiltersRequest struct {
	NameQuery    string `json:"name_query"    binding:"omitempty,max=100"`
	ShiftType    string `json:"shift_type"    binding:"omitempty,max=50"`
	HighContrast bool   `json:"high_contrast"`
}

// ScheduleFilters 当前会话的筛选条件
type ScheduleFilters struct {
	NameQuery    string `json:"name_query"`
	ShiftType    string `json:"shift_type"`
	HighContrast bool   `json:"high_contrast"`
}
