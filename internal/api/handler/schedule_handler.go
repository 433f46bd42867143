package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

// ScheduleHandler 排班文档 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// GetSchedule 获取当前排班文档与会话状态
// GET /api/v1/schedule
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	response.OK(c, h.scheduleSvc.State())
}

// LoadSchedule 从持久化网关重新加载文档
// POST /api/v1/schedule/load
func (h *ScheduleHandler) LoadSchedule(c *gin.Context) {
	state, err := h.scheduleSvc.Load(c.Request.Context())
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, state)
}

// SaveSchedule 将当前文档写入持久化网关
// POST /api/v1/schedule/save
func (h *ScheduleHandler) SaveSchedule(c *gin.Context) {
	if err := h.scheduleSvc.Save(c.Request.Context()); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, h.scheduleSvc.State())
}

// UpdateCell 写入或删除单元格
// PUT /api/v1/schedule/cells
func (h *ScheduleHandler) UpdateCell(c *gin.Context) {
	var req dto.UpdateCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.UpsertCell(&req))
}

// UpdateLegend 整体替换图例
// PUT /api/v1/schedule/legend
func (h *ScheduleHandler) UpdateLegend(c *gin.Context) {
	var req dto.UpdateLegendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.SetLegend(&req))
}

// UpdateNotes 整体替换备注
// PUT /api/v1/schedule/notes
func (h *ScheduleHandler) UpdateNotes(c *gin.Context) {
	var req dto.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.SetNotes(&req))
}

// ApplyCalendarSettings 重设排班区间
// PUT /api/v1/schedule/calendar
func (h *ScheduleHandler) ApplyCalendarSettings(c *gin.Context) {
	var req dto.CalendarSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	state, err := h.scheduleSvc.ApplyCalendarSettings(&req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, state)
}

// FillRow 整行批量填充
// POST /api/v1/schedule/rows/:employeeId/fill
func (h *ScheduleHandler) FillRow(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if employeeID == "" {
		response.BadRequest(c, 20001, "employeeId不能为空")
		return
	}

	// 请求体可省略，省略时填充默认班次
	var req dto.FillRowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 20001, "参数校验失败")
			return
		}
	}

	state, err := h.scheduleSvc.FillRow(employeeID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, state)
}

// ClearRow 整行清空
// POST /api/v1/schedule/rows/:employeeId/clear
func (h *ScheduleHandler) ClearRow(c *gin.Context) {
	employeeID := c.Param("employeeId")
	if employeeID == "" {
		response.BadRequest(c, 20001, "employeeId不能为空")
		return
	}
	state, err := h.scheduleSvc.ClearRow(employeeID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, state)
}

// Undo 撤销上一次变更，撤销栈为空时原样返回当前状态
// POST /api/v1/schedule/undo
func (h *ScheduleHandler) Undo(c *gin.Context) {
	response.OK(c, h.scheduleSvc.Undo())
}

// Redo 重做上一次撤销，重做栈为空时原样返回当前状态
// POST /api/v1/schedule/redo
func (h *ScheduleHandler) Redo(c *gin.Context) {
	response.OK(c, h.scheduleSvc.Redo())
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 20201, "员工不存在")
	case errors.Is(err, service.ErrScheduleRangeInvalid):
		response.BadRequest(c, 20301, "排班区间日期格式非法")
	case errors.Is(err, service.ErrPersistenceUnavailable):
		response.BadGateway(c, 20401, "持久化后端不可用")
	default:
		response.InternalError(c)
	}
}
