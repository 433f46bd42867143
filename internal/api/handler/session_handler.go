package handler

import (
	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

// SessionHandler 会话状态 HTTP 处理器。
// 管理模式只是界面开关，不构成权限边界
type SessionHandler struct {
	scheduleSvc service.ScheduleService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(scheduleSvc service.ScheduleService) *SessionHandler {
	return &SessionHandler{scheduleSvc: scheduleSvc}
}

// SetAdmin 切换管理模式
// PUT /api/v1/session/admin
func (h *SessionHandler) SetAdmin(c *gin.Context) {
	var req dto.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.SetAdmin(*req.IsAdmin))
}

// SetFilters 更新筛选条件
// PUT /api/v1/session/filters
func (h *SessionHandler) SetFilters(c *gin.Context) {
	var req dto.SetFiltersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.SetFilters(&req))
}
