package handler

import (
	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

// EmployeeHandler 员工模块 HTTP 处理器
type EmployeeHandler struct {
	scheduleSvc service.ScheduleService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(scheduleSvc service.ScheduleService) *EmployeeHandler {
	return &EmployeeHandler{scheduleSvc: scheduleSvc}
}

// Create 新增员工
// POST /api/v1/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.Created(c, h.scheduleSvc.AddEmployee(&req))
}

// Delete 删除员工并级联删除其单元格
// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 20001, "员工ID不能为空")
		return
	}
	response.OK(c, h.scheduleSvc.RemoveEmployee(id))
}

// Reorder 整体替换员工顺序
// PUT /api/v1/employees/order
func (h *EmployeeHandler) Reorder(c *gin.Context) {
	var req dto.ReorderEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}
	response.OK(c, h.scheduleSvc.ReorderEmployees(&req))
}
