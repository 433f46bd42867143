package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

// ViewHandler 派生视图 HTTP 处理器
type ViewHandler struct {
	scheduleSvc service.ScheduleService
}

// NewViewHandler 创建 ViewHandler
func NewViewHandler(scheduleSvc service.ScheduleService) *ViewHandler {
	return &ViewHandler{scheduleSvc: scheduleSvc}
}

// Grid 获取排班网格
// GET /api/v1/views/grid
func (h *ViewHandler) Grid(c *gin.Context) {
	grid, err := h.scheduleSvc.Grid()
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, grid)
}

// Statistics 获取逐周班次统计
// GET /api/v1/views/statistics
func (h *ViewHandler) Statistics(c *gin.Context) {
	stats, err := h.scheduleSvc.Statistics()
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, stats)
}

// Weeks 获取按周分组的工作日
// GET /api/v1/views/weeks
func (h *ViewHandler) Weeks(c *gin.Context) {
	weeks, err := h.scheduleSvc.WeekGroups()
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, gin.H{"weeks": weeks})
}

// Holidays 获取法定节假日。三种调用方式：
// ?year=2024 整年；?start=&end= 任意区间；无参数时使用当前文档区间
// GET /api/v1/views/holidays
func (h *ViewHandler) Holidays(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 1583 || year > 9999 {
			response.BadRequest(c, 20001, "year 参数非法")
			return
		}
		start, end = fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
	}

	holidays, err := h.scheduleSvc.HolidaysInRange(start, end)
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, dto.HolidaysResponse{Holidays: holidays})
}

// Employees 获取按当前筛选条件过滤后的员工列表
// GET /api/v1/views/employees
func (h *ViewHandler) Employees(c *gin.Context) {
	response.OK(c, gin.H{"list": h.scheduleSvc.FilteredEmployees()})
}

func (h *ViewHandler) handleViewError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrScheduleRangeInvalid) {
		response.BadRequest(c, 20301, "排班区间日期格式非法")
		return
	}
	response.InternalError(c)
}
