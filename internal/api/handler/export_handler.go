package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypeICS  = "text/calendar"

	// importMaxFileSize 导入文件大小上限
	importMaxFileSize = 10 * 1024 * 1024
)

// ExportHandler 导出/导入模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportExcel 导出排班矩阵为 Excel
// GET /api/v1/export/schedule.xlsx
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportExcel()
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportPDF 导出排班矩阵为 PDF
// GET /api/v1/export/schedule.pdf
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportPDF()
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, contentTypePDF, filename, buf.Bytes())
}

// ExportICS 导出单个员工的班次日历
// GET /api/v1/export/employees/:id/calendar.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 20001, "员工ID不能为空")
		return
	}
	buf, filename, err := h.exportSvc.ExportEmployeeICS(id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeDownload(c, contentTypeICS, filename, buf.Bytes())
}

// Import 导入 Excel 排班矩阵，multipart 字段名为 file
// POST /api/v1/import/schedule
func (h *ExportHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 21001, "缺少上传文件")
		return
	}
	if fileHeader.Size > importMaxFileSize {
		response.BadRequest(c, 21002, "上传文件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 21003, "上传文件无法读取")
		return
	}
	defer f.Close()

	result, err := h.exportSvc.ImportExcel(f)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 20201, "员工不存在")
	case errors.Is(err, service.ErrScheduleRangeInvalid):
		response.BadRequest(c, 20301, "排班区间日期格式非法")
	case errors.Is(err, service.ErrImportFileInvalid):
		response.BadRequest(c, 21004, "导入文件无法解析")
	case errors.Is(err, service.ErrImportNoRows):
		response.BadRequest(c, 21005, "导入文件中没有数据行")
	default:
		response.InternalError(c)
	}
}

// writeDownload 设置下载响应头并写入文件内容
func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
