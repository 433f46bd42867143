package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dienstplan/backend/internal/calendar"
	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
	ErrImportFileInvalid  = errors.New("导入文件无法解析")
	ErrImportNoRows       = errors.New("导入文件中没有数据行")
)

// ExportService 导出/导入业务接口
//
// 设计说明：
//   - 导出数据来自内存中的排班文档，不直接访问持久化网关
//   - Excel/PDF 输出整个区间的日历矩阵，表头日期为 DD.MM.YYYY
//   - ICS 按员工导出，每个单元格一条全天事件
//   - 导入解析 Excel 矩阵并逐格回放到排班文档，跳过的行列计数返回
type ExportService interface {
	ExportExcel() (*bytes.Buffer, string, error)
	ExportPDF() (*bytes.Buffer, string, error)
	ExportEmployeeICS(employeeID string) (*bytes.Buffer, string, error)
	ImportExcel(r io.Reader) (*dto.ImportResultResponse, error)
}

type exportService struct {
	schedule ScheduleService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedule ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{schedule: schedule, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel — 导出排班矩阵为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Dienstplan"
//   - 第 1 行表头: | Mitarbeiter | 01.01.2024 | 02.01.2024 | … |
//   - 每个员工一行，单元格为班次代码，空白处为空串
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportExcel() (*bytes.Buffer, string, error) {
	header, rows, err := s.schedule.ExportMatrix()
	if err != nil {
		return nil, "", err
	}
	doc := s.schedule.Document()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Dienstplan"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽: 姓名列宽，日期列窄
	f.SetColWidth(sheetName, "A", "A", 24)
	lastCol := colName(len(header) - 1)
	f.SetColWidth(sheetName, "B", lastCol, 11)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#005F73"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range header {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(lastCol, 1), headerStyle)

	row := 2
	for _, r := range rows {
		for i, v := range r {
			if v == "" {
				continue
			}
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("dienstplan_%s_%s.xlsx", doc.RangeStart, doc.RangeEnd)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportPDF — 导出排班矩阵为 PDF
// ═══════════════════════════════════════════════════════════
//
// 横向 A3，表头填充深色，数据行隔行填充浅色；
// 列宽按页面宽度与列数均分，姓名列加倍

func (s *exportService) ExportPDF() (*bytes.Buffer, string, error) {
	header, rows, err := s.schedule.ExportMatrix()
	if err != nil {
		return nil, "", err
	}
	doc := s.schedule.Document()

	pdf := fpdf.New("L", "mm", "A3", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(8, 10, 8)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Dienstplan %s - %s", doc.RangeStart, doc.RangeEnd)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 16
	// 姓名列占两份宽度
	unit := usable / float64(len(header)+1)
	nameWidth := unit * 2

	pdf.SetFont("Helvetica", "B", 6.5)
	pdf.SetFillColor(0, 95, 115)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		w := unit
		if i == 0 {
			w = nameWidth
		}
		pdf.CellFormat(w, 6, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 6.5)
	pdf.SetTextColor(0, 0, 0)
	for ri, r := range rows {
		fill := ri%2 == 1
		pdf.SetFillColor(233, 216, 166)
		for i, v := range r {
			w := unit
			align := "C"
			if i == 0 {
				w = nameWidth
				align = "L"
			}
			pdf.CellFormat(w, 5.5, tr(v), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("写入 PDF 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("dienstplan_%s_%s.pdf", doc.RangeStart, doc.RangeEnd)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportEmployeeICS — 导出单个员工的班次为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每个单元格生成一条全天事件，标题为班次代码，
// 描述为图例中的班次说明（若有）

func (s *exportService) ExportEmployeeICS(employeeID string) (*bytes.Buffer, string, error) {
	doc := s.schedule.Document()

	var employee *model.Employee
	for i := range doc.Employees {
		if doc.Employees[i].ID == employeeID {
			employee = &doc.Employees[i]
			break
		}
	}
	if employee == nil {
		return nil, "", ErrEmployeeNotFound
	}

	var cells []model.ScheduleCell
	for _, c := range doc.Cells {
		if c.EmployeeID == employeeID {
			cells = append(cells, c)
		}
	}
	sortCellsByDate(cells)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//dienstplan//backend//DE")

	now := time.Now().UTC()
	for _, c := range cells {
		day, err := calendar.ParseDate(c.Date)
		if err != nil {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s-%s@dienstplan", c.EmployeeID, c.Date))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s: %s", employee.Name, c.ShiftType))
		if desc, ok := doc.Legend[c.ShiftType]; ok && desc != "" {
			event.SetDescription(desc)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("dienstplan_%s.ics", sanitizeFilename(employee.Name))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ImportExcel — 解析 Excel 矩阵并回放到排班文档
// ═══════════════════════════════════════════════════════════
//
// 期望格式与 ExportExcel 输出一致：
//   - 第 1 行表头: 首列任意标签，其余列为 DD.MM.YYYY 日期
//   - 数据行首列为员工姓名，按姓名精确匹配现有员工
//   - 无法解析的日期列与未匹配的员工行跳过并计数，不中断导入

func (s *exportService) ImportExcel(r io.Reader) (*dto.ImportResultResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportFileInvalid
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportFileInvalid
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, ErrImportFileInvalid
	}
	if len(rows) < 2 {
		return nil, ErrImportNoRows
	}

	result := &dto.ImportResultResponse{}

	// 表头: 列号 → ISO 日期，解析失败的列跳过
	dateByColumn := make(map[int]string)
	for col := 1; col < len(rows[0]); col++ {
		label := strings.TrimSpace(rows[0][col])
		if label == "" {
			continue
		}
		parsed, err := time.Parse("02.01.2006", label)
		if err != nil {
			result.SkippedColumns++
			continue
		}
		dateByColumn[col] = calendar.FormatDate(parsed)
	}

	employeeByName := make(map[string]string)
	for _, e := range s.schedule.Document().Employees {
		employeeByName[e.Name] = e.ID
	}

	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		employeeID, ok := employeeByName[name]
		if !ok {
			result.SkippedRows++
			continue
		}
		for col := 1; col < len(row); col++ {
			date, ok := dateByColumn[col]
			if !ok {
				continue
			}
			shift := strings.TrimSpace(row[col])
			if shift == "" {
				continue
			}
			s.schedule.UpsertCell(&dto.UpdateCellRequest{
				EmployeeID: employeeID,
				Date:       date,
				ShiftType:  shift,
			})
			result.ImportedCells++
		}
	}

	return result, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-")
	return replacer.Replace(strings.TrimSpace(name))
}
