package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dienstplan/backend/config"
	"dienstplan/backend/internal/calendar"
	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/model"
	"dienstplan/backend/internal/repository"
)

// ── 排班文档模块业务错误 ──

var (
	ErrPersistenceUnavailable = errors.New("持久化后端不可用")
	ErrScheduleRangeInvalid   = errors.New("排班区间日期格式非法")
	ErrEmployeeNotFound       = errors.New("员工不存在")
)

// historyLimit 撤销/重做栈的最大深度，超出时丢弃最旧的快照
const historyLimit = 50

// ScheduleService 排班文档业务接口。
// 文档整体驻留内存，所有变更操作先压入撤销栈再修改当前文档，
// Load/Save 与持久化网关交互，其余操作均为纯内存状态机。
type ScheduleService interface {
	State() *dto.ScheduleStateResponse
	Load(ctx context.Context) (*dto.ScheduleStateResponse, error)
	Save(ctx context.Context) error

	UpsertCell(req *dto.UpdateCellRequest) *dto.ScheduleStateResponse
	SetLegend(req *dto.UpdateLegendRequest) *dto.ScheduleStateResponse
	SetNotes(req *dto.UpdateNotesRequest) *dto.ScheduleStateResponse
	AddEmployee(req *dto.CreateEmployeeRequest) *dto.ScheduleStateResponse
	RemoveEmployee(id string) *dto.ScheduleStateResponse
	ReorderEmployees(req *dto.ReorderEmployeesRequest) *dto.ScheduleStateResponse
	ApplyCalendarSettings(req *dto.CalendarSettingsRequest) (*dto.ScheduleStateResponse, error)
	FillRow(employeeID string, req *dto.FillRowRequest) (*dto.ScheduleStateResponse, error)
	ClearRow(employeeID string) (*dto.ScheduleStateResponse, error)
	Undo() *dto.ScheduleStateResponse
	Redo() *dto.ScheduleStateResponse

	SetAdmin(isAdmin bool) *dto.ScheduleStateResponse
	SetFilters(req *dto.SetFiltersRequest) *dto.ScheduleStateResponse

	Grid() (*dto.GridResponse, error)
	Statistics() (*dto.StatisticsResponse, error)
	WeekGroups() ([]dto.WeekGroupResponse, error)
	HolidaysInRange(start, end string) (map[string]string, error)

	Document() *model.ScheduleDocument
	FilteredEmployees() []model.Employee
	ExportMatrix() (header []string, rows [][]string, err error)
}

type scheduleService struct {
	repo     *repository.Repository
	logger   *zap.Logger
	holidays *calendar.HolidayResolver

	defaultShift string

	mu        sync.Mutex
	doc       *model.ScheduleDocument
	undoStack []*model.ScheduleDocument
	redoStack []*model.ScheduleDocument
	loading   bool
	isAdmin   bool
	filters   dto.ScheduleFilters
}

// NewScheduleService 创建 ScheduleService 实例，初始文档为空白默认文档，
// 启动时应随后调用一次 Load 从持久化网关拉取真实数据
func NewScheduleService(repo *repository.Repository, cfg *config.ScheduleConfig, logger *zap.Logger) ScheduleService {
	start := calendar.MondayOnOrBefore(time.Now().UTC())
	end := start.AddDate(0, 0, cfg.DefaultWeeks*7-1)
	return &scheduleService{
		repo:         repo,
		logger:       logger,
		holidays:     calendar.NewHolidayResolver(),
		defaultShift: cfg.DefaultShift,
		doc:          model.NewDefaultDocument(calendar.FormatDate(start), calendar.FormatDate(end)),
	}
}

// ────────────────────── 状态快照 ──────────────────────

// stateLocked 构造当前状态的响应，调用方必须持有 s.mu。
// 文档做深拷贝，避免响应序列化与后续变更产生数据竞争
func (s *scheduleService) stateLocked() *dto.ScheduleStateResponse {
	return &dto.ScheduleStateResponse{
		Document: s.doc.Clone(),
		IsAdmin:  s.isAdmin,
		Loading:  s.loading,
		Filters:  s.filters,
		CanUndo:  len(s.undoStack) > 0,
		CanRedo:  len(s.redoStack) > 0,
	}
}

func (s *scheduleService) State() *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// pushHistoryLocked 将当前文档压入撤销栈并清空重做栈，调用方必须持有 s.mu
func (s *scheduleService) pushHistoryLocked() {
	s.undoStack = append(s.undoStack, s.doc.Clone())
	if len(s.undoStack) > historyLimit {
		s.undoStack = s.undoStack[len(s.undoStack)-historyLimit:]
	}
	s.redoStack = nil
}

// ────────────────────── Load / Save ──────────────────────

// Load 从持久化网关加载文档。加载期间不持锁，当前文档保持可读；
// 加载成功后整体替换文档并清空两个历史栈
func (s *scheduleService) Load(ctx context.Context) (*dto.ScheduleStateResponse, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	doc, err := s.repo.Schedule.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Error("加载排班文档失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	s.doc = doc
	s.undoStack = nil
	s.redoStack = nil
	return s.stateLocked(), nil
}

// Save 将当前文档快照写入持久化网关。快照在取锁期间生成，
// 写入失败不影响内存中的文档与历史栈
func (s *scheduleService) Save(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.doc.Clone()
	s.mu.Unlock()

	if err := s.repo.Schedule.Save(ctx, snapshot); err != nil {
		s.logger.Error("保存排班文档失败", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return nil
}

// ────────────────────── 单元格 ──────────────────────

// UpsertCell 写入或删除单元格：空班次删除，已有单元格覆盖，否则追加。
// 每次调用都压入历史栈，与其他变更操作保持一致
func (s *scheduleService) UpsertCell(req *dto.UpdateCellRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()
	s.upsertCellLocked(req.EmployeeID, req.Date, req.ShiftType)
	return s.stateLocked()
}

func (s *scheduleService) upsertCellLocked(employeeID, date, shiftType string) {
	key := model.CellKey{EmployeeID: employeeID, Date: date}
	idx, exists := s.doc.CellIndex()[key]

	switch {
	case shiftType == "" && exists:
		s.doc.Cells = append(s.doc.Cells[:idx], s.doc.Cells[idx+1:]...)
	case shiftType == "":
		// 删除不存在的单元格是无操作
	case exists:
		s.doc.Cells[idx].ShiftType = shiftType
	default:
		s.doc.Cells = append(s.doc.Cells, model.ScheduleCell{
			EmployeeID: employeeID,
			Date:       date,
			ShiftType:  shiftType,
		})
	}
}

// ────────────────────── 图例 / 备注 ──────────────────────

func (s *scheduleService) SetLegend(req *dto.UpdateLegendRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()

	legend := make(map[string]string, len(req.Legend))
	for k, v := range req.Legend {
		legend[k] = v
	}
	s.doc.Legend = legend
	return s.stateLocked()
}

func (s *scheduleService) SetNotes(req *dto.UpdateNotesRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()
	s.doc.Notes = req.Notes
	return s.stateLocked()
}

// ────────────────────── 员工 ──────────────────────

func (s *scheduleService) AddEmployee(req *dto.CreateEmployeeRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	s.doc.Employees = append(s.doc.Employees, model.Employee{
		ID:   id,
		Name: req.Name,
		Role: req.Role,
	})
	return s.stateLocked()
}

// RemoveEmployee 删除员工并级联删除其全部单元格，未知 id 是无操作
func (s *scheduleService) RemoveEmployee(id string) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()

	employees := s.doc.Employees[:0]
	for _, e := range s.doc.Employees {
		if e.ID != id {
			employees = append(employees, e)
		}
	}
	s.doc.Employees = employees

	cells := s.doc.Cells[:0]
	for _, c := range s.doc.Cells {
		if c.EmployeeID != id {
			cells = append(cells, c)
		}
	}
	s.doc.Cells = cells
	return s.stateLocked()
}

// ReorderEmployees 整体替换员工列表，用于拖拽排序
func (s *scheduleService) ReorderEmployees(req *dto.ReorderEmployeesRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()
	s.doc.Employees = append([]model.Employee(nil), req.Employees...)
	return s.stateLocked()
}

// ────────────────────── 日历设置 ──────────────────────

// ApplyCalendarSettings 重设排班区间：区间起点对齐到所在周的周一，
// 终点为起点加 weeks*7-1 天。include_existing 为真时保留落在新区间内的
// 单元格，否则清空全部单元格
func (s *scheduleService) ApplyCalendarSettings(req *dto.CalendarSettingsRequest) (*dto.ScheduleStateResponse, error) {
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistoryLocked()

	monday := calendar.MondayOnOrBefore(start)
	s.doc.RangeStart = calendar.FormatDate(monday)
	s.doc.RangeEnd = calendar.FormatDate(monday.AddDate(0, 0, req.Weeks*7-1))

	if req.IncludeExisting {
		cells := s.doc.Cells[:0]
		for _, c := range s.doc.Cells {
			if c.Date >= s.doc.RangeStart && c.Date <= s.doc.RangeEnd {
				cells = append(cells, c)
			}
		}
		s.doc.Cells = cells
	} else {
		s.doc.Cells = nil
	}
	return s.stateLocked(), nil
}

// ────────────────────── 整行批量操作 ──────────────────────

// FillRow 将某员工在区间内所有工作日写为指定班次，已占用的单元格一并覆盖，
// 节假日跳过。每个单元格走一次常规写入，历史栈逐格压入
func (s *scheduleService) FillRow(employeeID string, req *dto.FillRowRequest) (*dto.ScheduleStateResponse, error) {
	shift := req.ShiftType
	if shift == "" {
		shift = s.defaultShift
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.employeeExistsLocked(employeeID) {
		return nil, ErrEmployeeNotFound
	}
	groups, err := calendar.BuildWeekdayGroups(s.doc.RangeStart, s.doc.RangeEnd)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}
	holidays, err := s.holidays.InRange(s.doc.RangeStart, s.doc.RangeEnd)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}

	for _, day := range calendar.FlattenWeekdays(groups) {
		if _, isHoliday := holidays[day.Key]; isHoliday {
			continue
		}
		s.pushHistoryLocked()
		s.upsertCellLocked(employeeID, day.Key, shift)
	}
	return s.stateLocked(), nil
}

// ClearRow 删除某员工在当前区间内的全部单元格，区间外的单元格保留
func (s *scheduleService) ClearRow(employeeID string) (*dto.ScheduleStateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.employeeExistsLocked(employeeID) {
		return nil, ErrEmployeeNotFound
	}

	s.pushHistoryLocked()
	cells := s.doc.Cells[:0]
	for _, c := range s.doc.Cells {
		if c.EmployeeID != employeeID || c.Date < s.doc.RangeStart || c.Date > s.doc.RangeEnd {
			cells = append(cells, c)
		}
	}
	s.doc.Cells = cells
	return s.stateLocked(), nil
}

func (s *scheduleService) employeeExistsLocked(id string) bool {
	for _, e := range s.doc.Employees {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ────────────────────── 撤销 / 重做 ──────────────────────

// Undo 撤销上一次变更；撤销栈为空时是无操作，返回当前状态
func (s *scheduleService) Undo() *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStack) == 0 {
		return s.stateLocked()
	}
	prev := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]

	s.redoStack = append(s.redoStack, s.doc)
	if len(s.redoStack) > historyLimit {
		s.redoStack = s.redoStack[len(s.redoStack)-historyLimit:]
	}
	s.doc = prev
	return s.stateLocked()
}

// Redo 重做上一次撤销；重做栈为空时是无操作，返回当前状态
func (s *scheduleService) Redo() *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStack) == 0 {
		return s.stateLocked()
	}
	next := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]

	s.undoStack = append(s.undoStack, s.doc)
	if len(s.undoStack) > historyLimit {
		s.undoStack = s.undoStack[len(s.undoStack)-historyLimit:]
	}
	s.doc = next
	return s.stateLocked()
}

// ────────────────────── 会话 ──────────────────────

func (s *scheduleService) SetAdmin(isAdmin bool) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isAdmin = isAdmin
	return s.stateLocked()
}

func (s *scheduleService) SetFilters(req *dto.SetFiltersRequest) *dto.ScheduleStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = dto.ScheduleFilters{
		NameQuery:    req.NameQuery,
		ShiftType:    req.ShiftType,
		HighContrast: req.HighContrast,
	}
	return s.stateLocked()
}

// ────────────────────── 派生视图 ──────────────────────

// FilteredEmployees 按当前筛选条件返回员工子集：
// 姓名子串匹配不区分大小写，班次筛选要求区间内存在该班次的单元格
func (s *scheduleService) FilteredEmployees() []model.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filteredEmployeesLocked()
}

func (s *scheduleService) filteredEmployeesLocked() []model.Employee {
	query := strings.ToLower(strings.TrimSpace(s.filters.NameQuery))

	result := make([]model.Employee, 0, len(s.doc.Employees))
	for _, e := range s.doc.Employees {
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if s.filters.ShiftType != "" && !s.hasShiftInRangeLocked(e.ID, s.filters.ShiftType) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func (s *scheduleService) hasShiftInRangeLocked(employeeID, shiftType string) bool {
	for _, c := range s.doc.Cells {
		if c.EmployeeID == employeeID && c.ShiftType == shiftType &&
			c.Date >= s.doc.RangeStart && c.Date <= s.doc.RangeEnd {
			return true
		}
	}
	return false
}

// Grid 构造排班网格：按周分组的工作日列加上筛选后的员工行，
// 节假日列带节假日名称且不可编辑，编辑权限跟随管理模式
func (s *scheduleService) Grid() (*dto.GridResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := calendar.BuildWeekdayGroups(s.doc.RangeStart, s.doc.RangeEnd)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}
	holidays, err := s.holidays.InRange(s.doc.RangeStart, s.doc.RangeEnd)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}

	weeks := make([]dto.WeekGroupResponse, 0, len(groups))
	days := make([]dto.DayResponse, 0, len(groups)*5)
	for _, g := range groups {
		week := dto.WeekGroupResponse{
			Index:     g.Index,
			Label:     fmt.Sprintf("KW %d", g.Index+1),
			WeekStart: calendar.FormatDate(g.Start),
			Days:      make([]dto.DayResponse, 0, len(g.Days)),
		}
		for _, d := range g.Days {
			day := dto.DayResponse{
				Date:     d.Key,
				Holiday:  holidays[d.Key],
				Editable: s.isAdmin && holidays[d.Key] == "",
			}
			week.Days = append(week.Days, day)
			days = append(days, day)
		}
		weeks = append(weeks, week)
	}

	index := s.doc.CellIndex()
	employees := s.filteredEmployeesLocked()
	rows := make([]dto.GridRowResponse, 0, len(employees))
	for _, e := range employees {
		row := dto.GridRowResponse{
			EmployeeID: e.ID,
			Name:       e.Name,
			Role:       e.Role,
			Shifts:     make([]string, len(days)),
		}
		for i, day := range days {
			if idx, ok := index[model.CellKey{EmployeeID: e.ID, Date: day.Date}]; ok {
				row.Shifts[i] = s.doc.Cells[idx].ShiftType
			}
		}
		rows = append(rows, row)
	}

	return &dto.GridResponse{
		RangeStart: s.doc.RangeStart,
		RangeEnd:   s.doc.RangeEnd,
		Weeks:      weeks,
		Days:       days,
		Rows:       rows,
	}, nil
}

// Statistics 统计每个员工每周各班次的出现次数。
// 计数表按班次词表零值初始化，词表之外的班次不参与统计
func (s *scheduleService) Statistics() (*dto.StatisticsResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := calendar.BuildWeekdayGroups(s.doc.RangeStart, s.doc.RangeEnd)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}

	weekByDate := make(map[string]int)
	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, fmt.Sprintf("KW %d", g.Index+1))
		for _, d := range g.Days {
			weekByDate[d.Key] = g.Index
		}
	}

	rows := make([]dto.EmployeeStatsResponse, 0, len(s.doc.Employees))
	for _, e := range s.doc.Employees {
		perWeek := make([]map[string]int, len(groups))
		for i := range perWeek {
			perWeek[i] = make(map[string]int, len(s.doc.ShiftTypes))
			for _, st := range s.doc.ShiftTypes {
				perWeek[i][st] = 0
			}
		}
		for _, c := range s.doc.Cells {
			week, inRange := weekByDate[c.Date]
			if !inRange || c.EmployeeID != e.ID {
				continue
			}
			if _, known := perWeek[week][c.ShiftType]; known {
				perWeek[week][c.ShiftType]++
			}
		}
		rows = append(rows, dto.EmployeeStatsResponse{
			EmployeeID: e.ID,
			Name:       e.Name,
			PerWeek:    perWeek,
		})
	}

	return &dto.StatisticsResponse{
		WeekLabels: labels,
		ShiftTypes: append([]string(nil), s.doc.ShiftTypes...),
		Rows:       rows,
	}, nil
}

// WeekGroups 返回当前区间按周分组的工作日
func (s *scheduleService) WeekGroups() ([]dto.WeekGroupResponse, error) {
	grid, err := s.Grid()
	if err != nil {
		return nil, err
	}
	return grid.Weeks, nil
}

// HolidaysInRange 返回指定区间内的法定节假日，区间省略时使用当前文档区间
func (s *scheduleService) HolidaysInRange(start, end string) (map[string]string, error) {
	if start == "" || end == "" {
		s.mu.Lock()
		start, end = s.doc.RangeStart, s.doc.RangeEnd
		s.mu.Unlock()
	}
	holidays, err := s.holidays.InRange(start, end)
	if err != nil {
		return nil, ErrScheduleRangeInvalid
	}
	return holidays, nil
}

// Document 返回当前文档的深拷贝，供导出器使用
func (s *scheduleService) Document() *model.ScheduleDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// ExportMatrix 构造导出矩阵：表头为员工列加区间内全部日历日
// (DD.MM.YYYY)，每行是一个员工在各天的班次，空白处为空串
func (s *scheduleService) ExportMatrix() ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, err := calendar.ParseDate(s.doc.RangeStart)
	if err != nil {
		return nil, nil, ErrScheduleRangeInvalid
	}
	end, err := calendar.ParseDate(s.doc.RangeEnd)
	if err != nil {
		return nil, nil, ErrScheduleRangeInvalid
	}

	header := []string{"Mitarbeiter"}
	keys := make([]string, 0, 28)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		header = append(header, d.Format("02.01.2006"))
		keys = append(keys, calendar.FormatDate(d))
	}

	index := s.doc.CellIndex()
	rows := make([][]string, 0, len(s.doc.Employees))
	for _, e := range s.doc.Employees {
		row := make([]string, 0, len(header))
		row = append(row, e.Name)
		for _, key := range keys {
			if idx, ok := index[model.CellKey{EmployeeID: e.ID, Date: key}]; ok {
				row = append(row, s.doc.Cells[idx].ShiftType)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// sortCellsByDate 导出前按日期再按员工稳定排序，保证输出确定性
func sortCellsByDate(cells []model.ScheduleCell) {
	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Date != cells[j].Date {
			return cells[i].Date < cells[j].Date
		}
		return cells[i].EmployeeID < cells[j].EmployeeID
	})
}
