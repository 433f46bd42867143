package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"dienstplan/backend/internal/dto"
	"dienstplan/backend/internal/model"
	"dienstplan/backend/internal/service"
	"dienstplan/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ScheduleService ──

type mockScheduleService struct {
	state     *dto.ScheduleStateResponse
	loadErr   error
	saveErr   error
	opErr     error
	gridRes   *dto.GridResponse
	statsRes  *dto.StatisticsResponse
	weeksRes  []dto.WeekGroupResponse
	holidays  map[string]string
	employees []model.Employee
	doc       *model.ScheduleDocument
	header    []string
	rows      [][]string
}

func testState() *dto.ScheduleStateResponse {
	return &dto.ScheduleStateResponse{
		Document: &model.ScheduleDocument{
			RangeStart: "2024-01-01",
			RangeEnd:   "2024-01-14",
		},
	}
}

func (m *mockScheduleService) State() *dto.ScheduleStateResponse { return m.state }
func (m *mockScheduleService) Load(_ context.Context) (*dto.ScheduleStateResponse, error) {
	return m.state, m.loadErr
}
func (m *mockScheduleService) Save(_ context.Context) error { return m.saveErr }
func (m *mockScheduleService) UpsertCell(_ *dto.UpdateCellRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) SetLegend(_ *dto.UpdateLegendRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) SetNotes(_ *dto.UpdateNotesRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) AddEmployee(_ *dto.CreateEmployeeRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) RemoveEmployee(_ string) *dto.ScheduleStateResponse { return m.state }
func (m *mockScheduleService) ReorderEmployees(_ *dto.ReorderEmployeesRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) ApplyCalendarSettings(_ *dto.CalendarSettingsRequest) (*dto.ScheduleStateResponse, error) {
	return m.state, m.opErr
}
func (m *mockScheduleService) FillRow(_ string, _ *dto.FillRowRequest) (*dto.ScheduleStateResponse, error) {
	return m.state, m.opErr
}
func (m *mockScheduleService) ClearRow(_ string) (*dto.ScheduleStateResponse, error) {
	return m.state, m.opErr
}
func (m *mockScheduleService) Undo() *dto.ScheduleStateResponse { return m.state }
func (m *mockScheduleService) Redo() *dto.ScheduleStateResponse { return m.state }
func (m *mockScheduleService) SetAdmin(_ bool) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) SetFilters(_ *dto.SetFiltersRequest) *dto.ScheduleStateResponse {
	return m.state
}
func (m *mockScheduleService) Grid() (*dto.GridResponse, error) { return m.gridRes, m.opErr }
func (m *mockScheduleService) Statistics() (*dto.StatisticsResponse, error) {
	return m.statsRes, m.opErr
}
func (m *mockScheduleService) WeekGroups() ([]dto.WeekGroupResponse, error) {
	return m.weeksRes, m.opErr
}
func (m *mockScheduleService) HolidaysInRange(_, _ string) (map[string]string, error) {
	return m.holidays, m.opErr
}
func (m *mockScheduleService) Document() *model.ScheduleDocument { return m.doc }
func (m *mockScheduleService) FilteredEmployees() []model.Employee { return m.employees }
func (m *mockScheduleService) ExportMatrix() ([]string, [][]string, error) {
	return m.header, m.rows, m.opErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf       *bytes.Buffer
	filename  string
	err       error
	importRes *dto.ImportResultResponse
	importErr error
}

func (m *mockExportService) ExportExcel() (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportPDF() (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportEmployeeICS(_ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ImportExcel(_ io.Reader) (*dto.ImportResultResponse, error) {
	return m.importRes, m.importErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(method, path string, h gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	r.Handle(method, path, h)
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_GetSchedule(t *testing.T) {
	mock := &mockScheduleService{state: testState()}
	h := NewScheduleHandler(mock)

	req := httptest.NewRequest("GET", "/schedule", nil)
	w := serve("GET", "/schedule", h.GetSchedule, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestScheduleHandler_UpdateCell_BadJSON(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("PUT", "/cells", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/cells", h.UpdateCell, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScheduleHandler_UpdateCell_Success(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("PUT", "/cells", jsonBody(dto.UpdateCellRequest{
		EmployeeID: "emp-anna",
		Date:       "2024-01-02",
		ShiftType:  "Früh",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/cells", h.UpdateCell, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestScheduleHandler_Undo_NoHistory(t *testing.T) {
	// 空栈 Undo 不是错误：返回 200 和当前状态
	h := NewScheduleHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("POST", "/undo", nil)
	w := serve("POST", "/undo", h.Undo, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestScheduleHandler_Load_PersistenceUnavailable(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{loadErr: service.ErrPersistenceUnavailable})

	req := httptest.NewRequest("POST", "/load", nil)
	w := serve("POST", "/load", h.LoadSchedule, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
}

func TestScheduleHandler_FillRow_UnknownEmployee(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{opErr: service.ErrEmployeeNotFound})

	req := httptest.NewRequest("POST", "/rows/emp-x/fill", nil)
	w := serve("POST", "/rows/:employeeId/fill", h.FillRow, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScheduleHandler_ApplyCalendarSettings_BadDate(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{opErr: service.ErrScheduleRangeInvalid})

	req := httptest.NewRequest("PUT", "/calendar", jsonBody(dto.CalendarSettingsRequest{
		StartDate: "2024-13-01",
		Weeks:     2,
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/calendar", h.ApplyCalendarSettings, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 20301 {
		t.Errorf("expected code 20301, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EmployeeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEmployeeHandler_Create_Success(t *testing.T) {
	h := NewEmployeeHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("POST", "/employees", jsonBody(dto.CreateEmployeeRequest{
		Name: "Clara Weber",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/employees", h.Create, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestEmployeeHandler_Create_OpaqueID(t *testing.T) {
	// id 是不透明字符串，不限定为 UUID 格式
	h := NewEmployeeHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("POST", "/employees", jsonBody(dto.CreateEmployeeRequest{
		ID:   "emp-clara",
		Name: "Clara Weber",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/employees", h.Create, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestEmployeeHandler_Create_MissingName(t *testing.T) {
	h := NewEmployeeHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("POST", "/employees", jsonBody(dto.CreateEmployeeRequest{}))
	req.Header.Set("Content-Type", "application/json")
	w := serve("POST", "/employees", h.Create, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ViewHandler Tests
// ═══════════════════════════════════════════════════════════

func TestViewHandler_Grid(t *testing.T) {
	h := NewViewHandler(&mockScheduleService{gridRes: &dto.GridResponse{
		RangeStart: "2024-01-01",
		RangeEnd:   "2024-01-14",
	}})

	req := httptest.NewRequest("GET", "/grid", nil)
	w := serve("GET", "/grid", h.Grid, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestViewHandler_Holidays(t *testing.T) {
	h := NewViewHandler(&mockScheduleService{holidays: map[string]string{
		"2024-01-01": "Neujahr",
	}})

	req := httptest.NewRequest("GET", "/holidays?start=2024-01-01&end=2024-01-31", nil)
	w := serve("GET", "/holidays", h.Holidays, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Neujahr")) {
		t.Error("expected holidays in response body")
	}
}

func TestViewHandler_Holidays_BadYear(t *testing.T) {
	h := NewViewHandler(&mockScheduleService{})

	req := httptest.NewRequest("GET", "/holidays?year=abc", nil)
	w := serve("GET", "/holidays", h.Holidays, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestViewHandler_Grid_RangeInvalid(t *testing.T) {
	h := NewViewHandler(&mockScheduleService{opErr: service.ErrScheduleRangeInvalid})

	req := httptest.NewRequest("GET", "/grid", nil)
	w := serve("GET", "/grid", h.Grid, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportExcel_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-bytes"),
		filename: "dienstplan_2024-01-01_2024-01-14.xlsx",
	}
	h := NewExportHandler(mock)

	req := httptest.NewRequest("GET", "/export/schedule.xlsx", nil)
	w := serve("GET", "/export/schedule.xlsx", h.ExportExcel, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("expected xlsx content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_ExportICS_UnknownEmployee(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrEmployeeNotFound})

	req := httptest.NewRequest("GET", "/export/employees/emp-x/calendar.ics", nil)
	w := serve("GET", "/export/employees/:id/calendar.ics", h.ExportICS, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_Import_MissingFile(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	req := httptest.NewRequest("POST", "/import/schedule", nil)
	w := serve("POST", "/import/schedule", h.Import, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_Import_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		importRes: &dto.ImportResultResponse{ImportedCells: 3},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "plan.xlsx")
	part.Write([]byte("xlsx-bytes"))
	mw.Close()

	req := httptest.NewRequest("POST", "/import/schedule", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve("POST", "/import/schedule", h.Import, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("imported_cells")) {
		t.Error("expected import result in response body")
	}
}

// ═══════════════════════════════════════════════════════════
// SessionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSessionHandler_SetAdmin_Success(t *testing.T) {
	h := NewSessionHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("PUT", "/admin", bytes.NewReader([]byte(`{"is_admin":true}`)))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/admin", h.SetAdmin, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSessionHandler_SetAdmin_MissingField(t *testing.T) {
	h := NewSessionHandler(&mockScheduleService{state: testState()})

	req := httptest.NewRequest("PUT", "/admin", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := serve("PUT", "/admin", h.SetAdmin, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
