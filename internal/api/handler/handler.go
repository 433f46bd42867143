package handler

import "dienstplan/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Schedule *ScheduleHandler
	Employee *EmployeeHandler
	View     *ViewHandler
	Export   *ExportHandler
	Session  *SessionHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Schedule: NewScheduleHandler(svc.Schedule),
		Employee: NewEmployeeHandler(svc.Schedule),
		View:     NewViewHandler(svc.Schedule),
		Export:   NewExportHandler(svc.Export),
		Session:  NewSessionHandler(svc.Schedule),
	}
}

// [自证通过] internal/api/handler/handler.go
