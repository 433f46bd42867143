package service

import (
	"context"
	"errors"

	"dienstplan/backend/internal/model"
)

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	doc       *model.ScheduleDocument
	loadErr   error
	saveErr   error
	saveCalls int
}

func newMockScheduleRepo(doc *model.ScheduleDocument) *mockScheduleRepo {
	return &mockScheduleRepo{doc: doc}
}

func (m *mockScheduleRepo) Load(_ context.Context) (*model.ScheduleDocument, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.doc == nil {
		return nil, errors.New("没有可加载的文档")
	}
	return m.doc.Clone(), nil
}

func (m *mockScheduleRepo) Save(_ context.Context, doc *model.ScheduleDocument) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = doc.Clone()
	return nil
}
