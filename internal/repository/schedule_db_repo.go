package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dienstplan/backend/internal/calendar"
	"dienstplan/backend/internal/model"
)

// scheduleRecordID 单行表的固定主键
const scheduleRecordID = 1

// scheduleDBRepo 排班文档 PostgreSQL 实现（单行 JSONB 覆盖写）
type scheduleDBRepo struct {
	db           *gorm.DB
	defaultWeeks int
	logger       *zap.Logger
}

// NewScheduleDBRepo 创建 PostgreSQL 实现
func NewScheduleDBRepo(db *gorm.DB, defaultWeeks int, logger *zap.Logger) ScheduleRepository {
	return &scheduleDBRepo{db: db, defaultWeeks: defaultWeeks, logger: logger}
}

func (r *scheduleDBRepo) Load(ctx context.Context) (*model.ScheduleDocument, error) {
	var record model.ScheduleRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", scheduleRecordID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 首次访问：写入并返回默认空白文档
		doc := defaultDocument(r.defaultWeeks)
		if err := r.Save(ctx, doc); err != nil {
			return nil, err
		}
		r.logger.Info("存储端无排班文档，已初始化默认文档")
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取排班文档失败: %w", err)
	}

	var doc model.ScheduleDocument
	if err := json.Unmarshal(record.Payload, &doc); err != nil {
		return nil, fmt.Errorf("解析排班文档失败: %w", err)
	}
	return &doc, nil
}

func (r *scheduleDBRepo) Save(ctx context.Context, doc *model.ScheduleDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("序列化排班文档失败: %w", err)
	}

	record := model.ScheduleRecord{
		ID:        scheduleRecordID,
		Payload:   payload,
		UpdatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("写入排班文档失败: %w", err)
	}
	return nil
}

// defaultDocument 构建默认空白文档：从本周周一起覆盖 weeks 周
func defaultDocument(weeks int) *model.ScheduleDocument {
	start := calendar.MondayOnOrBefore(time.Now().UTC())
	end := start.AddDate(0, 0, weeks*7-1)
	return model.NewDefaultDocument(calendar.FormatDate(start), calendar.FormatDate(end))
}
