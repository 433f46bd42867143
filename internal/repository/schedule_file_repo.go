package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"dienstplan/backend/internal/model"
)

// scheduleFileRepo 排班文档本地 JSON 文件实现
// 写入走临时文件 + rename，保证崩溃时不留半份文档
type scheduleFileRepo struct {
	path         string
	defaultWeeks int
	logger       *zap.Logger
}

// NewScheduleFileRepo 创建文件实现
func NewScheduleFileRepo(path string, defaultWeeks int, logger *zap.Logger) ScheduleRepository {
	return &scheduleFileRepo{path: path, defaultWeeks: defaultWeeks, logger: logger}
}

func (r *scheduleFileRepo) Load(ctx context.Context) (*model.ScheduleDocument, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		// 首次访问：落盘并返回默认空白文档
		doc := defaultDocument(r.defaultWeeks)
		if err := r.Save(ctx, doc); err != nil {
			return nil, err
		}
		r.logger.Info("排班文件不存在，已初始化默认文档", zap.String("path", r.path))
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取排班文件失败: %w", err)
	}

	var doc model.ScheduleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析排班文件失败: %w", err)
	}
	return &doc, nil
}

func (r *scheduleFileRepo) Save(_ context.Context, doc *model.ScheduleDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化排班文档失败: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 先写临时文件，再原子替换
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("替换排班文件失败: %w", err)
	}
	return nil
}
