package model

import "time"

// ScheduleRecord 排班文档存储行 — 对应 schedule_documents
// 单行表（id 恒为 1），payload 为整份文档的 JSONB，覆盖写
type ScheduleRecord struct {
	ID        int16     `gorm:"primaryKey"                         json:"id"`
	Payload   []byte    `gorm:"type:jsonb;not null"                json:"payload"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (ScheduleRecord) TableName() string { return "schedule_documents" }
