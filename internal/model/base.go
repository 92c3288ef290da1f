package model

import "time"

// AppendOnlyBase 只插入不更新的记录：自增主键 + 插入时间
// swagger:model
type AppendOnlyBase struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
