package models

import (
	"time"
)

// Customer 客户模型
type Customer struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"size:100;not null;index" json:"name"`
	Email         string    `gorm:"size:255;index" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Password      string    `gorm:"size:255" json:"-"` // 门户登录密码哈希,默认不参与导出
	City          string    `gorm:"size:100" json:"city"`
	InternalNotes string    `gorm:"type:text" json:"-"` // 内部备注,默认不参与导出
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
