package models

import (
	"time"
)

// Order 订单模型
type Order struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderNo    string    `gorm:"uniqueIndex;size:100;not null" json:"order_no"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Amount     float64   `gorm:"not null;default:0" json:"amount"`
	Status     string    `gorm:"size:20;default:'pending'" json:"status"` // pending, paid, shipped, cancelled
	Remark     string    `gorm:"type:text" json:"remark"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 关联
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
