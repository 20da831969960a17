package models

import (
	"fmt"

	"export-go/internal/export"
)

// orderStatusLabels 订单状态的导出显示值
var orderStatusLabels = map[string]string{
	"pending":   "待支付",
	"paid":      "已支付",
	"shipped":   "已发货",
	"cancelled": "已取消",
}

// ExportEntities 各模型的CSV导出配置
//
// customers 使用排除列表:主键之外把密码哈希和内部备注也挡在导出之外;
// orders 使用显式允许列表,其中 status_label 是虚拟字段,
// 虚拟字段只有写进 ExportFields 才会生效
func ExportEntities() []*export.Entity {
	return []*export.Entity{
		{
			Name:          "customers",
			Model:         &Customer{},
			ExcludeFields: []string{"id", "password", "internal_notes"},
			Filename:      "customers",
			SearchFields:  []string{"name", "email"},
		},
		{
			Name:         "orders",
			Model:        &Order{},
			ExportFields: []string{"order_no", "customer_id", "amount", "status", "status_label", "remark", "created_at"},
			Filename:     "orders",
			SearchFields: []string{"order_no", "status"},
			Getters: map[string]export.Getter{
				"status_label": func(record interface{}) (string, error) {
					order, ok := record.(*Order)
					if !ok {
						return "", fmt.Errorf("记录类型不是订单: %T", record)
					}
					if label, ok := orderStatusLabels[order.Status]; ok {
						return label, nil
					}
					return order.Status, nil
				},
			},
		},
	}
}
