package dto

// CustomerResponse 客户响应
type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID         uint    `json:"id"`
	OrderNo    string  `json:"order_no"`
	CustomerID uint    `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	Remark     string  `json:"remark"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}
