package service

import (
	"export-go/internal/dto"
	"export-go/internal/models"
	"export-go/internal/repository"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo *repository.OrderRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo *repository.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// ListOrders 获取订单列表
func (s *OrderService) ListOrders(search string, page, perPage int) (*dto.PaginatedResponse, error) {
	offset := (page - 1) * perPage
	orders, total, err := s.orderRepo.List(search, offset, perPage)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = toOrderResponse(&order)
	}

	return &dto.PaginatedResponse{
		Items:   responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(id uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

// toOrderResponse 组装订单响应
func toOrderResponse(order *models.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:         order.ID,
		OrderNo:    order.OrderNo,
		CustomerID: order.CustomerID,
		Amount:     order.Amount,
		Status:     order.Status,
		Remark:     order.Remark,
		CreatedAt:  order.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  order.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
