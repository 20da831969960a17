package service

import (
	"export-go/internal/dto"
	"export-go/internal/models"
	"export-go/internal/repository"
)

// CustomerService 客户服务
type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

// NewCustomerService 创建客户服务
func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
	}
}

// ListCustomers 获取客户列表
func (s *CustomerService) ListCustomers(search string, page, perPage int) (*dto.PaginatedResponse, error) {
	offset := (page - 1) * perPage
	customers, total, err := s.customerRepo.List(search, offset, perPage)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CustomerResponse, len(customers))
	for i, customer := range customers {
		responses[i] = toCustomerResponse(&customer)
	}

	return &dto.PaginatedResponse{
		Items:   responses,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// GetCustomer 获取客户详情
func (s *CustomerService) GetCustomer(id uint) (*dto.CustomerResponse, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

// toCustomerResponse 组装客户响应
func toCustomerResponse(customer *models.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		City:      customer.City,
		IsActive:  customer.IsActive,
		CreatedAt: customer.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: customer.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
