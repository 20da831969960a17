package repository

import (
	"export-go/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问层
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户Repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create 创建客户
func (r *CustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// GetByID 根据ID获取客户
func (r *CustomerRepository) GetByID(id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List 获取客户列表,search 对名称和邮箱做模糊匹配
func (r *CustomerRepository) List(search string, offset, limit int) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	query := r.db.Model(&models.Customer{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error
	return customers, total, err
}

// Delete 删除客户
func (r *CustomerRepository) Delete(id uint) error {
	return r.db.Delete(&models.Customer{}, id).Error
}

// DeleteByIDs 批量删除客户
func (r *CustomerRepository) DeleteByIDs(ids []uint) error {
	return r.db.Delete(&models.Customer{}, ids).Error
}
