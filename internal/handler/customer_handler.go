package handler

import (
	"strconv"

	"export-go/internal/service"
	"export-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler 客户处理器
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler 创建客户处理器
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// ListCustomers 获取客户列表
// search 参数同时是 ALL 范围导出时重新求值的过滤条件
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	search := c.Query("search")

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	result, err := h.customerService.ListCustomers(search, page, perPage)
	if err != nil {
		utils.InternalError(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, result.Items, result.Total, result.Page, result.PerPage)
}

// GetCustomer 获取客户详情
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	customer, err := h.customerService.GetCustomer(uint(id))
	if err != nil {
		utils.NotFound(c, "客户不存在")
		return
	}

	utils.SuccessResponse(c, customer)
}
