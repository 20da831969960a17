package handler

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"export-go/internal/dto"
	"export-go/internal/export"
	"export-go/internal/middleware"
	"export-go/internal/service"
	"export-go/internal/utils"

	"github.com/gin-gonic/gin"
)

// exportLimiter 导出并发限制接口,由 pkg/redis_limiter 实现
type exportLimiter interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

// ExportHandler CSV导出处理器
type ExportHandler struct {
	exportService *service.ExportService
	limiter       exportLimiter
}

// NewExportHandler 创建CSV导出处理器
// limiter 可以为 nil,此时不做并发限制
func NewExportHandler(exportService *service.ExportService, limiter exportLimiter) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		limiter:       limiter,
	}
}

// Export 处理CSV导出请求
//
// 表单参数由字段选择弹窗提交: select_across(是否全选)、
// selected_ids(逗号分隔的记录ID)、selected_fields(字段名,可重复)、
// search(当前列表的搜索条件)。校验失败在写出任何字节之前返回错误;
// 校验通过后响应体以 text/csv 流式写出
func (h *ExportHandler) Export(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	username, _ := middleware.GetUsername(c)

	var req dto.ExportRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	job, err := h.exportService.Prepare(c.Param("entity"), &req)
	if err != nil {
		switch {
		case errors.Is(err, export.ErrEntityNotFound):
			utils.NotFound(c, "导出实体不存在")
		case errors.Is(err, service.ErrNoSelection):
			utils.BadRequest(c, "请选择至少一条要导出的记录")
		case errors.Is(err, export.ErrNoFields):
			utils.BadRequest(c, "请选择至少一个要导出的字段")
		default:
			utils.InternalError(c, err.Error())
		}
		return
	}

	// 并发限制:导出是重查询,限制每个用户同时运行的导出流数量
	if h.limiter != nil {
		key := strconv.FormatUint(uint64(userID), 10)
		if err := h.limiter.Acquire(c.Request.Context(), key); err != nil {
			utils.TooManyRequests(c, "并发导出数已达上限,请稍后重试")
			return
		}
		// 释放用独立的context,客户端断开后槽位也要归还
		defer h.limiter.Release(context.Background(), key)
	}

	// URL 编码文件名以支持特殊字符,同时提供 RFC 5987 的 UTF-8 形式
	encodedFilename := url.QueryEscape(job.Filename)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=\""+job.Filename+"\"; filename*=UTF-8''"+encodedFilename)
	c.Status(200)

	// 此后任何错误都无法再改写响应状态,只能记录日志并停止写出
	_, _ = h.exportService.Run(c.Request.Context(), username, job, c.Writer)
}

// FieldChoices 返回实体可导出字段的选项,供字段选择弹窗渲染
func (h *ExportHandler) FieldChoices(c *gin.Context) {
	resp, err := h.exportService.FieldChoices(c.Param("entity"))
	if err != nil {
		if errors.Is(err, export.ErrEntityNotFound) {
			utils.NotFound(c, "导出实体不存在")
			return
		}
		utils.InternalError(c, err.Error())
		return
	}

	utils.SuccessResponse(c, resp)
}
