package service

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"export-go/internal/dto"
	"export-go/internal/export"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrNoSelection 未选择任何记录
var ErrNoSelection = errors.New("请选择至少一条要导出的记录")

// ExportService 导出服务
type ExportService struct {
	db       *gorm.DB
	registry *export.Registry
	logger   *logrus.Logger
}

// NewExportService 创建导出服务
func NewExportService(db *gorm.DB, registry *export.Registry, logger *logrus.Logger) *ExportService {
	return &ExportService{
		db:       db,
		registry: registry,
		logger:   logger,
	}
}

// ExportJob 单次导出任务
// 请求级对象,只在请求生命周期内存在,不跨请求保留任何状态
type ExportJob struct {
	Entity    *export.Entity
	Fields    []export.FieldSpec
	Selection export.Selection
	Filename  string
}

// Prepare 校验导出请求并组装导出任务
// 所有校验错误都发生在写出任何响应字节之前(快速失败)
func (s *ExportService) Prepare(entityName string, req *dto.ExportRequest) (*ExportJob, error) {
	entity, err := s.registry.Get(entityName)
	if err != nil {
		return nil, err
	}

	sel := export.Selection{Search: req.Search}
	if req.SelectAcross == "1" {
		sel.Scope = export.ScopeAll
	} else {
		sel.Scope = export.ScopeSelected
		sel.IDs = parseIDs(req.SelectedIDs)
		if len(sel.IDs) == 0 {
			return nil, ErrNoSelection
		}
	}

	specs, err := entity.Fields(req.SelectedFields)
	if err != nil {
		return nil, err
	}

	// 请求中无效的字段名被过滤掉,只记日志不报错
	if n := len(req.SelectedFields); n > 0 && n != len(specs) {
		s.logger.WithFields(logrus.Fields{
			"entity":   entity.Name,
			"original": n,
			"valid":    len(specs),
		}).Warn("过滤掉了无效的导出字段")
	}

	return &ExportJob{
		Entity:    entity,
		Fields:    specs,
		Selection: sel,
		Filename:  export.ExportFilename(entity.Filename, time.Now()),
	}, nil
}

// Run 执行导出任务,将CSV流式写入 w
func (s *ExportService) Run(ctx context.Context, username string, job *ExportJob, w io.Writer) (export.Stats, error) {
	s.logger.WithFields(logrus.Fields{
		"user":   export.SanitizeLogValue(username),
		"entity": job.Entity.Name,
		"scope":  job.Selection.Scope.String(),
		"fields": len(job.Fields),
	}).Info("CSV导出开始")

	stats, err := job.Entity.StreamCSV(ctx, s.db, s.logger, job.Selection, job.Fields, w)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// 客户端断开:放弃剩余批次,对进程而言不是故障
			s.logger.WithFields(logrus.Fields{
				"entity":    job.Entity.Name,
				"processed": stats.Processed,
			}).Warn("客户端断开连接,导出中止")
			return stats, err
		}
		s.logger.WithFields(logrus.Fields{
			"entity": job.Entity.Name,
			"error":  export.SanitizeLogValue(err.Error()),
		}).Error("CSV导出失败")
		return stats, err
	}

	s.logger.WithFields(logrus.Fields{
		"entity":    job.Entity.Name,
		"processed": stats.Processed,
		"skipped":   stats.Skipped,
		"batches":   stats.Batches,
	}).Info("CSV导出完成")
	return stats, nil
}

// FieldChoices 返回实体可导出字段的选项列表,供字段选择弹窗渲染
func (s *ExportService) FieldChoices(entityName string) (*dto.FieldChoicesResponse, error) {
	entity, err := s.registry.Get(entityName)
	if err != nil {
		return nil, err
	}

	specs, err := entity.Fields(nil)
	if err != nil {
		return nil, err
	}

	choices := make([]dto.FieldChoice, len(specs))
	for i, spec := range specs {
		choices[i] = dto.FieldChoice{Name: spec.Name, Label: spec.Label}
	}

	return &dto.FieldChoicesResponse{Entity: entityName, Fields: choices}, nil
}

// parseIDs 解析逗号分隔的记录ID列表,非法片段直接忽略
func parseIDs(raw string) []uint {
	if raw == "" {
		return nil
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
