package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Stats 导出统计
type Stats struct {
	Processed int // 成功写出的数据行数
	Skipped   int // 序列化失败被跳过的行数
	Batches   int // 实际发起的批次数
}

// utf8BOM Excel 识别 UTF-8 编码需要的 BOM 前缀
const utf8BOM = "\ufeff"

// StreamCSV 将选择结果以CSV格式增量写入 w
//
// 表头(字段显示名)只写一次,随后逐批写出数据行并刷新,
// 峰值内存只与批次大小相关,与结果集大小无关。
// 单行取值失败时整行跳过并记录一条脱敏日志,导出继续;
// 结果集为空时产出仅含表头的文件。
func (e *Entity) StreamCSV(ctx context.Context, db *gorm.DB, logger *logrus.Logger, sel Selection, specs []FieldSpec, w io.Writer) (Stats, error) {
	var stats Stats

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return stats, fmt.Errorf("写入BOM失败: %w", err)
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(specs))
	for i, spec := range specs {
		header[i] = spec.Label
	}
	if err := cw.Write(header); err != nil {
		return stats, fmt.Errorf("写入CSV表头失败: %w", err)
	}

	pending := 0
	batches, err := e.ForEachRow(ctx, db, sel, func(record interface{}) error {
		row, rowErr := e.row(specs, record)
		if rowErr != nil {
			// 单行失败不致命:跳过整行,日志值先脱敏再写出
			stats.Skipped++
			logger.WithFields(logrus.Fields{
				"entity": e.Name,
				"record": SanitizeLogValue(e.primaryKeyValue(record)),
				"error":  SanitizeLogValue(rowErr.Error()),
			}).Warn("记录序列化失败,已跳过")
			return nil
		}

		if writeErr := cw.Write(row); writeErr != nil {
			return fmt.Errorf("写入CSV数据行失败: %w", writeErr)
		}
		stats.Processed++
		pending++

		// 按块刷新,让响应随生产过程持续流出
		if pending >= e.ChunkSize {
			pending = 0
			cw.Flush()
			if flushErr := cw.Error(); flushErr != nil {
				return flushErr
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		return nil
	})
	stats.Batches = batches

	cw.Flush()
	if err == nil {
		err = cw.Error()
	}
	if err != nil {
		return stats, err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	if stats.Processed == 0 {
		logger.WithField("entity", e.Name).Info("导出结果为空,仅生成表头")
	}

	return stats, nil
}

// row 按字段顺序提取一条记录的所有值
// 任何字段取值失败都会使整行失败,不写出部分行
func (e *Entity) row(specs []FieldSpec, record interface{}) ([]string, error) {
	row := make([]string, len(specs))
	for i, spec := range specs {
		v, err := e.Value(spec.Name, record)
		if err != nil {
			return nil, fmt.Errorf("字段 %s 取值失败: %w", spec.Name, err)
		}
		row[i] = v
	}
	return row, nil
}
