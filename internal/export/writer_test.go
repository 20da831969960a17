package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testProduct 流式导出测试用的模型
type testProduct struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:100"`
	Price     float64
	Note      string `gorm:"type:text"`
	CreatedAt time.Time
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testProduct{}))
	return db
}

func seedProducts(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, db.Create(&testProduct{
			Name:  fmt.Sprintf("product-%02d", i),
			Price: float64(i) * 1.5,
			Note:  fmt.Sprintf("note %d", i),
		}).Error)
	}
}

func newProductEntity(t *testing.T, chunkSize int) *Entity {
	t.Helper()
	r, err := NewRegistry(1000)
	require.NoError(t, err)

	e := &Entity{
		Name:          "products",
		Model:         &testProduct{},
		ExcludeFields: []string{"id", "created_at"},
		ChunkSize:     chunkSize,
	}
	require.NoError(t, r.Register(e))
	return e
}

// streamToString 执行一次导出并返回CSV文本(去掉BOM)和统计
func streamToString(t *testing.T, e *Entity, db *gorm.DB, sel Selection) (string, Stats, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()

	var buf bytes.Buffer
	specs, err := e.Fields(nil)
	require.NoError(t, err)

	stats, err := e.StreamCSV(context.Background(), db, logger, sel, specs, &buf)
	require.NoError(t, err)

	return strings.TrimPrefix(buf.String(), utf8BOM), stats, hook
}

func TestStreamCSVWritesBOMAndHeader(t *testing.T) {
	db := newTestDB(t)
	e := newProductEntity(t, 1000)
	logger, _ := test.NewNullLogger()

	specs, err := e.Fields(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = e.StreamCSV(context.Background(), db, logger, Selection{Scope: ScopeAll}, specs, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, utf8BOM))
	assert.Equal(t, "Name,Price,Note", strings.TrimSpace(strings.TrimPrefix(out, utf8BOM)))
}

// 空结果集产出仅含表头的合法CSV,而不是报错
func TestStreamCSVEmptySelection(t *testing.T) {
	db := newTestDB(t)
	e := newProductEntity(t, 1000)

	out, stats, _ := streamToString(t, e, db, Selection{Scope: ScopeAll})
	records := parseCSV(t, out)

	assert.Len(t, records, 1) // 只有表头
	assert.Equal(t, 0, stats.Processed)
}

// 显式ID选择中不存在的ID被静默忽略
func TestStreamCSVExplicitIDsMissingIgnored(t *testing.T) {
	db := newTestDB(t)
	e := newProductEntity(t, 1000)
	seedProducts(t, db, 10)

	out, stats, _ := streamToString(t, e, db, Selection{Scope: ScopeSelected, IDs: []uint{3, 7, 99}})
	records := parseCSV(t, out)

	require.Len(t, records, 3) // 表头 + 2行数据
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, "product-03", records[1][0])
	assert.Equal(t, "product-07", records[2][0])
}

// 任意块大小下输出的行集合和顺序都与单批次导出一致
func TestStreamCSVChunkingInvariant(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, 5)

	single := newProductEntity(t, 1000)
	baseline, baseStats, _ := streamToString(t, single, db, Selection{Scope: ScopeAll})
	assert.Equal(t, 1, baseStats.Batches)

	for _, chunkSize := range []int{1, 2, 3, 5, 100} {
		e := newProductEntity(t, chunkSize)
		out, stats, _ := streamToString(t, e, db, Selection{Scope: ScopeAll})

		assert.Equal(t, baseline, out, "chunk_size=%d", chunkSize)
		assert.Equal(t, 5, stats.Processed, "chunk_size=%d", chunkSize)
	}
}

// chunk_size=2、5条记录时应该观察到3个批次(2,2,1)
func TestStreamCSVBatchCount(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, 5)
	e := newProductEntity(t, 2)

	out, stats, _ := streamToString(t, e, db, Selection{Scope: ScopeAll})

	assert.Equal(t, 3, stats.Batches)
	assert.Len(t, parseCSV(t, out), 6) // 表头 + 5行,顺序不受分批影响
}

// 单行取值失败只跳过该行并记一条脱敏日志,导出正常完成
func TestStreamCSVSkipsBadRow(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, 50)

	r, err := NewRegistry(1000)
	require.NoError(t, err)
	e := &Entity{
		Name:         "products",
		Model:        &testProduct{},
		ExportFields: []string{"name", "flaky"},
		ChunkSize:    10,
		Getters: map[string]Getter{
			"flaky": func(record interface{}) (string, error) {
				p := record.(*testProduct)
				if p.ID == 25 {
					return "", fmt.Errorf("value error\ninjected line")
				}
				return "ok", nil
			},
		},
	}
	require.NoError(t, r.Register(e))

	logger, hook := test.NewNullLogger()
	specs, err := e.Fields(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := e.StreamCSV(context.Background(), db, logger, Selection{Scope: ScopeAll}, specs, &buf)
	require.NoError(t, err)

	assert.Equal(t, 49, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)

	records := parseCSV(t, strings.TrimPrefix(buf.String(), utf8BOM))
	assert.Len(t, records, 50) // 表头 + 49行

	// 恰好一条警告,且日志值已脱敏(换行被转义)
	var warnings []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry)
		}
	}
	require.Len(t, warnings, 1)
	assert.NotContains(t, warnings[0].Data["error"], "\n")
}

// 生成的CSV能被标准解析器读回,表头和值与源数据一致
func TestStreamCSVRoundTrip(t *testing.T) {
	db := newTestDB(t)
	e := newProductEntity(t, 2)
	require.NoError(t, db.Create(&testProduct{Name: `逗号,引号"换行` + "\n结尾", Price: 9.5, Note: "plain"}).Error)
	require.NoError(t, db.Create(&testProduct{Name: "simple", Price: 3, Note: "b"}).Error)

	out, _, _ := streamToString(t, e, db, Selection{Scope: ScopeAll})
	records := parseCSV(t, out)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Name", "Price", "Note"}, records[0])
	assert.Equal(t, `逗号,引号"换行`+"\n结尾", records[1][0])
	assert.Equal(t, "9.5", records[1][1])
	assert.Equal(t, "simple", records[2][0])
	assert.Equal(t, "3", records[2][1])
}

// ALL范围导出携带当前搜索条件,在导出时重新求值
func TestStreamCSVSearchFilter(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, 9)

	r, err := NewRegistry(1000)
	require.NoError(t, err)
	e := &Entity{
		Name:          "products",
		Model:         &testProduct{},
		ExcludeFields: []string{"id", "created_at"},
		SearchFields:  []string{"name", "note"},
	}
	require.NoError(t, r.Register(e))

	out, stats, _ := streamToString(t, e, db, Selection{Scope: ScopeAll, Search: "product-0"})
	assert.Equal(t, 9, stats.Processed)

	out, stats, _ = streamToString(t, e, db, Selection{Scope: ScopeAll, Search: "product-03"})
	assert.Equal(t, 1, stats.Processed)
	assert.Contains(t, out, "product-03")
}

// 上下文取消(客户端断开)后放弃剩余批次
func TestStreamCSVContextCancelled(t *testing.T) {
	db := newTestDB(t)
	seedProducts(t, db, 5)
	e := newProductEntity(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := test.NewNullLogger()
	specs, err := e.Fields(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = e.StreamCSV(ctx, db, logger, Selection{Scope: ScopeAll}, specs, &buf)
	assert.Error(t, err)
}

func parseCSV(t *testing.T, s string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)
	return records
}
