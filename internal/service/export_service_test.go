package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"export-go/internal/dto"
	"export-go/internal/export"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testShipment 导出服务测试用的模型
type testShipment struct {
	ID        uint   `gorm:"primarykey"`
	TrackNo   string `gorm:"size:50"`
	City      string `gorm:"size:50"`
	Secret    string `gorm:"size:50"`
	CreatedAt time.Time
}

func newExportService(t *testing.T) (*ExportService, *test.Hook) {
	t.Helper()
	registry, err := export.NewRegistry(100)
	require.NoError(t, err)
	require.NoError(t, registry.Register(&export.Entity{
		Name:          "shipments",
		Model:         &testShipment{},
		ExcludeFields: []string{"id", "secret"},
	}))

	logger, hook := test.NewNullLogger()
	return NewExportService(nil, registry, logger), hook
}

func TestPrepareUnknownEntity(t *testing.T) {
	svc, _ := newExportService(t)

	_, err := svc.Prepare("nope", &dto.ExportRequest{SelectAcross: "1"})
	assert.ErrorIs(t, err, export.ErrEntityNotFound)
}

func TestPrepareEmptySelection(t *testing.T) {
	svc, _ := newExportService(t)

	// 既没有勾选记录也没有选择全部
	_, err := svc.Prepare("shipments", &dto.ExportRequest{})
	assert.ErrorIs(t, err, ErrNoSelection)

	// ID列表全是非法片段,等价于空选择
	_, err = svc.Prepare("shipments", &dto.ExportRequest{SelectedIDs: "abc,,-1"})
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestPrepareSelectedScope(t *testing.T) {
	svc, _ := newExportService(t)

	job, err := svc.Prepare("shipments", &dto.ExportRequest{SelectedIDs: "3, 7,abc,99"})
	require.NoError(t, err)

	assert.Equal(t, export.ScopeSelected, job.Selection.Scope)
	assert.Equal(t, []uint{3, 7, 99}, job.Selection.IDs)
}

func TestPrepareAllScopeCarriesSearch(t *testing.T) {
	svc, _ := newExportService(t)

	// 选择全部时忽略勾选的ID,携带当前搜索条件
	job, err := svc.Prepare("shipments", &dto.ExportRequest{
		SelectAcross: "1",
		SelectedIDs:  "1,2",
		Search:       "beijing",
	})
	require.NoError(t, err)

	assert.Equal(t, export.ScopeAll, job.Selection.Scope)
	assert.Empty(t, job.Selection.IDs)
	assert.Equal(t, "beijing", job.Selection.Search)
}

func TestPrepareFiltersInvalidFields(t *testing.T) {
	svc, hook := newExportService(t)

	job, err := svc.Prepare("shipments", &dto.ExportRequest{
		SelectAcross:   "1",
		SelectedFields: []string{"city", "secret", "bogus", "track_no"},
	})
	require.NoError(t, err)

	// 无效字段被过滤,有效字段保持请求顺序
	require.Len(t, job.Fields, 2)
	assert.Equal(t, "city", job.Fields[0].Name)
	assert.Equal(t, "track_no", job.Fields[1].Name)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPrepareAllFieldsInvalid(t *testing.T) {
	svc, _ := newExportService(t)

	_, err := svc.Prepare("shipments", &dto.ExportRequest{
		SelectAcross:   "1",
		SelectedFields: []string{"secret", "bogus"},
	})
	assert.ErrorIs(t, err, export.ErrNoFields)
}

func TestPrepareFilenamePattern(t *testing.T) {
	svc, _ := newExportService(t)

	job, err := svc.Prepare("shipments", &dto.ExportRequest{SelectAcross: "1"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^shipments_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}\.csv$`), job.Filename)
}

func TestRunStreamsCSV(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testShipment{}))
	for i := 1; i <= 3; i++ {
		require.NoError(t, db.Create(&testShipment{
			TrackNo: fmt.Sprintf("SF%03d", i),
			City:    "shanghai",
			Secret:  "hidden",
		}).Error)
	}

	registry, err := export.NewRegistry(2)
	require.NoError(t, err)
	require.NoError(t, registry.Register(&export.Entity{
		Name:          "shipments",
		Model:         &testShipment{},
		ExcludeFields: []string{"id", "secret", "created_at"},
	}))

	logger, hook := test.NewNullLogger()
	svc := NewExportService(db, registry, logger)

	job, err := svc.Prepare("shipments", &dto.ExportRequest{SelectAcross: "1"})
	require.NoError(t, err)

	var buf bytes.Buffer
	stats, err := svc.Run(context.Background(), "admin\nuser", job, &buf)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 2, stats.Batches)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Contains(t, out, "Track No,City")
	assert.Contains(t, out, "SF002")
	assert.NotContains(t, out, "hidden")

	// 开始和完成各一条日志,用户名已脱敏
	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "CSV导出开始", entries[0].Message)
	assert.Equal(t, `admin\nuser`, entries[0].Data["user"])
	assert.Equal(t, "CSV导出完成", entries[1].Message)
}

func TestFieldChoices(t *testing.T) {
	svc, _ := newExportService(t)

	resp, err := svc.FieldChoices("shipments")
	require.NoError(t, err)

	assert.Equal(t, "shipments", resp.Entity)
	require.Len(t, resp.Fields, 3)
	assert.Equal(t, "track_no", resp.Fields[0].Name)
	assert.Equal(t, "Track No", resp.Fields[0].Label)

	_, err = svc.FieldChoices("nope")
	assert.ErrorIs(t, err, export.ErrEntityNotFound)
}

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []uint
	}{
		{"空串", "", nil},
		{"单个ID", "42", []uint{42}},
		{"多个ID", "1,2,3", []uint{1, 2, 3}},
		{"带空白", " 1 , 2 ", []uint{1, 2}},
		{"跳过非法片段", "1,abc,2,-5,3", []uint{1, 2, 3}},
		{"全部非法", "abc,,xyz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseIDs(tt.raw))
		})
	}
}
