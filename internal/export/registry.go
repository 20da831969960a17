package export

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

var (
	// ErrEntityNotFound 实体未注册
	ErrEntityNotFound = errors.New("未注册的导出实体")
	// ErrNoFields 有效字段集合为空
	ErrNoFields = errors.New("没有可导出的字段")
)

// Getter 虚拟字段取值函数
// 虚拟字段不对应数据库列,必须通过 ExportFields 显式开启
type Getter func(record interface{}) (string, error)

// FieldSpec 导出字段,Label 由字段名派生(下划线转空格并首字母大写)
type FieldSpec struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Entity 可导出实体的配置
type Entity struct {
	Name          string            // 实体名,作为导出接口的路径参数
	Model         interface{}       // gorm 模型指针,如 &models.Customer{}
	ExportFields  []string          // 显式允许导出的字段;非空时优先生效
	ExcludeFields []string          // 排除字段;为空时默认排除主键和 password
	Filename      string            // 导出文件名前缀,默认为实体名
	ChunkSize     int               // 每批次记录数,0 表示使用注册表默认值
	SearchFields  []string          // ALL 范围导出时参与搜索过滤的字段
	Getters       map[string]Getter // 虚拟字段

	schema *schema.Schema
}

// Registry 导出实体注册表
type Registry struct {
	mu               sync.RWMutex
	entities         map[string]*Entity
	defaultChunkSize int
	schemaCache      *sync.Map
}

// NewRegistry 创建导出实体注册表
func NewRegistry(defaultChunkSize int) (*Registry, error) {
	if defaultChunkSize <= 0 {
		return nil, fmt.Errorf("无效的导出块大小: %d", defaultChunkSize)
	}
	return &Registry{
		entities:         make(map[string]*Entity),
		defaultChunkSize: defaultChunkSize,
		schemaCache:      &sync.Map{},
	}, nil
}

// Register 注册可导出实体
func (r *Registry) Register(e *Entity) error {
	if e.Name == "" {
		return fmt.Errorf("实体名不能为空")
	}
	if e.Model == nil {
		return fmt.Errorf("实体 %s 缺少模型", e.Name)
	}

	sch, err := schema.Parse(e.Model, r.schemaCache, schema.NamingStrategy{})
	if err != nil {
		return fmt.Errorf("解析实体 %s 的模型失败: %w", e.Name, err)
	}
	e.schema = sch

	if e.ChunkSize == 0 {
		e.ChunkSize = r.defaultChunkSize
	}
	if e.ChunkSize <= 0 {
		return fmt.Errorf("实体 %s 的导出块大小无效: %d", e.Name, e.ChunkSize)
	}
	if e.Filename == "" {
		e.Filename = e.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[e.Name] = e
	return nil
}

// Get 获取已注册实体
func (r *Registry) Get(name string) (*Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[name]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return e, nil
}

// PrimaryKey 返回主键列名
func (e *Entity) PrimaryKey() string {
	if e.schema != nil && e.schema.PrioritizedPrimaryField != nil {
		return e.schema.PrioritizedPrimaryField.DBName
	}
	return "id"
}

// ModelFields 返回模型自身的全部数据库字段名,按定义顺序
// 关联字段没有对应的数据库列,不在其中
func (e *Entity) ModelFields() []string {
	var fields []string
	for _, f := range e.schema.Fields {
		if f.DBName == "" {
			continue
		}
		fields = append(fields, f.DBName)
	}
	return fields
}

// AllowedFields 计算允许导出的字段集合
// 优先级: ExportFields 显式列表 > 全部模型字段减去 ExcludeFields >
// 全部模型字段减去默认排除(主键和 password)
func (e *Entity) AllowedFields() []string {
	if len(e.ExportFields) > 0 {
		return e.ExportFields
	}

	exclusions := make(map[string]struct{})
	if len(e.ExcludeFields) > 0 {
		for _, f := range e.ExcludeFields {
			exclusions[f] = struct{}{}
		}
	} else {
		exclusions[e.PrimaryKey()] = struct{}{}
		exclusions["password"] = struct{}{}
	}

	var fields []string
	for _, f := range e.ModelFields() {
		if _, excluded := exclusions[f]; !excluded {
			fields = append(fields, f)
		}
	}
	return fields
}

// Fields 计算本次导出的有效字段列表
// requested 非空时取 requested 与允许集合的交集,保持 requested 的顺序;
// requested 为空时使用全部允许字段。结果为空返回 ErrNoFields
func (e *Entity) Fields(requested []string) ([]FieldSpec, error) {
	allowed := e.AllowedFields()
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}

	names := allowed
	if len(requested) > 0 {
		names = nil
		for _, f := range requested {
			if _, ok := allowedSet[f]; ok {
				names = append(names, f)
			}
		}
	}

	if len(names) == 0 {
		return nil, ErrNoFields
	}

	specs := make([]FieldSpec, len(names))
	for i, name := range names {
		specs[i] = FieldSpec{Name: name, Label: DisplayLabel(name)}
	}
	return specs, nil
}

// DisplayLabel 字段显示名: snake_case_name -> "Snake Case Name"
func DisplayLabel(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}

// Value 提取记录中指定字段的值,返回字符串形式
// 虚拟字段走 Getter,其余通过模型 schema 反射取值
func (e *Entity) Value(name string, record interface{}) (string, error) {
	if g, ok := e.Getters[name]; ok && g != nil {
		v, err := g(record)
		if err != nil {
			return "", err
		}
		return StripTags(v), nil
	}

	f, ok := e.schema.FieldsByDBName[name]
	if !ok {
		return "", fmt.Errorf("字段不存在: %s", name)
	}

	v, zero := f.ValueOf(context.Background(), reflect.ValueOf(record))
	if zero && v == nil {
		return "", nil
	}
	return StripTags(formatValue(v)), nil
}

// primaryKeyValue 返回记录主键的字符串形式,用于日志
func (e *Entity) primaryKeyValue(record interface{}) string {
	if e.schema == nil || e.schema.PrioritizedPrimaryField == nil {
		return "unknown"
	}
	v, _ := e.schema.PrioritizedPrimaryField.ValueOf(context.Background(), reflect.ValueOf(record))
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%v", v)
}

// formatValue 将字段值转为CSV单元格字符串
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
