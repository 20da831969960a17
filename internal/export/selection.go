package export

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Scope 导出范围
type Scope int

const (
	// ScopeSelected 导出显式勾选的记录
	ScopeSelected Scope = iota
	// ScopeAll 导出匹配当前过滤条件的全部记录
	ScopeAll
)

// String 范围名称,用于日志
func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "selected"
}

// Selection 本次导出的记录选择
// Scope=ScopeSelected 时 IDs 必须非空;Scope=ScopeAll 时 Search 携带
// 当前列表页的搜索条件,在导出时重新求值(不做选择时刻的快照)
type Selection struct {
	Scope  Scope
	IDs    []uint
	Search string
}

// Query 构建选择对应的查询
// 显式ID选择中不存在的ID会被静默忽略,不视为错误
func (e *Entity) Query(db *gorm.DB, sel Selection) *gorm.DB {
	q := db.Model(e.Model)

	switch sel.Scope {
	case ScopeSelected:
		q = q.Where(fmt.Sprintf("%s IN ?", e.PrimaryKey()), sel.IDs)
	case ScopeAll:
		if sel.Search != "" && len(e.SearchFields) > 0 {
			conds := make([]string, len(e.SearchFields))
			args := make([]interface{}, len(e.SearchFields))
			for i, f := range e.SearchFields {
				conds[i] = fmt.Sprintf("%s LIKE ?", f)
				args[i] = "%" + sel.Search + "%"
			}
			q = q.Where(strings.Join(conds, " OR "), args...)
		}
	}

	return q
}
