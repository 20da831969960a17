package dto

// ExportRequest CSV导出请求,由字段选择弹窗的表单提交
//
// SelectAcross 为 "1" 时导出匹配当前过滤条件的全部记录,
// 否则导出 SelectedIDs 中逗号分隔的记录ID
type ExportRequest struct {
	SelectAcross   string   `form:"select_across" validate:"boolflag"`
	SelectedIDs    string   `form:"selected_ids" validate:"idlist"`
	SelectedFields []string `form:"selected_fields"`
	Search         string   `form:"search"`
}

// FieldChoice 可导出字段选项
type FieldChoice struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// FieldChoicesResponse 字段选项响应
type FieldChoicesResponse struct {
	Entity string        `json:"entity"`
	Fields []FieldChoice `json:"fields"`
}
