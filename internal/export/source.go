package export

import (
	"context"
	"reflect"

	"gorm.io/gorm"
)

// ForEachRow 以固定大小的批次遍历选择结果,对每条记录调用 fn
// 每个批次是独立查询,整个导出不在单个事务内;遍历按主键顺序,
// 整个结果集从不一次性载入内存。返回实际发起的批次数
//
// ctx 取消(客户端断开)时停止遍历并返回 ctx 的错误,
// 剩余批次不再获取
func (e *Entity) ForEachRow(ctx context.Context, db *gorm.DB, sel Selection, fn func(record interface{}) error) (int, error) {
	// 通过反射构造 *[]T 作为批次缓冲区
	modelType := reflect.TypeOf(e.Model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	batchPtr := reflect.New(reflect.SliceOf(modelType))

	batches := 0
	result := e.Query(db.WithContext(ctx), sel).FindInBatches(batchPtr.Interface(), e.ChunkSize, func(tx *gorm.DB, batch int) error {
		batches = batch

		if err := ctx.Err(); err != nil {
			return err
		}

		rows := batchPtr.Elem()
		for i := 0; i < rows.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(rows.Index(i).Addr().Interface()); err != nil {
				return err
			}
		}
		return nil
	})

	return batches, result.Error
}
