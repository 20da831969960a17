package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	htmlTag        = regexp.MustCompile(`<[^>]*>`)
)

// maxLogValueLen 单个日志值的长度上限,防止日志被超长内容刷屏
const maxLogValueLen = 1000

// SanitizeFilename 移除文件名中不安全的字符,只保留 [A-Za-z0-9._-]
// 对已经干净的名字是恒等变换,重复调用结果不变
func SanitizeFilename(name string) string {
	return filenameUnsafe.ReplaceAllString(name, "")
}

// ExportFilename 生成带时间戳的导出文件名
func ExportFilename(base string, t time.Time) string {
	base = strings.TrimSuffix(base, ".csv")
	base = SanitizeFilename(base)
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s_%s.csv", base, t.Format("2006-01-02_15-04"))
}

// SanitizeLogValue 清理写入日志的值,防御日志注入
// 换行和回车被转义成可见序列,其余控制字符直接去掉,超长内容截断
func SanitizeLogValue(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = controlChars.ReplaceAllString(s, "")
	if len(s) > maxLogValueLen {
		s = s[:maxLogValueLen] + "... [truncated]"
	}
	return s
}

// StripTags 移除值中的HTML标签
func StripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return htmlTag.ReplaceAllString(s, "")
}
