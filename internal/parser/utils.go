package parser

import (
	"regexp"
	"strings"
)

var spacePattern = regexp.MustCompile(`\s+`)

// NormalizeColumnName 规范化列名，去除空格和特殊字符
func NormalizeColumnName(name string) string {
	// 去除首尾空格
	name = strings.TrimSpace(name)
	// 去除换行符、制表符、全角空格
	name = strings.ReplaceAll(name, "　", "")
	// 去除所有空白
	return spacePattern.ReplaceAllString(name, "")
}
