package dialect

import (
	"fmt"
	"strings"
)

// Dialect 屏蔽不同数据库在占位符、标识符引用、空值安全比较和 DDL 上的差异
type Dialect interface {
	// Name 数据库驱动名（sql.Open 使用）
	Name() string

	// Placeholder 第 index 个参数（从 0 开始）的占位符：?、$1、@p1
	Placeholder(index int) string
	// Quote 引用标识符
	Quote(ident string) string
	// NullSafeEqual 空值安全相等：NULL 与 NULL 视为相等
	NullSafeEqual(lhs, placeholder string) string
	// Concat 字符串拼接，NULL 按空串处理
	Concat(parts ...string) string

	// BusinessColumnsQuery 按物理顺序查询表的全部列名，唯一参数为表名
	BusinessColumnsQuery() string
	// InsertQuery 生成插入语句；returnsID 为 true 时语句返回新行 id（QueryRow 扫描），否则使用 LastInsertId
	InsertQuery(table string, cols []string) (query string, returnsID bool)
	// Paginate 追加分页（query 需已包含 ORDER BY）
	Paginate(query string, limit, offset int) string

	// IdentityColumn 自增主键列定义
	IdentityColumn(name string) string
	// TextType 文本列类型
	TextType() string
	// DropTableIfExists 删除表
	DropTableIfExists(table string) string
	// RenameTable 重命名表
	RenameTable(from, to string) string
}

// Get 根据驱动名返回方言
func Get(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return &SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MysqlDialect{}, nil
	case "sqlserver", "mssql":
		return &MSSQLDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

var _ Dialect = (*SQLiteDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)

// GeneratePlaceholders 生成 count 个以逗号分隔的占位符
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// QuoteAll 批量引用标识符
func QuoteAll(d Dialect, idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = d.Quote(id)
	}
	return strings.Join(quoted, ", ")
}

func quoteWith(ident, open, close string) string {
	return open + strings.ReplaceAll(ident, close, close+close) + close
}
