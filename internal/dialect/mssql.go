package dialect

import (
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server Driver
)

// MSSQLDialect go-mssqldb 使用 @p1, @p2 命名参数，同一参数可在语句中多次引用
type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) Placeholder(index int) string { return fmt.Sprintf("@p%d", index+1) }

func (d *MSSQLDialect) Quote(ident string) string { return quoteWith(ident, "[", "]") }

func (d *MSSQLDialect) NullSafeEqual(lhs, placeholder string) string {
	return fmt.Sprintf("(%s = %s OR (%s IS NULL AND %s IS NULL))", lhs, placeholder, lhs, placeholder)
}

func (d *MSSQLDialect) Concat(parts ...string) string {
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

func (d *MSSQLDialect) BusinessColumnsQuery() string {
	return `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1
		ORDER BY ORDINAL_POSITION`
}

func (d *MSSQLDialect) InsertQuery(table string, cols []string) (string, bool) {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.%s VALUES (%s)",
		d.Quote(table), QuoteAll(d, cols), d.Quote("id"), vals), true
}

// Paginate T-SQL 分页要求 ORDER BY
func (d *MSSQLDialect) Paginate(query string, limit, offset int) string {
	return fmt.Sprintf("%s OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", query, offset, limit)
}

func (d *MSSQLDialect) IdentityColumn(name string) string {
	return d.Quote(name) + " INT IDENTITY(1,1) PRIMARY KEY"
}

func (d *MSSQLDialect) TextType() string { return "NVARCHAR(1024)" }

func (d *MSSQLDialect) DropTableIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

// RenameTable sp_rename 的新名称不能带方括号
func (d *MSSQLDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("EXEC sp_rename '%s', '%s'", strings.ReplaceAll(from, "'", "''"), strings.ReplaceAll(to, "'", "''"))
}
