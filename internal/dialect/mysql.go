package dialect

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) Placeholder(index int) string { return "?" }

func (d *MysqlDialect) Quote(ident string) string { return quoteWith(ident, "`", "`") }

func (d *MysqlDialect) NullSafeEqual(lhs, placeholder string) string {
	return fmt.Sprintf("%s <=> %s", lhs, placeholder)
}

func (d *MysqlDialect) Concat(parts ...string) string {
	wrapped := make([]string, len(parts))
	for i, p := range parts {
		wrapped[i] = fmt.Sprintf("COALESCE(%s, '')", p)
	}
	return "CONCAT(" + strings.Join(wrapped, ", ") + ")"
}

func (d *MysqlDialect) BusinessColumnsQuery() string {
	return `SELECT COLUMN_NAME FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION`
}

// InsertQuery MySQL 不支持 RETURNING，使用 LastInsertId
func (d *MysqlDialect) InsertQuery(table string, cols []string) (string, bool) {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Quote(table), QuoteAll(d, cols), vals), false
}

func (d *MysqlDialect) Paginate(query string, limit, offset int) string {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
}

func (d *MysqlDialect) IdentityColumn(name string) string {
	return d.Quote(name) + " BIGINT AUTO_INCREMENT PRIMARY KEY"
}

func (d *MysqlDialect) TextType() string { return "VARCHAR(1024)" }

func (d *MysqlDialect) DropTableIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d *MysqlDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", d.Quote(from), d.Quote(to))
}
