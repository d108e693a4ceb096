package dialect

import (
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect 本地/开发/测试默认使用
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite3" }

func (d *SQLiteDialect) Placeholder(index int) string { return "?" }

func (d *SQLiteDialect) Quote(ident string) string { return quoteWith(ident, `"`, `"`) }

func (d *SQLiteDialect) NullSafeEqual(lhs, placeholder string) string {
	return fmt.Sprintf("%s IS %s", lhs, placeholder)
}

func (d *SQLiteDialect) Concat(parts ...string) string {
	wrapped := make([]string, len(parts))
	for i, p := range parts {
		wrapped[i] = fmt.Sprintf("COALESCE(%s, '')", p)
	}
	return "(" + strings.Join(wrapped, " || ") + ")"
}

func (d *SQLiteDialect) BusinessColumnsQuery() string {
	return `SELECT name FROM pragma_table_info(?) ORDER BY cid`
}

func (d *SQLiteDialect) InsertQuery(table string, cols []string) (string, bool) {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		d.Quote(table), QuoteAll(d, cols), vals, d.Quote("id")), true
}

func (d *SQLiteDialect) Paginate(query string, limit, offset int) string {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
}

func (d *SQLiteDialect) IdentityColumn(name string) string {
	return d.Quote(name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *SQLiteDialect) TextType() string { return "TEXT" }

func (d *SQLiteDialect) DropTableIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d *SQLiteDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Quote(from), d.Quote(to))
}
