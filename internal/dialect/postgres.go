package dialect

import (
	"fmt"
	"strings"

	_ "github.com/lib/pq"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index+1) }

func (d *PostgresDialect) Quote(ident string) string { return quoteWith(ident, `"`, `"`) }

func (d *PostgresDialect) NullSafeEqual(lhs, placeholder string) string {
	return fmt.Sprintf("%s IS NOT DISTINCT FROM %s", lhs, placeholder)
}

func (d *PostgresDialect) Concat(parts ...string) string {
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

func (d *PostgresDialect) BusinessColumnsQuery() string {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`
}

func (d *PostgresDialect) InsertQuery(table string, cols []string) (string, bool) {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		d.Quote(table), QuoteAll(d, cols), vals, d.Quote("id")), true
}

func (d *PostgresDialect) Paginate(query string, limit, offset int) string {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
}

func (d *PostgresDialect) IdentityColumn(name string) string {
	return d.Quote(name) + " BIGSERIAL PRIMARY KEY"
}

func (d *PostgresDialect) TextType() string { return "TEXT" }

func (d *PostgresDialect) DropTableIfExists(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func (d *PostgresDialect) RenameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.Quote(from), d.Quote(to))
}
