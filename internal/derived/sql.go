package derived

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"assetreport/internal/dialect"
	"assetreport/internal/model"
	"assetreport/internal/store"
)

// shadowName 影子表名；每次重建唯一，避免与残留表或约束名冲突
func shadowName(target string) string {
	return target + "__" + strconv.FormatInt(time.Now().UnixNano(), 36)
}

// createShadowSQL 建影子表：自增主键 + 文本列
func createShadowSQL(d dialect.Dialect, shadow string, def model.DerivedTable) string {
	cols := make([]string, 0, len(def.Columns)+1)
	cols = append(cols, d.IdentityColumn(model.IdentityColumn))
	for _, c := range def.Columns {
		cols = append(cols, d.Quote(c)+" "+d.TextType())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(shadow), strings.Join(cols, ", "))
}

// fillShadowSQL 从一个数据源向影子表写入：INSERT INTO shadow (...) SELECT ... FROM source WHERE ...
func fillShadowSQL(d dialect.Dialect, shadow string, def model.DerivedTable, src model.DerivedSource) (string, []any, error) {
	if len(src.Exprs) != len(def.Columns) {
		return "", nil, fmt.Errorf("source %s of %s has %d expressions for %d columns", src.Table, def.Name, len(src.Exprs), len(def.Columns))
	}

	b := store.NewBuilder(d).
		Raw("INSERT INTO ").Ident(shadow).
		Raw(" (").Idents(def.Columns).Raw(") SELECT ")
	for i, e := range src.Exprs {
		if i > 0 {
			b.Raw(", ")
		}
		b.Raw(renderExpr(d, e))
	}
	b.Raw(" FROM ").Ident(src.Table)

	var preds []store.Predicate
	if src.ExcludeDeleted {
		preds = append(preds, store.Or(
			store.IsNull(model.StatusColumn),
			store.NotEq(model.StatusColumn, string(model.StatusDelete)),
		))
	}
	if src.FilterColumn != "" && len(src.FilterKeywords) > 0 {
		preds = append(preds, store.Or(lo.Map(src.FilterKeywords, func(kw string, _ int) store.Predicate {
			return store.Like(src.FilterColumn, "%"+kw+"%")
		})...))
	}
	if len(preds) > 0 {
		b.Where(store.And(preds...))
	}
	b.Raw(" ORDER BY ").Ident(model.IdentityColumn)

	return b.String(), b.Args(), nil
}

// renderExpr 字面量来自静态定义，直接内联为 SQL 字符串
func renderExpr(d dialect.Dialect, e model.DerivedExpr) string {
	switch {
	case len(e.Parts) > 0:
		return d.Concat(lo.Map(e.Parts, func(p model.DerivedExpr, _ int) string {
			return renderExpr(d, p)
		})...)
	case e.Column != "":
		return d.Quote(e.Column)
	default:
		return "'" + strings.ReplaceAll(e.Literal, "'", "''") + "'"
	}
}
