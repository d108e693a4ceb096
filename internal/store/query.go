package store

import (
	"strings"

	"assetreport/internal/dialect"
)

// Builder 参数化 SQL 构造器：标识符统一引用，取值统一走占位符
type Builder struct {
	d    dialect.Dialect
	sb   strings.Builder
	args []any
}

// Predicate 写入一个布尔条件
type Predicate func(b *Builder)

// NewBuilder 创建构造器
func NewBuilder(d dialect.Dialect) *Builder {
	return &Builder{d: d}
}

// Raw 原样写入 SQL 片段
func (b *Builder) Raw(sql string) *Builder {
	b.sb.WriteString(sql)
	return b
}

// Ident 写入引用后的标识符
func (b *Builder) Ident(name string) *Builder {
	b.sb.WriteString(b.d.Quote(name))
	return b
}

// Idents 写入逗号分隔的标识符列表
func (b *Builder) Idents(names []string) *Builder {
	b.sb.WriteString(dialect.QuoteAll(b.d, names))
	return b
}

// Arg 写入占位符并记录参数
func (b *Builder) Arg(v any) *Builder {
	b.sb.WriteString(b.Placeholder(v))
	return b
}

// Placeholder 记录参数并返回占位符，不写入 SQL（用于拼接表达式）
func (b *Builder) Placeholder(v any) string {
	ph := b.d.Placeholder(len(b.args))
	b.args = append(b.args, v)
	return ph
}

// Where 写入 WHERE 子句，nil 条件忽略
func (b *Builder) Where(p Predicate) *Builder {
	if p == nil {
		return b
	}
	b.sb.WriteString(" WHERE ")
	p(b)
	return b
}

// Dialect 当前方言
func (b *Builder) Dialect() dialect.Dialect {
	return b.d
}

// String 生成的 SQL
func (b *Builder) String() string {
	return b.sb.String()
}

// Args 参数列表
func (b *Builder) Args() []any {
	return b.args
}

// NullSafeEq 空值安全相等，v 为 nil 时匹配 NULL
func NullSafeEq(column string, v *string) Predicate {
	return func(b *Builder) {
		ph := b.Placeholder(nullable(v))
		b.sb.WriteString(b.d.NullSafeEqual(b.d.Quote(column), ph))
	}
}

// Eq 普通相等
func Eq(column string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(column).Raw(" = ").Arg(v)
	}
}

// NotEq 不等（NULL 不参与比较）
func NotEq(column string, v any) Predicate {
	return func(b *Builder) {
		b.Ident(column).Raw(" <> ").Arg(v)
	}
}

// IsNull 为空
func IsNull(column string) Predicate {
	return func(b *Builder) {
		b.Ident(column).Raw(" IS NULL")
	}
}

// Like 模糊匹配，pattern 需自带通配符
func Like(column string, pattern string) Predicate {
	return func(b *Builder) {
		b.Ident(column).Raw(" LIKE ").Arg(pattern)
	}
}

// In 集合匹配，空集合恒为假
func In(column string, values []any) Predicate {
	return func(b *Builder) {
		if len(values) == 0 {
			b.Raw("1=0")
			return
		}
		b.Ident(column).Raw(" IN (")
		for i, v := range values {
			if i > 0 {
				b.Raw(", ")
			}
			b.Arg(v)
		}
		b.Raw(")")
	}
}

// And 全部成立，空列表恒为真
func And(ps ...Predicate) Predicate {
	return join(" AND ", "1=1", ps)
}

// Or 任一成立，空列表恒为假
func Or(ps ...Predicate) Predicate {
	return join(" OR ", "1=0", ps)
}

func join(sep, empty string, ps []Predicate) Predicate {
	return func(b *Builder) {
		n := 0
		for _, p := range ps {
			if p == nil {
				continue
			}
			if n == 0 {
				b.Raw("(")
			} else {
				b.Raw(sep)
			}
			p(b)
			n++
		}
		if n == 0 {
			b.Raw(empty)
			return
		}
		b.Raw(")")
	}
}

// nullable 把 *string 转成驱动可接受的参数
func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
