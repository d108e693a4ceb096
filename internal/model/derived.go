package model

// DerivedExpr 派生表列的取值表达式：源列、字面量或拼接
type DerivedExpr struct {
	Column  string
	Literal string
	Parts   []DerivedExpr
}

// Col 源表列
func Col(name string) DerivedExpr { return DerivedExpr{Column: name} }

// Lit 字面量
func Lit(s string) DerivedExpr { return DerivedExpr{Literal: s} }

// Concat 字符串拼接
func Concat(parts ...DerivedExpr) DerivedExpr { return DerivedExpr{Parts: parts} }

// DerivedSource 派生表的一个数据来源
type DerivedSource struct {
	Table          string
	Exprs          []DerivedExpr // 与 DerivedTable.Columns 一一对应
	ExcludeDeleted bool          // 排除 status = 'delete' 的行
	FilterColumn   string        // 为空表示不过滤
	FilterKeywords []string      // FilterColumn LIKE '%kw%'，任一命中即可
}

// DerivedTable 由源表重建的报表表
type DerivedTable struct {
	Name    string
	Label   string
	Columns []string // 不含 id
	Sources []DerivedSource
}

// DependsOn 是否以 table 为数据源
func (d DerivedTable) DependsOn(table string) bool {
	for _, s := range d.Sources {
		if s.Table == table {
			return true
		}
	}
	return false
}

var financeKeywords = []string{"金融", "银行", "保险", "证券"}

// FinanceBank 金融业数据资产报表：上市公司全部行 + 非上市公司未删除行
var FinanceBank = DerivedTable{
	Name:  "finance_bank",
	Label: "金融业数据资产",
	Columns: []string{
		"source_type", "source_id", "show_name", "company_name",
		"industry", "asset_item", "amount", "period",
	},
	Sources: []DerivedSource{
		{
			Table: "listed_data_assets",
			Exprs: []DerivedExpr{
				Lit("listed"), Col("id"),
				Concat(Col("stock_name"), Lit("("), Col("stock_code"), Lit(")")),
				Col("company_name"), Col("industry"), Col("asset_item"), Col("amount"), Col("report_period"),
			},
			FilterColumn:   "industry",
			FilterKeywords: financeKeywords,
		},
		{
			Table: "non_listed_data_assets",
			Exprs: []DerivedExpr{
				Lit("non_listed"), Col("id"),
				Col("company_name"),
				Col("company_name"), Col("industry"), Col("asset_item"), Col("amount"), Col("recorded_month"),
			},
			ExcludeDeleted: true,
			FilterColumn:   "industry",
			FilterKeywords: financeKeywords,
		},
	},
}

// DerivedTables 所有派生表
var DerivedTables = []DerivedTable{FinanceBank}
