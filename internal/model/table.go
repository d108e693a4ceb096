package model

import (
	"regexp"
	"sort"
)

// DateFormat 日期列的目标格式
type DateFormat string

const (
	DateFormatYMD   DateFormat = "YYYY-MM-DD"
	DateFormatYM    DateFormat = "YYYY-MM"
	DateFormatYMZh  DateFormat = "YYYY年MM月"
	DateFormatYMDZh DateFormat = "YYYY年MM月DD日"
)

// 非业务列
const (
	IdentityColumn = "id"
	StatusColumn   = "status"
)

// TableSpec 可上传/管理的数据表配置
type TableSpec struct {
	Name           string
	Label          string
	KeyColumns     []string              // 部分重复判定的关键列（顺序有意义）
	KeyDescription string                // 关键列说明
	DateFormats    map[string]DateFormat // 业务列 -> 日期目标格式
	Labels         map[string]string     // 业务列 -> 中文表头（导出用）
}

// DateFormatFor 返回列的日期格式
func (t TableSpec) DateFormatFor(column string) (DateFormat, bool) {
	f, ok := t.DateFormats[column]
	return f, ok
}

// LabelFor 返回列的中文表头，未配置时返回列名
func (t TableSpec) LabelFor(column string) string {
	if l, ok := t.Labels[column]; ok && l != "" {
		return l
	}
	return column
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidTableName 表名只允许字母、数字、下划线
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// Registry 受管数据表
var Registry = map[string]TableSpec{
	"listed_data_assets": {
		Name:           "listed_data_assets",
		Label:          "上市公司数据资产入表",
		KeyColumns:     []string{"stock_code", "report_period", "asset_item"},
		KeyDescription: "股票代码 + 报告期 + 入表科目",
		DateFormats: map[string]DateFormat{
			"report_period":   DateFormatYM,
			"disclosure_date": DateFormatYMD,
		},
		Labels: map[string]string{
			"stock_code":      "股票代码",
			"stock_name":      "股票简称",
			"company_name":    "公司名称",
			"industry":        "所属行业",
			"report_period":   "报告期",
			"disclosure_date": "披露日期",
			"asset_item":      "入表科目",
			"amount":          "入表金额（万元）",
			"remark":          "备注",
		},
	},
	"non_listed_data_assets": {
		Name:           "non_listed_data_assets",
		Label:          "非上市公司数据资产入表",
		KeyColumns:     []string{"credit_code", "asset_name"},
		KeyDescription: "统一社会信用代码 + 数据资产名称",
		DateFormats: map[string]DateFormat{
			"recorded_month": DateFormatYMZh,
		},
		Labels: map[string]string{
			"company_name":   "企业名称",
			"credit_code":    "统一社会信用代码",
			"industry":       "所属行业",
			"province":       "所在省份",
			"asset_name":     "数据资产名称",
			"asset_item":     "入表科目",
			"amount":         "入表金额（万元）",
			"recorded_month": "入表时间",
			"source":         "信息来源",
		},
	},
	"data_asset_listings": {
		Name:           "data_asset_listings",
		Label:          "数据交易所挂牌",
		KeyColumns:     []string{"exchange_name", "product_name"},
		KeyDescription: "交易所 + 数据产品名称",
		DateFormats: map[string]DateFormat{
			"listing_date": DateFormatYMD,
		},
		Labels: map[string]string{
			"exchange_name": "交易所",
			"product_name":  "数据产品名称",
			"provider":      "数据提供方",
			"category":      "产品类别",
			"listing_date":  "挂牌日期",
			"price":         "挂牌价格",
		},
	},
	"data_asset_financing": {
		Name:           "data_asset_financing",
		Label:          "数据资产融资",
		KeyColumns:     []string{"institution_name", "borrower", "financing_date"},
		KeyDescription: "金融机构 + 融资主体 + 融资时间",
		DateFormats: map[string]DateFormat{
			"financing_date": DateFormatYMZh,
		},
		Labels: map[string]string{
			"institution_name": "金融机构",
			"borrower":         "融资主体",
			"financing_type":   "融资方式",
			"amount":           "融资金额（万元）",
			"financing_date":   "融资时间",
			"region":           "地区",
		},
	},
}

// LookupTable 查找受管表
func LookupTable(name string) (TableSpec, bool) {
	t, ok := Registry[name]
	return t, ok
}

// TableNames 受管表名（排序）
func TableNames() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
