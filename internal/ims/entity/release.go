package entity

import "time"

// 折扣状态
const (
	DiscountStatusNormal     = "normal"
	DiscountStatusDiscounted = "discounted"
)

// 定位倍率（建议零售价 = 单件成本 × 倍率）
var PositioningMultipliers = map[string]float64{
	"4.5": 4.5, // 轮回核心
	"5":   5,   // 轮回趋势
	"8":   8,   // 结晶
	"15":  15,  // 结晶限定
}

// SKU 生成状态
const (
	GenerationNone      = "none"
	GenerationCompleted = "completed"
	GenerationPartial   = "partial"
	GenerationFailed    = "failed"
)

// Release 产品发布（一个原型的一次生产批次，承载定价与KPI计算）
type Release struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	PrototypeID   string     `json:"prototype_id" gorm:"size:32;not null;index:idx_releases_proto_number,unique,priority:1"`
	ReleaseNumber int        `json:"release_number" gorm:"not null;index:idx_releases_proto_number,unique,priority:2"`
	Subtitle      string     `json:"subtitle,omitempty" gorm:"size:200"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	Status        string     `json:"status" gorm:"size:16;not null;default:draft"`
	Volume        int        `json:"volume" gorm:"not null;default:0"`

	// 标签选择（Tag id 列表）
	SizeIDs  StringList `json:"size_ids" gorm:"type:jsonb;serializer:json"`
	ColorIDs StringList `json:"color_ids" gorm:"type:jsonb;serializer:json"`

	// 研发成本（批次级，一次性）
	CostDevPattern float64 `json:"cost_dev_pattern" gorm:"type:numeric(15,2);default:0"`
	CostDevSample  float64 `json:"cost_dev_sample" gorm:"type:numeric(15,2);default:0"`
	CostDevDesign  float64 `json:"cost_dev_design" gorm:"type:numeric(15,2);default:0"`

	// 生产成本（单件）
	CostMaterial  float64 `json:"cost_material" gorm:"type:numeric(15,2);default:0"`
	CostLabor     float64 `json:"cost_labor" gorm:"type:numeric(15,2);default:0"`
	CostPackaging float64 `json:"cost_packaging" gorm:"type:numeric(15,2);default:0"`
	UnitCOGS      float64 `json:"unit_cogs" gorm:"type:numeric(15,2)"` // 派生

	// 定价策略
	Positioning        string   `json:"positioning" gorm:"size:8;not null;default:4.5"`
	OpLogistics        float64  `json:"op_logistics" gorm:"type:numeric(15,2);default:0"`
	OpAfterSale        float64  `json:"op_after_sale" gorm:"type:numeric(5,2);default:3"`
	OpCommission       float64  `json:"op_commission" gorm:"type:numeric(5,2);default:5"`
	OpChannel          float64  `json:"op_channel" gorm:"type:numeric(5,2);default:8"`
	OpTax              float64  `json:"op_tax" gorm:"type:numeric(5,2);default:5"`
	DiscountStatus     string   `json:"discount_status" gorm:"size:16;not null;default:normal"`
	CustomDiscountRate float64  `json:"custom_discount_rate" gorm:"type:numeric(5,2);default:100"`
	FinalRetailPrice   *float64 `json:"final_retail_price,omitempty" gorm:"type:numeric(15,2)"`

	// 派生定价（只读，每次写入重算）
	TotalOperationalCost float64 `json:"total_operational_cost" gorm:"type:numeric(15,2)"`
	SuggestedPrice       float64 `json:"suggested_price" gorm:"type:numeric(15,2)"`
	DiscountedPrice      float64 `json:"discounted_price" gorm:"type:numeric(15,2)"`
	GrossProfit          float64 `json:"gross_profit" gorm:"type:numeric(15,2)"`
	GrossMargin          float64 `json:"gross_margin" gorm:"type:numeric(8,2)"`

	// KPI 输入
	MarketingPercentage float64 `json:"marketing_percentage" gorm:"type:numeric(5,2);default:20"`
	ReturnRate          float64 `json:"return_rate" gorm:"type:numeric(5,2);default:5"`
	FullPriceRate       float64 `json:"full_price_rate" gorm:"type:numeric(5,2);default:70"`

	// KPI 输出（派生，只读）
	KPIOverview  ReleaseOverview   `json:"kpi_overview" gorm:"type:jsonb;serializer:json"`
	KPIBreakeven BreakevenAnalysis `json:"kpi_breakeven" gorm:"type:jsonb;serializer:json"`
	KPIForecast  ProfitForecast    `json:"kpi_forecast" gorm:"type:jsonb;serializer:json"`

	// SKU 级联
	HasSKUs             bool   `json:"has_skus" gorm:"column:has_skus;not null;default:false"`
	SKUGenerationStatus string `json:"sku_generation_status" gorm:"size:16;not null;default:none"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Prototype  *Prototype          `json:"prototype,omitempty" gorm:"foreignKey:PrototypeID"`
	Materials  []ReleaseMaterial   `json:"materials,omitempty" gorm:"foreignKey:ReleaseID"`
	ColorMedia []ReleaseColorMedia `json:"color_media,omitempty" gorm:"foreignKey:ReleaseID"`
}

func (Release) TableName() string {
	return "releases"
}

// StringList id 列表，jsonb 存储
type StringList []string

// ReleaseMaterial 成分占比（材质标签 + 百分比，合计须为 100±0.01）
type ReleaseMaterial struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	ReleaseID  string  `json:"release_id" gorm:"size:32;not null;index"`
	TagID      string  `json:"tag_id" gorm:"size:32;not null"`
	Percentage float64 `json:"percentage" gorm:"type:numeric(5,2);not null"`

	Tag *Tag `json:"tag,omitempty" gorm:"foreignKey:TagID"`
}

func (ReleaseMaterial) TableName() string {
	return "release_materials"
}

// ReleaseColorMedia 配色展示媒体（展示数据，不参与定价）
type ReleaseColorMedia struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	ReleaseID string    `json:"release_id" gorm:"size:32;not null;index"`
	ColorID   string    `json:"color_id" gorm:"size:32;not null"`
	Media     MediaList `json:"media" gorm:"type:jsonb;serializer:json"`

	Color *Tag `json:"color,omitempty" gorm:"foreignKey:ColorID"`
}

func (ReleaseColorMedia) TableName() string {
	return "release_color_media"
}

// ReleaseOverview Release一览（基础经营指标）
type ReleaseOverview struct {
	TotalDevelopmentCost  float64 `json:"total_development_cost"`
	TotalCOGS             float64 `json:"total_cogs"`
	TotalOperationalCosts float64 `json:"total_operational_costs"`
	TotalCost             float64 `json:"total_cost"`
	UnitCost              float64 `json:"unit_cost"`
	ReleaseVolume         int     `json:"release_volume"`
	FinalPrice            float64 `json:"final_price"`
}

// BreakevenAnalysis 回本分析（含营销成本与退货率）
type BreakevenAnalysis struct {
	MarketingCost   float64 `json:"marketing_cost"`
	BreakevenUnits  int     `json:"breakeven_units"`
	ActualSoldUnits int     `json:"actual_sold_units"`
	CPA             float64 `json:"cpa"`
	CPO             float64 `json:"cpo"`
}

// ProfitForecast 收益预测
type ProfitForecast struct {
	ExpectedOrders          int     `json:"expected_orders"`
	ExpectedActualSales     int     `json:"expected_actual_sales"`
	ExpectedTotalRevenue    float64 `json:"expected_total_revenue"`
	ExpectedActualRevenue   float64 `json:"expected_actual_revenue"`
	ExpectedMarketingCost   float64 `json:"expected_marketing_cost"`
	ExpectedTotalCost       float64 `json:"expected_total_cost"`
	ExpectedNetProfit       float64 `json:"expected_net_profit"`
	ExpectedNetProfitMargin float64 `json:"expected_net_profit_margin"`
	ExpectedROI             float64 `json:"expected_roi"`
}
