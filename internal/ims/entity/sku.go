package entity

import "time"

// 库存状态（按序列号统计派生）
const (
	StockStatusPending    = "pending"      // 未生成序列号
	StockStatusInStock    = "in_stock"     // 有可售库存
	StockStatusLowStock   = "low_stock"    // 可售低于阈值
	StockStatusOutOfStock = "out_of_stock" // 无可售库存
)

// SKU 色×码最小销售单元，由 Release 级联生成
type SKU struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Code        string `json:"code" gorm:"size:100;not null;uniqueIndex"`
	ReleaseID   string `json:"release_id" gorm:"size:32;not null;index"`
	PrototypeID string `json:"prototype_id" gorm:"size:32;not null;index"`
	ColorID     string `json:"color_id" gorm:"size:32;not null"`
	SizeID      string `json:"size_id" gorm:"size:32;not null"`

	Quantity    int    `json:"quantity" gorm:"not null;default:0"`
	StockStatus string `json:"stock_status" gorm:"size:16;not null;default:pending"`

	SerialGenerationStatus string `json:"serial_generation_status" gorm:"size:16;not null;default:none"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Release *Release `json:"release,omitempty" gorm:"foreignKey:ReleaseID"`
	Color   *Tag     `json:"color,omitempty" gorm:"foreignKey:ColorID"`
	Size    *Tag     `json:"size,omitempty" gorm:"foreignKey:SizeID"`
}

func (SKU) TableName() string {
	return "skus"
}
