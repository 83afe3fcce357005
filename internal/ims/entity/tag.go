package entity

import "time"

// 标签类型
const (
	TagTypeSize        = "size"
	TagTypeColor       = "color"
	TagTypeMaterial    = "material"
	TagTypeOrigin      = "origin"
	TagTypeMeasurement = "measurement"
)

// TagTypes 所有合法标签类型
var TagTypes = []string{TagTypeSize, TagTypeColor, TagTypeMaterial, TagTypeOrigin, TagTypeMeasurement}

// Tag 标签（尺码/颜色/材质/产地/测量细节）
// type=color 时 Value 为十六进制颜色代码（保存前统一转大写）
type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Type      string    `json:"type" gorm:"size:16;not null;index"`
	Name      string    `json:"name" gorm:"size:64;not null"`
	Value     string    `json:"value,omitempty" gorm:"size:16"`
	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// IsValidTagType 检查标签类型是否合法
func IsValidTagType(t string) bool {
	for _, v := range TagTypes {
		if v == t {
			return true
		}
	}
	return false
}
