package entity

import "time"

// Prototype 原型（设计模板，Release 由原型派生）
type Prototype struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Code        string    `json:"code" gorm:"size:32;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Subtitle    string    `json:"subtitle,omitempty" gorm:"size:200"`
	Slug        string    `json:"slug,omitempty" gorm:"size:128;index"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Status      string    `json:"status" gorm:"size:16;not null;default:draft"`
	Media       MediaList `json:"media,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedBy   string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Prototype) TableName() string {
	return "prototypes"
}

// MediaRef 对象存储中的媒体文件引用
type MediaRef struct {
	FileID   string `json:"file_id"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// MediaList 媒体文件引用列表
type MediaList []MediaRef
