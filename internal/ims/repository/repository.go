package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User      *UserRepository
	Tag       *TagRepository
	Prototype *PrototypeRepository
	Release   *ReleaseRepository
	SKU       *SKURepository
	Serial    *SerialRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Tag:       NewTagRepository(db),
		Prototype: NewPrototypeRepository(db),
		Release:   NewReleaseRepository(db),
		SKU:       NewSKURepository(db),
		Serial:    NewSerialRepository(db),
	}
}
