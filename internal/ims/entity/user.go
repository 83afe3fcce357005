package entity

import "time"

// 角色
const (
	RoleHeadArchitect = "head-architect"
	RoleArchitect     = "architect"
	RoleResident      = "resident"
)

var Roles = []string{RoleHeadArchitect, RoleArchitect, RoleResident}

func IsValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User 系统用户
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Email        string    `json:"email" gorm:"size:128;not null;uniqueIndex"`
	Name         string    `json:"name" gorm:"size:64"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	Role         string    `json:"role" gorm:"size:24;not null;default:resident"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
