package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Username  string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Name      string    `json:"name" gorm:"default:''"`
	Email     string    `json:"email" gorm:"default:''"`
	Role      string    `json:"role" gorm:"default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	Password  string    `json:"-" gorm:"not null"`
	LastLogin time.Time `json:"last_login" gorm:"default:NULL"`
	IsDeleted bool      `json:"-" gorm:"default:false"`
}
