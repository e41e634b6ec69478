package models

import (
	"gorm.io/gorm"
)

// Course permission codenames, checked by middleware.CheckPermissionMiddleware.
const (
	PermViewCourse   = "course.view_course"
	PermAddCourse    = "course.add_course"
	PermChangeCourse = "course.change_course"
	PermDeleteCourse = "course.delete_course"
)

type Permission struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID"`
	Role       string
	Permission string `gorm:"type:varchar(255)"` // e.g., "course.add_course"
	IsDeleted  bool   `gorm:"default:false"`
}

// DefaultPermissions returns the permission codenames granted to role on creation.
func DefaultPermissions(role string) []string {
	switch role {
	case RoleInstructor, RoleAdmin:
		return []string{PermViewCourse, PermAddCourse, PermChangeCourse, PermDeleteCourse}
	default:
		return nil
	}
}
