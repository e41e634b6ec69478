package course

import (
	"educa/models"

	"gorm.io/gorm"
)

// Enrollment joins a student to a course. A student appears at most once per course.
type Enrollment struct {
	gorm.Model
	UserID   uint         `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID uint         `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	User     *models.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Course   *Course      `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
