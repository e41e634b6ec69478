package course

import (
	"educa/services/ordering"

	"gorm.io/gorm"
)

// Module represents a section within a course
type Module struct {
	gorm.Model
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Order       *int      `json:"order" gorm:"column:sort_order;not null"` // position within the course
	Contents    []Content `json:"contents,omitempty" gorm:"foreignKey:ModuleID"`
}

// BeforeCreate assigns the next position in the course when none was given.
func (m *Module) BeforeCreate(tx *gorm.DB) error {
	return ordering.Assign(tx, &Module{}, ordering.Scope{Column: "course_id", Parent: m.CourseID}, &m.Order)
}
