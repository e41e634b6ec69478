package course

import (
	"educa/models"

	"gorm.io/gorm"
)

// Course is owned by an instructor and holds an ordered list of modules.
type Course struct {
	gorm.Model
	OwnerID   uint         `json:"owner_id" gorm:"index;not null"`
	Owner     *models.User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	SubjectID uint         `json:"subject_id" gorm:"index;not null"`
	Subject   *Subject     `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Title     string       `json:"title" gorm:"size:200;not null"`
	Slug      string       `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	Overview  string       `json:"overview" gorm:"type:text"`
	Modules   []Module     `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}
