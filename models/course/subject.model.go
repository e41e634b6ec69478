package course

import "gorm.io/gorm"

// Subject groups courses by topic.
type Subject struct {
	gorm.Model
	Title   string   `json:"title" gorm:"size:200;not null"`
	Slug    string   `json:"slug" gorm:"size:200;uniqueIndex;not null"`
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:SubjectID"`
}
