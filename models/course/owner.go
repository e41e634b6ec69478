package course

import (
	"educa/services/ordering"

	"gorm.io/gorm"
)

// OwnedCourseIDs selects the ids of the courses ownerID owns.
func OwnedCourseIDs(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&Course{}).Select("id").Where("owner_id = ?", ownerID)
}

// OwnedModuleIDs selects the ids of the modules inside courses ownerID owns.
func OwnedModuleIDs(db *gorm.DB, ownerID uint) *gorm.DB {
	return db.Model(&Module{}).
		Select("modules.id").
		Joins("JOIN courses ON courses.id = modules.course_id AND courses.deleted_at IS NULL").
		Where("courses.owner_id = ?", ownerID)
}

// ModuleOwnership restricts module reorders to ownerID's courses.
func ModuleOwnership(db *gorm.DB, ownerID uint) ordering.Ownership {
	return ordering.Ownership{Column: "course_id", Parents: OwnedCourseIDs(db, ownerID)}
}

// ContentOwnership restricts content reorders to modules of ownerID's courses.
func ContentOwnership(db *gorm.DB, ownerID uint) ordering.Ownership {
	return ordering.Ownership{Column: "module_id", Parents: OwnedModuleIDs(db, ownerID)}
}
