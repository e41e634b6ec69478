// Package catalog answers the public course listing queries.
package catalog

import (
	"context"
	"time"

	"educa/logger"
	"educa/models/course"
	"educa/services/cache"
	"educa/services/ordering"

	"gorm.io/gorm"
)

const subjectsKey = "subjects:all"

// SubjectCount is a subject with the number of courses filed under it.
type SubjectCount struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	TotalCourses int64  `json:"total_courses"`
}

// CourseSummary is a course row for listings.
type CourseSummary struct {
	course.Course
	TotalModules int64 `json:"total_modules"`
}

// Catalog serves the subject sidebar through a cache. The sidebar is not refreshed when courses
// change; it can lag behind by up to ttl.
type Catalog struct {
	cache cache.Cache
	ttl   time.Duration
}

func New(c cache.Cache, ttl time.Duration) *Catalog {
	return &Catalog{cache: c, ttl: ttl}
}

// Subjects returns every subject with its course count, from cache when present.
func (c *Catalog) Subjects(ctx context.Context, db *gorm.DB) ([]SubjectCount, error) {
	var subjects []SubjectCount
	found, err := c.cache.Get(ctx, subjectsKey, &subjects)
	if err != nil {
		logger.Log.Warn("Subject cache read failed", "error", err)
	}
	if found {
		return subjects, nil
	}

	subjects, err = countSubjects(db)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, subjectsKey, subjects, c.ttl); err != nil {
		logger.Log.Warn("Subject cache write failed", "error", err)
	}
	return subjects, nil
}

// Warm recomputes the subject listing and overwrites the cached copy.
func (c *Catalog) Warm(ctx context.Context, db *gorm.DB) error {
	subjects, err := countSubjects(db)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, subjectsKey, subjects, c.ttl)
}

func countSubjects(db *gorm.DB) ([]SubjectCount, error) {
	var out []SubjectCount
	err := db.Model(&course.Subject{}).
		Select("subjects.id, subjects.title, subjects.slug, COUNT(courses.id) AS total_courses").
		Joins("LEFT JOIN courses ON courses.subject_id = subjects.id AND courses.deleted_at IS NULL").
		Group("subjects.id, subjects.title, subjects.slug").
		Order("subjects.title asc").
		Scan(&out).Error
	return out, err
}

// Courses lists courses newest first, optionally only those of one subject.
func Courses(db *gorm.DB, subjectSlug string) ([]CourseSummary, error) {
	q := db.Model(&course.Course{}).Preload("Subject").Preload("Owner").Order("courses.created_at desc")
	if subjectSlug != "" {
		q = q.Joins("JOIN subjects ON subjects.id = courses.subject_id").Where("subjects.slug = ?", subjectSlug)
	}

	var courses []course.Course
	if err := q.Find(&courses).Error; err != nil {
		return nil, err
	}
	return withModuleCounts(db, courses)
}

// EnrolledCourses lists the courses a student has joined.
func EnrolledCourses(db *gorm.DB, userID uint) ([]CourseSummary, error) {
	var courses []course.Course
	err := db.Model(&course.Course{}).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Where("enrollments.user_id = ?", userID).
		Preload("Subject").
		Order("courses.created_at desc").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return withModuleCounts(db, courses)
}

func withModuleCounts(db *gorm.DB, courses []course.Course) ([]CourseSummary, error) {
	out := make([]CourseSummary, len(courses))
	if len(courses) == 0 {
		return out, nil
	}

	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	var counts []struct {
		CourseID uint
		Total    int64
	}
	err := db.Model(&course.Module{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", ids).
		Group("course_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byCourse := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byCourse[c.CourseID] = c.Total
	}
	for i, c := range courses {
		out[i] = CourseSummary{Course: c, TotalModules: byCourse[c.ID]}
	}
	return out, nil
}

// CourseBySlug loads a course with its subject, owner and modules in position order.
func CourseBySlug(db *gorm.DB, slug string) (*course.Course, error) {
	var c course.Course
	err := db.Preload("Subject").Preload("Owner").
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(ordering.Column + " asc, id asc")
		}).
		Where("slug = ?", slug).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CourseWithModules loads a course by id with its modules in position order.
func CourseWithModules(db *gorm.DB, id uint) (*course.Course, error) {
	var c course.Course
	err := db.Preload("Subject").
		Preload("Modules", func(tx *gorm.DB) *gorm.DB {
			return tx.Order(ordering.Column + " asc, id asc")
		}).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}
