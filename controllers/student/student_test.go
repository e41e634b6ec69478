package studentController

import (
	"sync"
	"testing"

	"educa/database"
	"educa/models"
	courseModels "educa/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_ConcurrentRequestsAddOneRow(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	student := models.User{Username: "sam", Password: "x"}
	require.NoError(t, db.Create(&student).Error)
	subject := courseModels.Subject{Title: "Programming", Slug: "programming"}
	require.NoError(t, db.Create(&subject).Error)
	course := courseModels.Course{OwnerID: student.ID, SubjectID: subject.ID, Title: "Go", Slug: "go"}
	require.NoError(t, db.Create(&course).Error)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := enroll(db, student.ID, course.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	ok, err := enroll(db, student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
