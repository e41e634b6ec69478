package contents_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"educa/database"
	"educa/models"
	"educa/models/course"
	"educa/services/contents"
	"educa/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type brokenStore struct{}

func (brokenStore) Save(context.Context, string, io.Reader) error { return errors.New("bucket offline") }
func (brokenStore) Delete(context.Context, string) error          { return errors.New("bucket offline") }
func (brokenStore) URL(key string) string                         { return key }

func setup(t *testing.T) (*gorm.DB, *models.User, *course.Module) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	owner := models.User{Username: "ann", Password: "x", Role: models.RoleInstructor}
	require.NoError(t, db.Create(&owner).Error)
	subject := course.Subject{Title: "Programming", Slug: "programming"}
	require.NoError(t, db.Create(&subject).Error)
	c := course.Course{OwnerID: owner.ID, SubjectID: subject.ID, Title: "Go", Slug: "go"}
	require.NoError(t, db.Create(&c).Error)
	m := course.Module{CourseID: c.ID, Title: "Basics"}
	require.NoError(t, db.Create(&m).Error)
	return db, &owner, &m
}

func TestParseItemType(t *testing.T) {
	for _, name := range []string{"text", "Video", " image ", "FILE"} {
		_, err := contents.ParseItemType(name)
		assert.NoError(t, err, name)
	}
	_, err := contents.ParseItemType("quiz")
	assert.ErrorIs(t, err, contents.ErrUnknownItemType)
}

func TestItemValidate(t *testing.T) {
	assert.NoError(t, contents.NewText(1, "t", "body").Validate())

	mismatched := contents.Item{Type: course.ItemVideo, Text: &course.Text{}}
	assert.ErrorIs(t, mismatched.Validate(), contents.ErrInvalidItem)

	double := contents.NewText(1, "t", "body")
	double.Video = &course.Video{}
	assert.ErrorIs(t, double.Validate(), contents.ErrInvalidItem)

	unknown := contents.Item{Type: "quiz", Text: &course.Text{}}
	assert.ErrorIs(t, unknown.Validate(), contents.ErrUnknownItemType)
}

func TestCreate_AssignsOrderAndLinksItem(t *testing.T) {
	db, owner, module := setup(t)

	first, err := contents.Create(db, module.ID, contents.NewText(owner.ID, "Intro", "hello"))
	require.NoError(t, err)
	second, err := contents.Create(db, module.ID, contents.NewVideo(owner.ID, "Talk", "https://youtu.be/x"))
	require.NoError(t, err)

	assert.Equal(t, 0, *first.Order)
	assert.Equal(t, 1, *second.Order)
	assert.Equal(t, course.ItemVideo, second.ItemType)

	item, err := contents.Load(db, *second)
	require.NoError(t, err)
	require.NotNil(t, item.Video)
	assert.Equal(t, "https://youtu.be/x", item.Video.URL)
	assert.Nil(t, item.Text)
}

func TestListForModule_ResolvesInOrder(t *testing.T) {
	db, owner, module := setup(t)

	a, err := contents.Create(db, module.ID, contents.NewText(owner.ID, "A", "a"))
	require.NoError(t, err)
	b, err := contents.Create(db, module.ID, contents.NewFile(owner.ID, "B", "files/b.pdf"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&course.Content{}).Where("id = ?", a.ID).Update("sort_order", 5).Error)

	entries, err := contents.ListForModule(db, module.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, b.ID, entries[0].Content.ID)
	assert.Equal(t, course.ItemFile, entries[0].Item.Type)
	assert.Equal(t, "A", entries[1].Item.Text.Title)
}

func TestDelete_VideoRemovesItemAndWrapper(t *testing.T) {
	db, owner, module := setup(t)

	content, err := contents.Create(db, module.ID, contents.NewVideo(owner.ID, "Talk", "https://youtu.be/x"))
	require.NoError(t, err)

	require.NoError(t, contents.Delete(context.Background(), db, nil, *content))

	assert.ErrorIs(t, db.First(&course.Content{}, content.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, db.Unscoped().First(&course.Video{}, content.ItemID).Error, gorm.ErrRecordNotFound)
}

func TestDelete_ImageReleasesStoredFile(t *testing.T) {
	db, owner, module := setup(t)
	store := storage.NewLocalStore(t.TempDir(), "/media/")
	ctx := context.Background()

	key := storage.NewKey("images", "pixel.png")
	require.NoError(t, store.Save(ctx, key, strings.NewReader("png")))

	content, err := contents.Create(db, module.ID, contents.NewImage(owner.ID, "Pixel", key))
	require.NoError(t, err)

	require.NoError(t, contents.Delete(ctx, db, store, *content))
	assert.ErrorIs(t, store.Delete(ctx, key), storage.ErrNotFound, "file should already be released")
	assert.ErrorIs(t, db.First(&course.Image{}, content.ItemID).Error, gorm.ErrRecordNotFound)
}

func TestDelete_ReleaseFailureKeepsBothRows(t *testing.T) {
	db, owner, module := setup(t)

	content, err := contents.Create(db, module.ID, contents.NewFile(owner.ID, "Slides", "files/slides.pdf"))
	require.NoError(t, err)

	err = contents.Delete(context.Background(), db, brokenStore{}, *content)
	require.Error(t, err)

	assert.NoError(t, db.First(&course.Content{}, content.ID).Error)
	assert.NoError(t, db.First(&course.File{}, content.ItemID).Error)
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	db, owner, module := setup(t)
	store := storage.NewLocalStore(t.TempDir(), "/media/")

	content, err := contents.Create(db, module.ID, contents.NewFile(owner.ID, "Gone", "files/never-uploaded.pdf"))
	require.NoError(t, err)

	require.NoError(t, contents.Delete(context.Background(), db, store, *content))
	assert.ErrorIs(t, db.First(&course.Content{}, content.ID).Error, gorm.ErrRecordNotFound)
}

func TestLoadItem_RespectsOwner(t *testing.T) {
	db, owner, module := setup(t)

	content, err := contents.Create(db, module.ID, contents.NewText(owner.ID, "Mine", "body"))
	require.NoError(t, err)

	_, err = contents.LoadItem(db, course.ItemText, content.ItemID, owner.ID)
	assert.NoError(t, err)
	_, err = contents.LoadItem(db, course.ItemText, content.ItemID, owner.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteForModule(t *testing.T) {
	db, owner, module := setup(t)

	for i := 0; i < 3; i++ {
		_, err := contents.Create(db, module.ID, contents.NewText(owner.ID, "T", "b"))
		require.NoError(t, err)
	}

	require.NoError(t, contents.DeleteForModule(context.Background(), db, nil, module.ID))

	var count int64
	require.NoError(t, db.Model(&course.Content{}).Where("module_id = ?", module.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&course.Text{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdate_KeepsTypeAndID(t *testing.T) {
	db, owner, module := setup(t)

	content, err := contents.Create(db, module.ID, contents.NewText(owner.ID, "Draft", "old"))
	require.NoError(t, err)

	item, err := contents.Load(db, *content)
	require.NoError(t, err)
	item.Text.Body = "new"
	require.NoError(t, contents.Update(db, *content, item))

	reloaded, err := contents.Load(db, *content)
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.Text.Body)
	assert.Equal(t, content.ItemID, reloaded.Text.ID)

	video := contents.NewVideo(owner.ID, "Swap", "https://youtu.be/x")
	assert.ErrorIs(t, contents.Update(db, *content, video), contents.ErrTypeChange)
}
