package courseRoutes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"educa/config"
	authController "educa/controllers/auth"
	"educa/database"
	"educa/middleware"
	"educa/models"
	"educa/models/course"
	"educa/services"
	"educa/services/cache"
	"educa/services/catalog"
	"educa/services/mailer"
	"educa/services/storage"
	authValidator "educa/validators/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *storage.LocalStore
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", SaltRound: 4}

	db, err := database.OpenMemory()
	require.NoError(t, err)
	database.Database.Db = db

	mem, err := cache.NewMemoryCache(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mem.Close() })

	store := storage.NewLocalStore(t.TempDir(), "/media/")
	services.App = services.Registry{
		Store:   store,
		Catalog: catalog.New(mem, 0),
		Mailer:  mailer.LogMailer{},
	}

	app := fiber.New()
	SetupCourseRoutes(app)
	SetupManageRoutes(app)
	return &testEnv{app: app, db: db, store: store}
}

func (e *testEnv) user(t *testing.T, username, role string) string {
	t.Helper()
	u, err := authController.CreateUser(e.db, &authValidator.RegisterRequest{Username: username, Password: "password123"}, role)
	require.NoError(t, err)
	token, err := middleware.GenerateJWT(u.ID, u.Username, u.Role, u.Email)
	require.NoError(t, err)
	return token
}

func (e *testEnv) userID(t *testing.T, username string) uint {
	t.Helper()
	var u models.User
	require.NoError(t, e.db.Where("username = ?", username).First(&u).Error)
	return u.ID
}

func (e *testEnv) course(t *testing.T, ownerID uint, slug string) *course.Course {
	t.Helper()
	subject := course.Subject{Title: "Subject " + slug, Slug: "subject-" + slug}
	require.NoError(t, e.db.Create(&subject).Error)
	c := course.Course{OwnerID: ownerID, SubjectID: subject.ID, Title: slug, Slug: slug}
	require.NoError(t, e.db.Create(&c).Error)
	return &c
}

func (e *testEnv) module(t *testing.T, courseID uint, title string) *course.Module {
	t.Helper()
	m := course.Module{CourseID: courseID, Title: title}
	require.NoError(t, e.db.Create(&m).Error)
	return &m
}

func (e *testEnv) do(t *testing.T, method, path, token, contentType string, body io.Reader) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (e *testEnv) sendJSON(t *testing.T, method, path, token, body string) (*http.Response, envelope) {
	return e.do(t, method, path, token, fiber.MIMEApplicationJSON, bytes.NewBufferString(body))
}

func (e *testEnv) order(t *testing.T, model interface{}, id uint) int {
	t.Helper()
	var pos int
	require.NoError(t, e.db.Model(model).Where("id = ?", id).Select("sort_order").Scan(&pos).Error)
	return pos
}

func TestModuleOrder_OnlyOwnedRowsMove(t *testing.T) {
	e := newEnv(t)
	annToken := e.user(t, "ann", models.RoleInstructor)
	e.user(t, "bob", models.RoleInstructor)

	mine := e.module(t, e.course(t, e.userID(t, "ann"), "ann-go").ID, "mine")
	theirs := e.module(t, e.course(t, e.userID(t, "bob"), "bob-go").ID, "theirs")

	resp, env := e.sendJSON(t, fiber.MethodPost, "/manage/module/order", annToken,
		fmt.Sprintf(`{"%d": 5, "%d": 9}`, mine.ID, theirs.ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Status)
	assert.JSONEq(t, `{"saved": "OK"}`, string(env.Data))

	assert.Equal(t, 5, e.order(t, &course.Module{}, mine.ID))
	assert.Equal(t, 0, e.order(t, &course.Module{}, theirs.ID))
}

func TestModuleOrder_MalformedPayloadRejected(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	m := e.module(t, e.course(t, e.userID(t, "ann"), "go").ID, "m")

	for _, body := range []string{`[1, 2]`, `not json`, fmt.Sprintf(`{"%d": "first"}`, m.ID), fmt.Sprintf(`{"%d": 1.5}`, m.ID)} {
		resp, env := e.sendJSON(t, fiber.MethodPost, "/manage/module/order", token, body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
		assert.False(t, env.Status)
		assert.Equal(t, "Invalid order payload!", env.Message, body)
	}
	assert.Equal(t, 0, e.order(t, &course.Module{}, m.ID))
}

func TestContentOrder_ThroughModuleOwnership(t *testing.T) {
	e := newEnv(t)
	annToken := e.user(t, "ann", models.RoleInstructor)
	e.user(t, "bob", models.RoleInstructor)

	annModule := e.module(t, e.course(t, e.userID(t, "ann"), "ann-go").ID, "m")
	bobModule := e.module(t, e.course(t, e.userID(t, "bob"), "bob-go").ID, "m")
	mine := course.Content{ModuleID: annModule.ID, ItemType: course.ItemText, ItemID: 1}
	theirs := course.Content{ModuleID: bobModule.ID, ItemType: course.ItemText, ItemID: 2}
	require.NoError(t, e.db.Create(&mine).Error)
	require.NoError(t, e.db.Create(&theirs).Error)

	body := fmt.Sprintf(`{"%d": 3, "%d": 7}`, mine.ID, theirs.ID)
	for i := 0; i < 2; i++ {
		resp, _ := e.sendJSON(t, fiber.MethodPost, "/manage/content/order", annToken, body)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 3, e.order(t, &course.Content{}, mine.ID))
	assert.Equal(t, 0, e.order(t, &course.Content{}, theirs.ID))
}

func TestManageRoutes_RejectStudents(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "sam", models.RoleStudent)

	resp, _ := e.sendJSON(t, fiber.MethodPost, "/manage/module/order", token, `{}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = e.sendJSON(t, fiber.MethodPost, "/manage/module/order", "", `{}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCourseAndModuleCreate(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	subject := course.Subject{Title: "Programming", Slug: "programming"}
	require.NoError(t, e.db.Create(&subject).Error)

	resp, env := e.sendJSON(t, fiber.MethodPost, "/manage/course/create", token,
		fmt.Sprintf(`{"subject_id": %d, "title": "Go for Django people", "overview": "x"}`, subject.ID))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var created course.Course
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "go-for-django-people", created.Slug)

	for i, title := range []string{"Intro", "Types", "Concurrency"} {
		resp, env = e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/course/%d/module", created.ID), token,
			fmt.Sprintf(`{"title": %q}`, title))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
		var m course.Module
		require.NoError(t, json.Unmarshal(env.Data, &m))
		require.NotNil(t, m.Order)
		assert.Equal(t, i, *m.Order)
	}

	resp, env = e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/course/%d/module", created.ID), token, `{"title": ""}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Data), "title")
}

func TestUpdateModules_Formset(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	c := e.course(t, e.userID(t, "ann"), "go")
	keep := e.module(t, c.ID, "keep")
	drop := e.module(t, c.ID, "drop")

	body := fmt.Sprintf(`{"modules": [
		{"id": %d, "title": "kept", "order": 42},
		{"id": %d, "delete": true},
		{"title": "added", "order": 0}
	]}`, keep.ID, drop.ID)
	resp, env := e.sendJSON(t, fiber.MethodPut, fmt.Sprintf("/manage/course/%d/modules", c.ID), token, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var modules []course.Module
	require.NoError(t, json.Unmarshal(env.Data, &modules))
	require.Len(t, modules, 2)
	assert.Equal(t, "kept", modules[0].Title)
	assert.Equal(t, 0, *modules[0].Order, "editing a module keeps its position")
	assert.Equal(t, 0, e.order(t, &course.Module{}, keep.ID))
	assert.Equal(t, "added", modules[1].Title)
	assert.Equal(t, 2, *modules[1].Order, "new rows go after every existing sibling")
	assert.ErrorIs(t, e.db.First(&course.Module{}, drop.ID).Error, gorm.ErrRecordNotFound)

	other := e.module(t, e.course(t, e.userID(t, "ann"), "other").ID, "elsewhere")
	resp, _ = e.sendJSON(t, fiber.MethodPut, fmt.Sprintf("/manage/course/%d/modules", c.ID), token,
		fmt.Sprintf(`{"modules": [{"id": %d, "title": "stolen"}]}`, other.ID))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestContentCreateAndDeleteRedirects(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	m := e.module(t, e.course(t, e.userID(t, "ann"), "go").ID, "m")

	resp, env := e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/module/%d/content/video", m.ID), token,
		`{"title": "Talk", "url": "https://www.youtube.com/watch?v=x"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var content course.Content
	require.NoError(t, json.Unmarshal(env.Data, &content))
	assert.Equal(t, course.ItemVideo, content.ItemType)

	resp, _ = e.do(t, fiber.MethodPost, fmt.Sprintf("/manage/content/%d/delete", content.ID), token, "", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, fmt.Sprintf("/manage/module/%d", m.ID), resp.Header.Get("Location"))

	assert.ErrorIs(t, e.db.First(&course.Content{}, content.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, e.db.Unscoped().First(&course.Video{}, content.ItemID).Error, gorm.ErrRecordNotFound)
}

func TestContentDelete_OtherOwnerNotFound(t *testing.T) {
	e := newEnv(t)
	e.user(t, "ann", models.RoleInstructor)
	bobToken := e.user(t, "bob", models.RoleInstructor)
	m := e.module(t, e.course(t, e.userID(t, "ann"), "go").ID, "m")

	text := course.Text{ItemBase: course.ItemBase{OwnerID: e.userID(t, "ann"), Title: "t"}, Body: "b"}
	require.NoError(t, e.db.Create(&text).Error)
	content := course.Content{ModuleID: m.ID, ItemType: course.ItemText, ItemID: text.ID}
	require.NoError(t, e.db.Create(&content).Error)

	resp, _ := e.do(t, fiber.MethodPost, fmt.Sprintf("/manage/content/%d/delete", content.ID), bobToken, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, e.db.First(&course.Content{}, content.ID).Error)
}

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func multipartBody(t *testing.T, title, filename string, data []byte) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func TestImageUpload(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	m := e.module(t, e.course(t, e.userID(t, "ann"), "go").ID, "m")
	path := fmt.Sprintf("/manage/module/%d/content/image", m.ID)

	ct, body := multipartBody(t, "Not a picture", "notes.png", []byte("just some words"))
	resp, env := e.do(t, fiber.MethodPost, path, token, ct, body)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Data), "file")

	ct, body = multipartBody(t, "Pixel", "pixel.png", pngPixel)
	resp, env = e.do(t, fiber.MethodPost, path, token, ct, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var content course.Content
	require.NoError(t, json.Unmarshal(env.Data, &content))
	var image course.Image
	require.NoError(t, e.db.First(&image, content.ItemID).Error)
	assert.Contains(t, image.File, "images/")

	// deleting the content releases the stored file
	resp, _ = e.do(t, fiber.MethodPost, fmt.Sprintf("/manage/content/%d/delete", content.ID), token, "", nil)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.ErrorIs(t, e.store.Delete(context.Background(), image.File), storage.ErrNotFound)
}

func TestTextUpdateKeepsItem(t *testing.T) {
	e := newEnv(t)
	token := e.user(t, "ann", models.RoleInstructor)
	m := e.module(t, e.course(t, e.userID(t, "ann"), "go").ID, "m")

	resp, env := e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/module/%d/content/text", m.ID), token,
		`{"title": "Notes", "content": "first"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
	var content course.Content
	require.NoError(t, json.Unmarshal(env.Data, &content))

	resp, env = e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/module/%d/content/text/%d", m.ID, content.ItemID), token,
		`{"title": "Notes", "content": "second"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, env.Message)

	var text course.Text
	require.NoError(t, e.db.First(&text, content.ItemID).Error)
	assert.Equal(t, "second", text.Body)

	resp, _ = e.sendJSON(t, fiber.MethodPost, fmt.Sprintf("/manage/module/%d/content/quiz", m.ID), token, `{"title": "x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPublicCatalogue(t *testing.T) {
	e := newEnv(t)
	e.user(t, "ann", models.RoleInstructor)
	c := e.course(t, e.userID(t, "ann"), "go")
	e.module(t, c.ID, "one")
	e.module(t, c.ID, "two")

	resp, env := e.do(t, fiber.MethodGet, "/course/list", "", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Subjects []catalog.SubjectCount  `json:"subjects"`
		Courses  []catalog.CourseSummary `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Courses, 1)
	assert.EqualValues(t, 2, list.Courses[0].TotalModules)
	require.Len(t, list.Subjects, 1)
	assert.EqualValues(t, 1, list.Subjects[0].TotalCourses)

	resp, _ = e.do(t, fiber.MethodGet, "/course/list?subject=nothing-here", "", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, env = e.do(t, fiber.MethodGet, "/course/go", "", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail course.Course
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.Modules, 2)
	assert.Equal(t, "one", detail.Modules[0].Title)
}
