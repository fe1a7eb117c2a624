package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"studentms/internal/config"
	"studentms/internal/database"
	"studentms/internal/handler"
	"studentms/internal/model"
	"studentms/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type listResponse struct {
	Data  []model.Student `json:"data"`
	Total int             `json:"total"`
}

func setupRouter(t *testing.T, store handler.StudentStore) http.Handler {
	t.Helper()
	imports := service.NewImportService(nil)
	return handler.NewRouter(
		handler.NewStudentHandler(store),
		handler.NewUploadHandler(context.Background(), imports, t.TempDir()),
		handler.NewProgressHandler(imports),
		"http://localhost:3000",
	)
}

func setupService(t *testing.T) *service.StudentService {
	t.Helper()
	p, err := database.Open(&config.Config{
		DBDriver: database.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "students.db"),
	})
	require.NoError(t, err)
	return service.NewStudentService(p)
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListStudents(t *testing.T) {
	svc := setupService(t)
	router := setupRouter(t, svc)
	ctx := context.Background()

	for _, s := range []model.Student{
		{Name: "John Doe", Course: "Math", Mobile: "111"},
		{Name: "Jane Doe", Course: "Physics", Mobile: "222"},
		{Name: "John Doe", Course: "Biology", Mobile: "333"},
	} {
		_, err := svc.AddStudent(ctx, s.Name, s.Course, s.Mobile)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		target      string
		expectedLen int
	}{
		{"All students", "/students", 3},
		{"Exact name", "/students?name=John+Doe", 2},
		{"Single match", "/students?name=Jane+Doe", 1},
		{"No match", "/students?name=John", 0},
		{"Empty name", "/students?name=", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, rr.Code)

			var resp listResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Len(t, resp.Data, tt.expectedLen)
			assert.Equal(t, tt.expectedLen, resp.Total)
		})
	}
}

func TestStudentLifecycle(t *testing.T) {
	router := setupRouter(t, setupService(t))

	rr := do(t, router, http.MethodPost, "/students", map[string]string{"name": "Ada", "course": "Math", "mobile": "0700"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created model.Student
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	id := strconv.FormatUint(uint64(created.ID), 10)

	rr = do(t, router, http.MethodPut, "/students/"+id, map[string]string{"name": "Ada L", "course": "Astronomy", "mobile": "0701"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"affected":1}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/students", nil)
	var resp listResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, model.Student{ID: created.ID, Name: "Ada L", Course: "Astronomy", Mobile: "0701"}, resp.Data[0])

	rr = do(t, router, http.MethodDelete, "/students/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"affected":1}`, rr.Body.String())

	rr = do(t, router, http.MethodDelete, "/students/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"affected":0}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/students", nil)
	resp = listResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Empty(t, resp.Data)
}

func TestStudentBadRequests(t *testing.T) {
	router := setupRouter(t, setupService(t))

	rr := do(t, router, http.MethodPost, "/students", map[string]string{"name": "Ada", "course": "Chemistry"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/students", bytes.NewBufferString("{"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPut, "/students/abc", map[string]string{"course": "Math"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodDelete, "/students/-1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListCourses(t *testing.T) {
	router := setupRouter(t, setupService(t))

	rr := do(t, router, http.MethodGet, "/courses", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `["Biology","Math","Astronomy","Physics"]`, rr.Body.String())
}

type MockStudentStore struct {
	mock.Mock
}

func (m *MockStudentStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	args := m.Called(ctx)
	return nil, args.Error(1)
}

func (m *MockStudentStore) SearchByName(ctx context.Context, name string) ([]model.Student, error) {
	args := m.Called(ctx, name)
	return nil, args.Error(1)
}

func (m *MockStudentStore) AddStudent(ctx context.Context, name, course, mobile string) (model.Student, error) {
	args := m.Called(ctx, name, course, mobile)
	return model.Student{}, args.Error(1)
}

func (m *MockStudentStore) UpdateStudent(ctx context.Context, id uint, name, course, mobile string) (int64, error) {
	args := m.Called(ctx, id, name, course, mobile)
	return 0, args.Error(1)
}

func (m *MockStudentStore) DeleteStudent(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return 0, args.Error(1)
}

func TestStoreErrorsAreServerErrors(t *testing.T) {
	store := new(MockStudentStore)
	fail := errors.New("connection refused")
	store.On("ListStudents", mock.Anything).Return(nil, fail)
	store.On("AddStudent", mock.Anything, "Ada", "Math", "").Return(nil, fail)
	store.On("DeleteStudent", mock.Anything, uint(3)).Return(nil, fail)
	router := setupRouter(t, store)

	rr := do(t, router, http.MethodGet, "/students", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "connection refused")

	rr = do(t, router, http.MethodPost, "/students", map[string]string{"name": "Ada", "course": "Math"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	rr = do(t, router, http.MethodDelete, "/students/3", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	store.AssertExpectations(t)
}
