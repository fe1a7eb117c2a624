package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"studentms/internal/model"
)

type StudentStore interface {
	ListStudents(ctx context.Context) ([]model.Student, error)
	SearchByName(ctx context.Context, name string) ([]model.Student, error)
	AddStudent(ctx context.Context, name, course, mobile string) (model.Student, error)
	UpdateStudent(ctx context.Context, id uint, name, course, mobile string) (int64, error)
	DeleteStudent(ctx context.Context, id uint) (int64, error)
}

type StudentHandler struct {
	studentService StudentStore
}

func NewStudentHandler(studentService StudentStore) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

type studentRequest struct {
	Name   string `json:"name"`
	Course string `json:"course"`
	Mobile string `json:"mobile"`
}

// ListStudents returns every student, or only those whose name equals the
// name query parameter when it is present.
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		students []model.Student
		err      error
	)
	if query.Has("name") {
		students, err = h.studentService.SearchByName(r.Context(), query.Get("name"))
	} else {
		students, err = h.studentService.ListStudents(r.Context())
	}
	if err != nil {
		logrus.WithError(err).Error("list students")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if students == nil {
		students = []model.Student{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  students,
		"total": len(students),
	})
}

func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStudent(w, r)
	if !ok {
		return
	}

	student, err := h.studentService.AddStudent(r.Context(), req.Name, req.Course, req.Mobile)
	if err != nil {
		logrus.WithError(err).Error("add student")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	req, ok := decodeStudent(w, r)
	if !ok {
		return
	}

	affected, err := h.studentService.UpdateStudent(r.Context(), id, req.Name, req.Course, req.Mobile)
	if err != nil {
		logrus.WithError(err).WithField("id", id).Error("update student")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	affected, err := h.studentService.DeleteStudent(r.Context(), id)
	if err != nil {
		logrus.WithError(err).WithField("id", id).Error("delete student")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"affected": affected})
}

func (h *StudentHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Courses)
}

func decodeStudent(w http.ResponseWriter, r *http.Request) (studentRequest, bool) {
	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return req, false
	}
	if !model.ValidCourse(req.Course) {
		http.Error(w, "unknown course "+strconv.Quote(req.Course), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid student id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("encode response")
	}
}
