package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter registers every endpoint and wraps the router with CORS for
// allowedOrigin and an access log.
func NewRouter(students *StudentHandler, uploads *UploadHandler, progress *ProgressHandler, allowedOrigin string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/students", students.ListStudents).Methods(http.MethodGet)
	r.HandleFunc("/students", students.AddStudent).Methods(http.MethodPost)
	r.HandleFunc("/students/{id}", students.UpdateStudent).Methods(http.MethodPut)
	r.HandleFunc("/students/{id}", students.DeleteStudent).Methods(http.MethodDelete)
	r.HandleFunc("/courses", students.ListCourses).Methods(http.MethodGet)

	r.HandleFunc("/upload", uploads.UploadFiles).Methods(http.MethodPost)

	r.HandleFunc("/progress", progress.GetAllProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/file", progress.GetFileProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/sse", progress.SSEProgress).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{allowedOrigin}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return handlers.LoggingHandler(logrus.StandardLogger().Writer(), cors(r))
}
