package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Importer interface {
	ProcessFile(ctx context.Context, importID, filePath, fileName string) error
}

// UploadHandler runs imports on ctx, so canceling it stops every import
// still in flight.
type UploadHandler struct {
	ctx           context.Context
	importService Importer
	uploadDir     string
	imports       sync.WaitGroup
}

type importRef struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

func NewUploadHandler(ctx context.Context, importService Importer, uploadDir string) *UploadHandler {
	return &UploadHandler{ctx: ctx, importService: importService, uploadDir: uploadDir}
}

// Wait blocks until every started import has returned and its stored file
// is removed.
func (h *UploadHandler) Wait() {
	h.imports.Wait()
}

// UploadFiles stores each uploaded CSV or XLSX file and imports it in the
// background. Progress is reported by the progress endpoints.
func (h *UploadHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		http.Error(w, "Failed to create uploads directory", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(100 << 20); err != nil {
		http.Error(w, "File too large or bad request", http.StatusRequestEntityTooLarge)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	fileNames := make([]string, 0, len(files))
	imports := make([]importRef, 0, len(files))
	for _, header := range files {
		name := filepath.Base(header.Filename)
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			logrus.WithField("file", name).Warn("skipping upload with unsupported type")
			continue
		}

		id := uuid.NewString()
		savePath := filepath.Join(h.uploadDir, id+ext)
		if err := saveUpload(header, savePath); err != nil {
			logrus.WithError(err).WithField("file", name).Error("save upload")
			continue
		}
		fileNames = append(fileNames, name)
		imports = append(imports, importRef{ID: id, FileName: name})

		h.imports.Add(1)
		go func(id, path, name string) {
			defer h.imports.Done()
			defer os.Remove(path)
			if err := h.importService.ProcessFile(h.ctx, id, path, name); err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{"import": id, "file": name}).Error("import file")
			}
		}(id, savePath, name)
	}

	if len(fileNames) == 0 {
		http.Error(w, "No CSV or XLSX files uploaded", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Files uploaded successfully and processing started",
		"files":   fileNames,
		"imports": imports,
	})
}

func saveUpload(header *multipart.FileHeader, savePath string) error {
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	out, err := os.Create(savePath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
