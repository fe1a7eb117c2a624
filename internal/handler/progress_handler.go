package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"studentms/internal/service"
)

type ProgressSource interface {
	GetFileProgress(importID string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
	RegisterProgressListener(ch chan *service.ProgressInfo)
	UnregisterProgressListener(ch chan *service.ProgressInfo)
}

type ProgressHandler struct {
	importService ProgressSource
}

func NewProgressHandler(importService ProgressSource) *ProgressHandler {
	return &ProgressHandler{importService: importService}
}

// GetFileProgress returns the progress of the import named by the id that
// POST /upload answered with.
func (h *ProgressHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	progress := h.importService.GetFileProgress(id)
	if progress == nil {
		http.Error(w, "Import not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *ProgressHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.importService.GetAllFileProgress())
}

// SSEProgress streams progress updates as Server-Sent Events until the
// client goes away.
func (h *ProgressHandler) SSEProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)

	progressChan := make(chan *service.ProgressInfo, 16)
	h.importService.RegisterProgressListener(progressChan)
	defer h.importService.UnregisterProgressListener(progressChan)

	for {
		select {
		case progress := <-progressChan:
			data, err := json.Marshal(progress)
			if err != nil {
				logrus.WithError(err).Warn("marshal progress")
				continue
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				logrus.WithError(err).Debug("write SSE data")
				return
			}
			if flusher != nil {
				flusher.Flush()
			}

		case <-r.Context().Done():
			logrus.Debug("progress client disconnected")
			return
		}
	}
}
