package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"studentms/internal/model"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

type ProgressInfo struct {
	ImportID     string
	FileName     string
	TotalRecords int
	Processed    int
	Skipped      int
	Status       string
	Error        string
	StartTime    time.Time
	EndTime      time.Time
}

// BatchWriter persists a chunk of students.
type BatchWriter interface {
	CreateInBatches(ctx context.Context, students []model.Student, size int) error
}

// ImportService loads students from CSV or XLSX files. Each file must start
// with a header row followed by name, course, mobile columns.
type ImportService struct {
	store             BatchWriter
	fileProgressMap   map[string]*ProgressInfo
	fileProgressLock  sync.RWMutex
	progressListeners map[chan *ProgressInfo]bool
	listenerLock      sync.RWMutex

	workerSemaphore chan struct{}
	batchSize       int
}

func NewImportService(store BatchWriter) *ImportService {
	return &ImportService{
		store:             store,
		fileProgressMap:   make(map[string]*ProgressInfo),
		progressListeners: make(map[chan *ProgressInfo]bool),
		workerSemaphore:   make(chan struct{}, runtime.NumCPU()*2),
		batchSize:         500,
	}
}

func (s *ImportService) RegisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	s.progressListeners[ch] = true
}

func (s *ImportService) UnregisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	delete(s.progressListeners, ch)
}

// BroadcastProgress sends a copy of progress to every listener that is ready
// to receive it. Busy listeners miss the update.
func (s *ImportService) BroadcastProgress(progress *ProgressInfo) {
	s.listenerLock.RLock()
	defer s.listenerLock.RUnlock()

	for listener := range s.progressListeners {
		snapshot := *progress
		select {
		case listener <- &snapshot:
		default:
		}
	}
}

// GetFileProgress returns a copy of the progress of one import.
func (s *ImportService) GetFileProgress(importID string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[importID]; exists {
		copyProgress := *progress
		return &copyProgress
	}
	return nil
}

func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		copyProgress := *progress
		result = append(result, &copyProgress)
	}
	return result
}

func (s *ImportService) updateProgress(importID string, processed, skipped int) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[importID]; exists {
		progress.Processed += processed
		progress.Skipped += skipped
		if progress.Processed > progress.TotalRecords {
			progress.Processed = progress.TotalRecords
		}
		s.BroadcastProgress(progress)
	}
}

func (s *ImportService) updateProgressError(importID string, errorMsg string) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[importID]; exists {
		progress.Status = StatusError
		progress.Error = errorMsg
		progress.EndTime = time.Now()
		s.BroadcastProgress(progress)
	}
}

// ProcessFile imports filePath and tracks progress under importID. fileName
// is the name the file was uploaded with and is only reported back. Rows
// with a course outside model.Courses are skipped.
func (s *ImportService) ProcessFile(ctx context.Context, importID, filePath, fileName string) error {
	startTime := time.Now()

	s.fileProgressLock.Lock()
	if p, exists := s.fileProgressMap[importID]; exists && p.Status == StatusProcessing {
		s.fileProgressLock.Unlock()
		return fmt.Errorf("import %s is already running", importID)
	}
	s.fileProgressMap[importID] = &ProgressInfo{
		ImportID:  importID,
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: startTime,
	}
	s.fileProgressLock.Unlock()

	log := logrus.WithFields(logrus.Fields{"import": importID, "file": fileName})

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		s.updateProgressError(importID, "Failed to get file info: "+err.Error())
		return err
	}

	records, err := readRecords(filePath)
	if err != nil {
		s.updateProgressError(importID, "Failed to read records: "+err.Error())
		return err
	}

	s.fileProgressLock.Lock()
	s.fileProgressMap[importID].TotalRecords = len(records)
	s.fileProgressLock.Unlock()

	numWorkers := calculateWorkers(fileInfo.Size())
	log.WithFields(logrus.Fields{
		"workers": numWorkers,
		"records": len(records),
	}).Info("import started")

	recordCh := make(chan []string, numWorkers*100)
	errCh := make(chan error, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go s.worker(ctx, importID, recordCh, errCh, &wg)
	}

	go func() {
		defer close(recordCh)
		for _, record := range records {
			select {
			case recordCh <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(errCh)

	var errs []error
	for e := range errCh {
		errs = append(errs, e)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.updateProgressError(importID, err.Error())
		log.WithError(err).Error("import failed")
		return err
	}

	s.fileProgressLock.Lock()
	if progress, exists := s.fileProgressMap[importID]; exists {
		progress.Status = StatusCompleted
		progress.EndTime = time.Now()
		progress.Processed = progress.TotalRecords - progress.Skipped
		s.BroadcastProgress(progress)
	}
	s.fileProgressLock.Unlock()

	log.WithField("elapsed", time.Since(startTime)).Info("import completed")
	return nil
}

// worker saves records in batches. Processed only counts rows the store
// accepted; after the first failed batch the worker drains recordCh and
// only counts skipped rows.
func (s *ImportService) worker(ctx context.Context, importID string, recordCh <-chan []string, errCh chan<- error, wg *sync.WaitGroup) {
	s.workerSemaphore <- struct{}{}
	defer func() {
		<-s.workerSemaphore
		wg.Done()
	}()

	var students []model.Student
	skipped := 0
	failed := false

	flush := func() {
		saved := 0
		if len(students) > 0 && !failed {
			if err := s.store.CreateInBatches(ctx, students, s.batchSize); err != nil {
				errCh <- err
				failed = true
			} else {
				saved = len(students)
			}
		}
		if saved > 0 || skipped > 0 {
			s.updateProgress(importID, saved, skipped)
		}
		students, skipped = nil, 0
	}

	for record := range recordCh {
		student, ok := parseRecord(record)
		if !ok {
			logrus.WithFields(logrus.Fields{"import": importID, "record": record}).Warn("skipping row with unknown course")
			skipped++
			continue
		}
		students = append(students, student)

		if len(students) >= s.batchSize {
			flush()
		}
	}
	flush()
}

func parseRecord(record []string) (model.Student, bool) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	student := model.Student{Name: field(0), Course: field(1), Mobile: field(2)}
	return student, model.ValidCourse(student.Course)
}

// readRecords returns every data row of a CSV or XLSX file, header excluded.
func readRecords(filePath string) ([][]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		rows, err = readCSV(filePath)
	case ".xlsx":
		rows, err = readXLSX(filePath)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filePath))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func readCSV(filePath string) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// calculateWorkers picks the worker count from the file size.
func calculateWorkers(fileSize int64) int {
	cpus := runtime.NumCPU()

	switch {
	case fileSize < 1_000_000:
		return min(2, cpus)
	case fileSize < 10_000_000:
		return min(4, cpus)
	case fileSize < 100_000_000:
		return min(8, cpus)
	default:
		return cpus
	}
}
