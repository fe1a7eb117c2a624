package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"studentms/internal/model"
)

// Connector runs fn on a connection that lives only for the call.
type Connector interface {
	With(ctx context.Context, fn func(db *gorm.DB) error) error
}

type StudentService struct {
	conn Connector
}

func NewStudentService(conn Connector) *StudentService {
	return &StudentService{conn: conn}
}

func (s *StudentService) ListStudents(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		return db.Order("id").Find(&students).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	logrus.WithField("rows", len(students)).Debug("listed students")
	return students, nil
}

// SearchByName returns the students whose name equals name exactly.
func (s *StudentService) SearchByName(ctx context.Context, name string) ([]model.Student, error) {
	var students []model.Student
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).Order("id").Find(&students).Error
	})
	if err != nil {
		return nil, fmt.Errorf("search students by name: %w", err)
	}
	logrus.WithFields(logrus.Fields{"name": name, "rows": len(students)}).Debug("searched students")
	return students, nil
}

func (s *StudentService) AddStudent(ctx context.Context, name, course, mobile string) (model.Student, error) {
	student := model.Student{Name: name, Course: course, Mobile: mobile}
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		return db.Create(&student).Error
	})
	if err != nil {
		return model.Student{}, fmt.Errorf("add student: %w", err)
	}
	logrus.WithFields(logrus.Fields{"id": student.ID, "name": name, "course": course}).Debug("added student")
	return student, nil
}

// UpdateStudent overwrites name, course and mobile of the row with id. A
// missing id affects zero rows and is not an error.
func (s *StudentService) UpdateStudent(ctx context.Context, id uint, name, course, mobile string) (int64, error) {
	var affected int64
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		res := db.Model(&model.Student{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":   name,
			"course": course,
			"mobile": mobile,
		})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("update student %d: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{"id": id, "affected": affected}).Debug("updated student")
	return affected, nil
}

func (s *StudentService) DeleteStudent(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		res := db.Where("id = ?", id).Delete(&model.Student{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete student %d: %w", id, err)
	}
	logrus.WithFields(logrus.Fields{"id": id, "affected": affected}).Debug("deleted student")
	return affected, nil
}

// CreateInBatches inserts students in chunks of size on a single connection.
func (s *StudentService) CreateInBatches(ctx context.Context, students []model.Student, size int) error {
	if len(students) == 0 {
		return nil
	}
	err := s.conn.With(ctx, func(db *gorm.DB) error {
		return db.CreateInBatches(students, size).Error
	})
	if err != nil {
		return fmt.Errorf("insert %d students: %w", len(students), err)
	}
	return nil
}
