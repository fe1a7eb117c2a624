package seed

import (
	"github.com/Pallinder/go-randomdata"

	"studentms/internal/model"
)

func GenerateStudent() model.Student {
	return model.Student{
		Name:   randomdata.FullName(randomdata.RandomGender),
		Course: model.Courses[randomdata.Number(0, len(model.Courses))],
		Mobile: "07" + randomdata.StringNumber(4, ""),
	}
}

func GenerateStudentList(n int) []model.Student {
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		students = append(students, GenerateStudent())
	}
	return students
}
