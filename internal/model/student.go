package model

// Courses is the fixed set a student can be enrolled in, in display order.
var Courses = []string{"Biology", "Math", "Astronomy", "Physics"}

type Student struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"` // ID is assigned by the store
	Name   string `gorm:"column:name" json:"name"`
	Course string `gorm:"column:course" json:"course"`
	Mobile string `gorm:"column:mobile" json:"mobile"`
}

func (Student) TableName() string {
	return "students"
}

// CourseIndex returns the position of course in Courses, or -1.
func CourseIndex(course string) int {
	for i, c := range Courses {
		if c == course {
			return i
		}
	}
	return -1
}

func ValidCourse(course string) bool {
	return CourseIndex(course) >= 0
}
