package database

import (
	"sort"

	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
)

// Relational layout of a records.State, shared by the SQL backends.
type (
	UserRow struct {
		Username  string `db:"username"`
		Role      string `db:"role"`
		Password  string `db:"password"`
		Name      string `db:"name"`
		Email     string `db:"email"`
		StudentID string `db:"student_id"`
	}

	CourseRow struct {
		Code       string `db:"code"`
		Name       string `db:"name"`
		Instructor string `db:"instructor"`
	}

	EnrollmentRow struct {
		CourseCode string `db:"course_code"`
		Username   string `db:"username"`
		Position   int    `db:"position"` // keeps the roster order of the document
	}

	GradeRow struct {
		CourseCode string  `db:"course_code"`
		Username   string  `db:"username"`
		Grade      float64 `db:"grade"`
	}

	Rows struct {
		Users       []UserRow
		Courses     []CourseRow
		Enrollments []EnrollmentRow
		Grades      []GradeRow
	}
)

// Flatten turns a state into rows, in key order.
func Flatten(state *records.State) Rows {
	var rows Rows
	for _, usr := range state.ListUsers() {
		rows.Users = append(rows.Users, UserRow{
			Username:  usr.Username,
			Role:      string(usr.Role),
			Password:  usr.Password,
			Name:      usr.Info.Name,
			Email:     usr.Info.Email,
			StudentID: usr.StudentID,
		})
	}
	for _, c := range state.ListCourses() {
		rows.Courses = append(rows.Courses, CourseRow{Code: c.Code, Name: c.Name, Instructor: c.Instructor})
		for i, uname := range c.Students {
			rows.Enrollments = append(rows.Enrollments, EnrollmentRow{CourseCode: c.Code, Username: uname, Position: i})
		}
		unames := make([]string, 0, len(c.Grades))
		for uname := range c.Grades {
			unames = append(unames, uname)
		}
		sort.Strings(unames)
		for _, uname := range unames {
			rows.Grades = append(rows.Grades, GradeRow{CourseCode: c.Code, Username: uname, Grade: c.Grades[uname]})
		}
	}
	return rows
}

// Assemble rebuilds a state from rows; rows referencing unknown courses are ignored.
func Assemble(rows Rows) *records.State {
	state := records.NewState()
	for _, r := range rows.Users {
		state.PutUser(&user.User{
			Username:  r.Username,
			Role:      user.Role(r.Role),
			Password:  r.Password,
			Info:      user.Info{Name: r.Name, Email: r.Email},
			StudentID: r.StudentID,
		})
	}
	for _, r := range rows.Courses {
		state.PutCourse(course.New(r.Code, r.Name, r.Instructor))
	}

	sort.SliceStable(rows.Enrollments, func(i, j int) bool { return rows.Enrollments[i].Position < rows.Enrollments[j].Position })
	for _, r := range rows.Enrollments {
		if c, ok := state.Courses[r.CourseCode]; ok {
			_ = c.Enroll(r.Username)
		}
	}
	for _, r := range rows.Grades {
		if c, ok := state.Courses[r.CourseCode]; ok {
			c.Grades[r.Username] = r.Grade
		}
	}
	return state
}
