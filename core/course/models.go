package course

import (
	"errors"
	"sort"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("course not found")
	ErrCodeExists        = errors.New("a course with this code already exists")
	ErrInvalidInstructor = errors.New("invalid instructor")
	ErrInvalidStudent    = errors.New("invalid student")
	ErrAlreadyEnrolled   = errors.New("student already in class")
	ErrNotEnrolled       = errors.New("student not in this course")
)

type Course struct {
	Code       string             `json:"-"` // key of the courses mapping
	Name       string             `json:"name"`
	Instructor string             `json:"instructor"`
	Students   []string           `json:"students"`
	Grades     map[string]float64 `json:"grades"`
}

func New(code, name, instructor string) *Course {
	return &Course{
		Code:       code,
		Name:       name,
		Instructor: instructor,
		Students:   []string{},
		Grades:     make(map[string]float64),
	}
}

func (c *Course) IsEnrolled(username string) bool {
	return c.indexOf(username) >= 0
}

func (c *Course) indexOf(username string) int {
	for i, s := range c.Students {
		if s == username {
			return i
		}
	}
	return -1
}

func (c *Course) TaughtBy(username string) bool {
	return username != "" && c.Instructor == username
}

// Grade returns the grade of an enrolled student, ok is false if not yet graded.
func (c *Course) Grade(username string) (float64, bool) {
	g, ok := c.Grades[username]
	return g, ok
}

func (c *Course) Enroll(username string) error {
	if c.IsEnrolled(username) {
		return ErrAlreadyEnrolled
	}
	c.Students = append(c.Students, username)
	return nil
}

// Unenroll removes the student and drops their grade.
func (c *Course) Unenroll(username string) error {
	idx := c.indexOf(username)
	if idx < 0 {
		return ErrNotEnrolled
	}
	c.Students = append(c.Students[:idx:idx], c.Students[idx+1:]...)
	delete(c.Grades, username)
	return nil
}

// SetGrade overwrites any previous grade of an enrolled student.
func (c *Course) SetGrade(username string, grade float64) error {
	if !c.IsEnrolled(username) {
		return ErrNotEnrolled
	}
	if err := core.ValidateVar("grade", grade, "grade"); err != nil {
		return err
	}
	if c.Grades == nil {
		c.Grades = make(map[string]float64)
	}
	c.Grades[username] = grade
	return nil
}

// Scrub removes every reference to `username`: enrollment, grade and instructor.
// It reports whether the course changed.
func (c *Course) Scrub(username string) bool {
	changed := c.Unenroll(username) == nil
	if _, ok := c.Grades[username]; ok {
		delete(c.Grades, username)
		changed = true
	}
	if c.Instructor == username {
		c.Instructor = ""
		changed = true
	}
	return changed
}

// Clone returns a deep copy.
func (c *Course) Clone() *Course {
	cp := *c
	cp.Students = append(make([]string, 0, len(c.Students)), c.Students...)
	cp.Grades = make(map[string]float64, len(c.Grades))
	for k, v := range c.Grades {
		cp.Grades[k] = v
	}
	return &cp
}

// Normalize repairs nil collections after decoding.
func (c *Course) Normalize() {
	if c.Students == nil {
		c.Students = []string{}
	}
	if c.Grades == nil {
		c.Grades = make(map[string]float64)
	}
}

// SortedStudents returns the enrolled usernames in lexical order.
func (c *Course) SortedStudents() []string {
	s := append(make([]string, 0, len(c.Students)), c.Students...)
	sort.Strings(s)
	return s
}

// ValidInstructor reports whether `username` names an instructor in `users`.
func ValidInstructor(users map[string]*user.User, username string) bool {
	usr, ok := users[username]
	return ok && usr.IsInstructor()
}

// ValidStudent reports whether `username` names a student in `users`.
func ValidStudent(users map[string]*user.User, username string) bool {
	usr, ok := users[username]
	return ok && usr.IsStudent()
}

// NewCourse contains information needed to create a Course.
type NewCourse struct {
	Code       string `json:"code" validate:"notblank"`
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
}

// Validate checks the code; an unknown instructor is not an error: it is
// dropped and reported through `dropped`.
func (nc *NewCourse) Validate(courses map[string]*Course, users map[string]*user.User) (dropped bool, err error) {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Instructor = core.CleanString(nc.Instructor)

	if err := core.ValidateStruct(nc); err != nil {
		return false, err
	}
	if _, exists := courses[nc.Code]; exists {
		return false, core.NewValidationError(ErrCodeExists, core.FieldError{Field: "code", Error: ErrCodeExists.Error()})
	}
	if nc.Instructor != "" && !ValidInstructor(users, nc.Instructor) {
		nc.Instructor = ""
		return true, nil
	}
	return false, nil
}

func (nc NewCourse) Course() *Course {
	return New(nc.Code, nc.Name, nc.Instructor)
}

// UpdateCourse defines what may be modified on a Course. Blank fields are left unchanged.
type UpdateCourse struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
}

// Validate drops an instructor that is not an instructor-role user, keeping the current one.
func (uc *UpdateCourse) Validate(users map[string]*user.User) (dropped bool) {
	uc.Name = core.CleanString(uc.Name)
	uc.Instructor = core.CleanString(uc.Instructor)
	if uc.Instructor != "" && !ValidInstructor(users, uc.Instructor) {
		uc.Instructor = ""
		return true
	}
	return false
}

func (uc UpdateCourse) Apply(c *Course) {
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Instructor != "" {
		c.Instructor = uc.Instructor
	}
}
