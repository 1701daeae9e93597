package workflow

import (
	"context"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
)

// CourseLine summarizes a course.
type CourseLine struct {
	Code       string
	Name       string
	Instructor string
	Students   int
}

func courseLine(c *course.Course) CourseLine {
	return CourseLine{Code: c.Code, Name: c.Name, Instructor: c.Instructor, Students: len(c.Students)}
}

// RosterLine is an enrolled student of a course, with their current grade if any.
type RosterLine struct {
	Username string
	Name     string
	Grade    *float64
}

// AssignedCourses lists the courses the principal teaches, by code.
func (svc *Service) AssignedCourses(_ context.Context, p Principal) ([]CourseLine, error) {
	if _, err := svc.authorize(p, ViewAssignedCourses); err != nil {
		return nil, err
	}
	lines := make([]CourseLine, 0)
	for _, c := range svc.store.State().ListCourses() {
		if c.TaughtBy(p.Username) {
			lines = append(lines, courseLine(c))
		}
	}
	return lines, nil
}

func (svc *Service) taughtCourse(s *records.State, p Principal, code string) (*course.Course, error) {
	c, err := s.GetCourse(core.CleanString(code))
	if err != nil {
		return nil, err
	}
	if !c.TaughtBy(p.Username) {
		return nil, ErrNotYourCourse
	}
	return c, nil
}

// CourseRoster lists the students of a course the principal teaches, in enrollment order.
func (svc *Service) CourseRoster(_ context.Context, p Principal, code string) ([]RosterLine, error) {
	if _, err := svc.authorize(p, EnterGrades); err != nil {
		return nil, err
	}
	state := svc.store.State()
	c, err := svc.taughtCourse(state, p, code)
	if err != nil {
		return nil, err
	}
	lines := make([]RosterLine, 0, len(c.Students))
	for _, uname := range c.Students {
		line := RosterLine{Username: uname}
		if usr, ok := state.Users[uname]; ok {
			line.Name = usr.Info.Name
		}
		if g, ok := c.Grade(uname); ok {
			line.Grade = &g
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// EnterGrade grades an enrolled student of a course the principal teaches, overwriting any prior grade.
// `raw` must be a number in [0, 10].
func (svc *Service) EnterGrade(ctx context.Context, p Principal, code, student, raw string) (float64, error) {
	actor, err := svc.authorize(p, EnterGrades)
	if err != nil {
		return 0, err
	}
	code, student = core.CleanString(code), core.CleanString(student)

	var grade float64
	err = svc.store.Update(ctx, func(s *records.State) error {
		c, err := svc.taughtCourse(s, p, code)
		if err != nil {
			return err
		}
		if !c.IsEnrolled(student) {
			return course.ErrNotEnrolled
		}
		if grade, err = core.ParseGrade(raw); err != nil {
			return err
		}
		return c.SetGrade(student, grade)
	})
	if err != nil {
		return 0, err
	}
	svc.logger.Info("grade entered", map[string]interface{}{"course": code, "student": student, "grade": grade}, actor)
	return grade, nil
}
