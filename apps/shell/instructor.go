package shell

import (
	"context"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/workflow"
)

func (sess *session) instructorMenu(ctx context.Context) error {
	return sess.menu("Instructor Menu", "Log out", []option{
		{"1", "View assigned courses", func() error { return sess.viewAssignedCourses(ctx) }},
		{"2", "Edit grades for students", func() error { return sess.enterGrades(ctx) }},
	})
}

func (sess *session) viewAssignedCourses(ctx context.Context) error {
	lines, err := sess.svc.AssignedCourses(ctx, sess.principal)
	if err != nil {
		return err
	}
	sess.printf("\nCourses assigned to %s:\n", sess.principal.Username)
	if len(lines) == 0 {
		sess.println("You are not assigned to any courses.")
		return nil
	}
	for _, l := range lines {
		sess.printf("- %s: %s (students: %d)\n", l.Code, l.Name, l.Students)
	}
	return nil
}

func (sess *session) enterGrades(ctx context.Context) error {
	courses, err := sess.svc.AssignedCourses(ctx, sess.principal)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		sess.println("You have no courses to grade.")
		return nil
	}
	sess.println("Choose a course to enter grades:")
	for _, l := range courses {
		sess.printf("- %s: %s\n", l.Code, l.Name)
	}
	code, err := sess.prompt("Course ID: ")
	if err != nil {
		return err
	}
	roster, err := sess.svc.CourseRoster(ctx, sess.principal, code)
	if err != nil {
		if core.IsNotFound(err) || err == workflow.ErrNotYourCourse {
			sess.println("Invalid course ID.")
			return nil
		}
		return err
	}
	if len(roster) == 0 {
		sess.println("No students enrolled in this course.")
		return nil
	}

	sess.printf("Students in %s:\n", code)
	enrolled := make(map[string]bool, len(roster))
	for i, l := range roster {
		name := l.Name
		if name == "" {
			name = "-"
		}
		sess.printf("%d. %s (%s) -> Current grade: %s\n", i+1, l.Username, name, formatGrade(l.Grade, "None"))
		enrolled[l.Username] = true
	}

	for {
		target, err := sess.prompt("Enter student username to grade (or 'q' to quit): ")
		if err != nil {
			return err
		}
		if target == "q" || target == "Q" {
			return nil
		}
		if !enrolled[target] {
			sess.println("Student not in this class.")
			continue
		}
		if err := sess.gradeStudent(ctx, code, target); err != nil {
			return err
		}
	}
}

// gradeStudent prompts until a valid grade is entered.
func (sess *session) gradeStudent(ctx context.Context, code, student string) error {
	for {
		raw, err := sess.prompt("Enter grade (0-10, e.g. 7.5): ")
		if err != nil {
			return err
		}
		_, err = sess.svc.EnterGrade(ctx, sess.principal, code, student, raw)
		if err == nil {
			sess.println("Grade saved.")
			return nil
		}
		if !core.IsValidation(err) {
			return sess.report(err)
		}
		_ = sess.report(err)
	}
}
