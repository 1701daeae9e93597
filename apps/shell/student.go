package shell

import (
	"context"

	"github.com/trezcool/rollbook/core/user"
)

func (sess *session) studentMenu(ctx context.Context) error {
	return sess.menu("Student Menu", "Log out", []option{
		{"1", "View course grades", func() error { return sess.viewGrades(ctx) }},
		{"2", "Update personal information", func() error { return sess.updateProfile(ctx) }},
	})
}

func (sess *session) viewGrades(ctx context.Context) error {
	lines, err := sess.svc.ViewGrades(ctx, sess.principal)
	if err != nil {
		return err
	}
	sess.printf("\nGrades of %s:\n", sess.principal.Username)
	if len(lines) == 0 {
		sess.println("You are not enrolled in any courses.")
		return nil
	}
	for _, l := range lines {
		sess.printf("- %s : %s -> grade: %s\n", l.CourseID, l.CourseName, formatGrade(l.Grade, "Not yet"))
	}
	return nil
}

func (sess *session) updateProfile(ctx context.Context) error {
	current, err := sess.svc.Profile(ctx, sess.principal)
	if err != nil {
		return err
	}
	sess.println("\nUpdate personal information (leave blank to keep unchanged):")
	var up user.UpdateProfile
	if up.Name, err = sess.prompt("Name [" + current.Info.Name + "]: "); err != nil {
		return err
	}
	if up.Email, err = sess.prompt("Email [" + current.Info.Email + "]: "); err != nil {
		return err
	}
	if _, err := sess.svc.UpdateProfile(ctx, sess.principal, up); err != nil {
		return err
	}
	sess.println("Updated successfully.")
	return nil
}
