package shell

import (
	"context"

	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/user"
)

func (sess *session) adminMenu(ctx context.Context) error {
	return sess.menu("Admin Menu", "Log out", []option{
		{"1", "Create new account", func() error { return sess.createAccount(ctx) }},
		{"2", "Manage students (add/edit/delete)", func() error { return sess.manageStudents(ctx) }},
		{"3", "Manage courses (create/edit/delete/assign instructor/add/remove student)", func() error { return sess.manageCourses(ctx) }},
		{"4", "List all users", func() error { return sess.listUsers(ctx) }},
	})
}

// readNewUser prompts for the account fields; the role is asked for only when `role` is empty.
func (sess *session) readNewUser(role user.Role) (user.NewUser, error) {
	var (
		nu  user.NewUser
		err error
	)
	if nu.Username, err = sess.prompt("Username: "); err != nil {
		return nu, err
	}
	if role == "" {
		raw, err := sess.prompt("Role (student/instructor/admin): ")
		if err != nil {
			return nu, err
		}
		role = user.Role(raw)
	}
	nu.Role = role
	if nu.Password, err = sess.prompt("Password: "); err != nil {
		return nu, err
	}
	if nu.Name, err = sess.prompt("Name: "); err != nil {
		return nu, err
	}
	if nu.Email, err = sess.prompt("Email: "); err != nil {
		return nu, err
	}
	return nu, nil
}

func (sess *session) createAccount(ctx context.Context) error {
	sess.println("\nCreate new account")
	nu, err := sess.readNewUser("")
	if err != nil {
		return err
	}
	usr, err := sess.svc.CreateAccount(ctx, sess.principal, nu)
	if err != nil {
		return err
	}
	if usr.StudentID != "" {
		sess.printf("Account created successfully (student id %s).\n", usr.StudentID)
		return nil
	}
	sess.println("Account created successfully.")
	return nil
}

func (sess *session) listUsers(ctx context.Context) error {
	lines, err := sess.svc.ListUsers(ctx, sess.principal)
	if err != nil {
		return err
	}
	sess.println("\nUsers list:")
	for _, l := range lines {
		if l.StudentID != "" {
			sess.printf("- %s (%s) - %s [%s]\n", l.Username, l.Role, l.Name, l.StudentID)
		} else {
			sess.printf("- %s (%s) - %s\n", l.Username, l.Role, l.Name)
		}
	}
	return nil
}

// Students

func (sess *session) manageStudents(ctx context.Context) error {
	return sess.menu("Manage Students", "Back", []option{
		{"1", "Add student", func() error { return sess.addStudent(ctx) }},
		{"2", "Edit student", func() error { return sess.editStudent(ctx) }},
		{"3", "Delete student", func() error { return sess.deleteStudent(ctx) }},
	})
}

func (sess *session) addStudent(ctx context.Context) error {
	sess.println("\nCreate student account")
	nu, err := sess.readNewUser(user.RoleStudent)
	if err != nil {
		return err
	}
	usr, err := sess.svc.AddStudent(ctx, sess.principal, nu)
	if err != nil {
		return err
	}
	sess.printf("Created successfully (student id %s).\n", usr.StudentID)
	return nil
}

func (sess *session) editStudent(ctx context.Context) error {
	uname, err := sess.prompt("Student username to edit: ")
	if err != nil {
		return err
	}
	usr, err := sess.svc.GetStudent(ctx, sess.principal, uname)
	if err != nil {
		return err
	}

	sess.println("Leave blank to keep unchanged.")
	var us user.UpdateStudent
	if us.Name, err = sess.prompt("Name [" + usr.Info.Name + "]: "); err != nil {
		return err
	}
	if us.Email, err = sess.prompt("Email [" + usr.Info.Email + "]: "); err != nil {
		return err
	}
	if us.Password, err = sess.prompt("New password (leave blank to keep): "); err != nil {
		return err
	}
	if us.StudentID, err = sess.prompt("Student ID [" + usr.StudentID + "]: "); err != nil {
		return err
	}
	if _, err := sess.svc.EditStudent(ctx, sess.principal, usr.Username, us); err != nil {
		return err
	}
	sess.println("Student updated successfully.")
	return nil
}

func (sess *session) deleteStudent(ctx context.Context) error {
	uname, err := sess.prompt("Student username to delete: ")
	if err != nil {
		return err
	}
	if err := sess.svc.DeleteStudent(ctx, sess.principal, uname); err != nil {
		return err
	}
	sess.println("Student deleted successfully.")
	return nil
}

// Courses

func (sess *session) manageCourses(ctx context.Context) error {
	return sess.menu("Manage Courses", "Back", []option{
		{"1", "Create course", func() error { return sess.createCourse(ctx) }},
		{"2", "Edit course", func() error { return sess.editCourse(ctx) }},
		{"3", "Delete course", func() error { return sess.deleteCourse(ctx) }},
		{"4", "Assign instructor to course", func() error { return sess.assignInstructor(ctx) }},
		{"5", "Add student to course", func() error { return sess.enrollStudent(ctx) }},
		{"6", "Remove student from course", func() error { return sess.removeStudent(ctx) }},
	})
}

func (sess *session) warn(warnings []string) {
	for _, w := range warnings {
		sess.println(sentence(w))
	}
}

func (sess *session) createCourse(ctx context.Context) error {
	var (
		nc  course.NewCourse
		err error
	)
	if nc.Code, err = sess.prompt("Course ID (e.g. IT101): "); err != nil {
		return err
	}
	if nc.Name, err = sess.prompt("Course name: "); err != nil {
		return err
	}
	if nc.Instructor, err = sess.prompt("Instructor username (leave blank if none): "); err != nil {
		return err
	}
	_, warnings, err := sess.svc.CreateCourse(ctx, sess.principal, nc)
	if err != nil {
		return err
	}
	sess.warn(warnings)
	sess.println("Course created successfully.")
	return nil
}

func (sess *session) editCourse(ctx context.Context) error {
	code, err := sess.prompt("Course ID to edit: ")
	if err != nil {
		return err
	}
	c, err := sess.svc.GetCourse(ctx, sess.principal, code)
	if err != nil {
		return err
	}
	var uc course.UpdateCourse
	if uc.Name, err = sess.prompt("Name [" + c.Name + "]: "); err != nil {
		return err
	}
	if uc.Instructor, err = sess.prompt("Instructor [" + c.Instructor + "]: "); err != nil {
		return err
	}
	_, warnings, err := sess.svc.EditCourse(ctx, sess.principal, c.Code, uc)
	if err != nil {
		return err
	}
	sess.warn(warnings)
	sess.println("Course updated successfully.")
	return nil
}

func (sess *session) deleteCourse(ctx context.Context) error {
	code, err := sess.prompt("Course ID to delete: ")
	if err != nil {
		return err
	}
	if err := sess.svc.DeleteCourse(ctx, sess.principal, code); err != nil {
		return err
	}
	sess.println("Course deleted successfully.")
	return nil
}

// promptCourse asks for a course id and checks it exists before asking anything else.
func (sess *session) promptCourse(ctx context.Context) (course.Course, error) {
	code, err := sess.prompt("Course ID: ")
	if err != nil {
		return course.Course{}, err
	}
	return sess.svc.GetCourse(ctx, sess.principal, code)
}

func (sess *session) assignInstructor(ctx context.Context) error {
	c, err := sess.promptCourse(ctx)
	if err != nil {
		return err
	}
	instr, err := sess.prompt("Instructor username: ")
	if err != nil {
		return err
	}
	if err := sess.svc.AssignInstructor(ctx, sess.principal, c.Code, instr); err != nil {
		return err
	}
	sess.println("Instructor assigned successfully.")
	return nil
}

func (sess *session) enrollStudent(ctx context.Context) error {
	c, err := sess.promptCourse(ctx)
	if err != nil {
		return err
	}
	uname, err := sess.prompt("Student username to add: ")
	if err != nil {
		return err
	}
	if err := sess.svc.EnrollStudent(ctx, sess.principal, c.Code, uname); err != nil {
		return err
	}
	sess.println("Student added successfully.")
	return nil
}

func (sess *session) removeStudent(ctx context.Context) error {
	c, err := sess.promptCourse(ctx)
	if err != nil {
		return err
	}
	uname, err := sess.prompt("Student username to remove: ")
	if err != nil {
		return err
	}
	if err := sess.svc.RemoveStudent(ctx, sess.principal, c.Code, uname); err != nil {
		return err
	}
	sess.println("Student removed successfully.")
	return nil
}
