package workflow

import (
	"context"
	"fmt"
	"net/mail"
	"text/template"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`Hello {{if .Info.Name}}{{.Info.Name}}{{else}}{{.Username}}{{end}},

An account has been created for you.

Username: {{.Username}}
Role: {{.Role}}
{{- if .StudentID}}
Student ID: {{.StudentID}}
{{- end}}
`))

// UserLine is one row of the user listing.
type UserLine struct {
	Username  string
	Role      user.Role
	Name      string
	StudentID string
}

// Accounts

// CreateAccount adds a user of any role; students get the next free id.
// A welcome message is sent when the account has an email address.
func (svc *Service) CreateAccount(ctx context.Context, p Principal, nu user.NewUser) (user.User, error) {
	actor, err := svc.authorize(p, ManageAccounts)
	if err != nil {
		return user.User{}, err
	}
	return svc.createAccount(ctx, actor, nu)
}

// AddStudent is CreateAccount with the role forced to student.
func (svc *Service) AddStudent(ctx context.Context, p Principal, nu user.NewUser) (user.User, error) {
	actor, err := svc.authorize(p, ManageStudents)
	if err != nil {
		return user.User{}, err
	}
	nu.Role = user.RoleStudent
	return svc.createAccount(ctx, actor, nu)
}

func (svc *Service) createAccount(ctx context.Context, actor user.User, nu user.NewUser) (user.User, error) {
	var created user.User
	err := svc.store.Update(ctx, func(s *records.State) error {
		if err := nu.Validate(s.Users); err != nil {
			return err
		}
		usr := nu.User(s.Users)
		s.PutUser(usr)
		created = *usr
		return nil
	})
	if err != nil {
		return user.User{}, err
	}

	svc.logger.Info("account created", map[string]interface{}{"username": created.Username, "role": created.Role.String()}, actor)
	svc.sendWelcome(created)
	return created, nil
}

func (svc *Service) sendWelcome(usr user.User) {
	addr, ok := usr.MailAddress()
	if !ok {
		return
	}
	svc.mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{addr},
		Subject:      "Your account",
		Template:     welcomeTmpl,
		TemplateData: usr,
	})
}

// ResetPassword sets a new password on any account.
func (svc *Service) ResetPassword(ctx context.Context, p Principal, username, pwd string) error {
	actor, err := svc.authorize(p, ManageAccounts)
	if err != nil {
		return err
	}
	username = core.CleanString(username)
	err = svc.store.Update(ctx, func(s *records.State) error {
		usr, err := s.GetUser(username)
		if err != nil {
			return err
		}
		usr.Password = pwd
		return nil
	})
	if err != nil {
		return err
	}
	svc.logger.Info("password reset", map[string]interface{}{"username": username}, actor)
	return nil
}

// ListUsers enumerates every account by username.
func (svc *Service) ListUsers(_ context.Context, p Principal) ([]UserLine, error) {
	if _, err := svc.authorize(p, ListUsers); err != nil {
		return nil, err
	}
	users := svc.store.State().ListUsers()
	lines := make([]UserLine, 0, len(users))
	for _, usr := range users {
		lines = append(lines, UserLine{Username: usr.Username, Role: usr.Role, Name: usr.Info.Name, StudentID: usr.StudentID})
	}
	return lines, nil
}

// Students

// GetStudent returns a copy of a student account.
func (svc *Service) GetStudent(_ context.Context, p Principal, username string) (user.User, error) {
	if _, err := svc.authorize(p, ManageStudents); err != nil {
		return user.User{}, err
	}
	usr, err := svc.store.State().GetUserWithRole(core.CleanString(username), user.RoleStudent)
	if err != nil {
		return user.User{}, err
	}
	return *usr, nil
}

// EditStudent overwrites the non-blank fields of `us`. A manual student id must stay unique.
func (svc *Service) EditStudent(ctx context.Context, p Principal, username string, us user.UpdateStudent) (user.User, error) {
	actor, err := svc.authorize(p, ManageStudents)
	if err != nil {
		return user.User{}, err
	}
	username = core.CleanString(username)

	var updated user.User
	err = svc.store.Update(ctx, func(s *records.State) error {
		usr, err := s.GetUserWithRole(username, user.RoleStudent)
		if err != nil {
			return err
		}
		if err := us.Validate(usr, s.Users); err != nil {
			return err
		}
		us.Apply(usr)
		updated = *usr
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	svc.logger.Info("student updated", map[string]interface{}{"username": username}, actor)
	return updated, nil
}

// DeleteStudent removes a student and every enrollment and grade of theirs.
func (svc *Service) DeleteStudent(ctx context.Context, p Principal, username string) error {
	actor, err := svc.authorize(p, ManageStudents)
	if err != nil {
		return err
	}
	username = core.CleanString(username)
	err = svc.store.Update(ctx, func(s *records.State) error {
		if _, err := s.GetUserWithRole(username, user.RoleStudent); err != nil {
			return err
		}
		return s.DeleteUser(username)
	})
	if err != nil {
		return err
	}
	svc.logger.Info("student deleted", map[string]interface{}{"username": username}, actor)
	return nil
}

// Courses

// ListCourses enumerates every course by code.
func (svc *Service) ListCourses(_ context.Context, p Principal) ([]CourseLine, error) {
	if _, err := svc.authorize(p, ManageCourses); err != nil {
		return nil, err
	}
	courses := svc.store.State().ListCourses()
	lines := make([]CourseLine, 0, len(courses))
	for _, c := range courses {
		lines = append(lines, courseLine(c))
	}
	return lines, nil
}

// GetCourse returns a copy of a course.
func (svc *Service) GetCourse(_ context.Context, p Principal, code string) (course.Course, error) {
	if _, err := svc.authorize(p, ManageCourses); err != nil {
		return course.Course{}, err
	}
	c, err := svc.store.State().GetCourse(core.CleanString(code))
	if err != nil {
		return course.Course{}, err
	}
	return *c.Clone(), nil
}

// CreateCourse adds a course. An instructor that is not an instructor-role user is
// dropped, which is reported in the returned warnings rather than as an error.
func (svc *Service) CreateCourse(ctx context.Context, p Principal, nc course.NewCourse) (course.Course, []string, error) {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return course.Course{}, nil, err
	}

	var (
		created  course.Course
		warnings []string
	)
	requested := core.CleanString(nc.Instructor)
	err = svc.store.Update(ctx, func(s *records.State) error {
		dropped, err := nc.Validate(s.Courses, s.Users)
		if err != nil {
			return err
		}
		if dropped {
			warnings = append(warnings, fmt.Sprintf("instructor %q is not valid, skipping assignment", requested))
		}
		c := nc.Course()
		s.PutCourse(c)
		created = *c.Clone()
		return nil
	})
	if err != nil {
		return course.Course{}, nil, err
	}
	svc.logger.Info("course created", map[string]interface{}{"code": created.Code}, actor)
	return created, warnings, nil
}

// EditCourse overwrites the non-blank fields of `uc`; an invalid instructor keeps the current one.
func (svc *Service) EditCourse(ctx context.Context, p Principal, code string, uc course.UpdateCourse) (course.Course, []string, error) {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return course.Course{}, nil, err
	}
	code = core.CleanString(code)

	var (
		updated  course.Course
		warnings []string
	)
	requested := core.CleanString(uc.Instructor)
	err = svc.store.Update(ctx, func(s *records.State) error {
		c, err := s.GetCourse(code)
		if err != nil {
			return err
		}
		if uc.Validate(s.Users) {
			warnings = append(warnings, fmt.Sprintf("instructor %q is not valid, keeping current", requested))
		}
		uc.Apply(c)
		updated = *c.Clone()
		return nil
	})
	if err != nil {
		return course.Course{}, nil, err
	}
	svc.logger.Info("course updated", map[string]interface{}{"code": code}, actor)
	return updated, warnings, nil
}

// DeleteCourse discards a course with its roster and grades.
func (svc *Service) DeleteCourse(ctx context.Context, p Principal, code string) error {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return err
	}
	code = core.CleanString(code)
	if err := svc.store.Update(ctx, func(s *records.State) error { return s.DeleteCourse(code) }); err != nil {
		return err
	}
	svc.logger.Info("course deleted", map[string]interface{}{"code": code}, actor)
	return nil
}

// AssignInstructor sets the instructor of a course; anyone but an instructor-role user is rejected.
func (svc *Service) AssignInstructor(ctx context.Context, p Principal, code, instructor string) error {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return err
	}
	code, instructor = core.CleanString(code), core.CleanString(instructor)
	err = svc.store.Update(ctx, func(s *records.State) error {
		c, err := s.GetCourse(code)
		if err != nil {
			return err
		}
		if !course.ValidInstructor(s.Users, instructor) {
			return invalid("instructor", course.ErrInvalidInstructor)
		}
		c.Instructor = instructor
		return nil
	})
	if err != nil {
		return err
	}
	svc.logger.Info("instructor assigned", map[string]interface{}{"code": code, "instructor": instructor}, actor)
	return nil
}

// EnrollStudent adds an existing student to a course they are not in yet.
func (svc *Service) EnrollStudent(ctx context.Context, p Principal, code, student string) error {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return err
	}
	code, student = core.CleanString(code), core.CleanString(student)
	err = svc.store.Update(ctx, func(s *records.State) error {
		c, err := s.GetCourse(code)
		if err != nil {
			return err
		}
		if !course.ValidStudent(s.Users, student) {
			return invalid("student", course.ErrInvalidStudent)
		}
		if err := c.Enroll(student); err != nil {
			return invalid("student", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	svc.logger.Info("student enrolled", map[string]interface{}{"code": code, "student": student}, actor)
	return nil
}

// RemoveStudent takes a student out of a course, dropping their grade in it.
func (svc *Service) RemoveStudent(ctx context.Context, p Principal, code, student string) error {
	actor, err := svc.authorize(p, ManageCourses)
	if err != nil {
		return err
	}
	code, student = core.CleanString(code), core.CleanString(student)
	err = svc.store.Update(ctx, func(s *records.State) error {
		c, err := s.GetCourse(code)
		if err != nil {
			return err
		}
		if err := c.Unenroll(student); err != nil {
			return invalid("student", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	svc.logger.Info("student removed", map[string]interface{}{"code": code, "student": student}, actor)
	return nil
}
