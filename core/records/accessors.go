package records

import (
	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/user"
)

func (s *State) GetUser(username string) (*user.User, error) {
	if usr, ok := s.Users[username]; ok {
		return usr, nil
	}
	return nil, core.NewNotFoundError(user.ErrNotFound, username, s.Usernames())
}

// GetUserWithRole is GetUser restricted to one role; other roles are reported as not found.
func (s *State) GetUserWithRole(username string, role user.Role) (*user.User, error) {
	usr, ok := s.Users[username]
	if ok && usr.Role == role {
		return usr, nil
	}
	candidates := make([]string, 0, len(s.Users))
	for _, uname := range s.Usernames() {
		if s.Users[uname].Role == role {
			candidates = append(candidates, uname)
		}
	}
	return nil, core.NewNotFoundError(user.ErrNotFound, username, candidates)
}

func (s *State) PutUser(usr *user.User) {
	s.Users[usr.Username] = usr
}

// DeleteUser removes the user and scrubs every course of references to it.
func (s *State) DeleteUser(username string) error {
	if _, err := s.GetUser(username); err != nil {
		return err
	}
	for _, c := range s.Courses {
		c.Scrub(username)
	}
	delete(s.Users, username)
	return nil
}

// ListUsers returns the users sorted by username.
func (s *State) ListUsers() []*user.User {
	users := make([]*user.User, 0, len(s.Users))
	for _, uname := range s.Usernames() {
		users = append(users, s.Users[uname])
	}
	return users
}

func (s *State) GetCourse(code string) (*course.Course, error) {
	if c, ok := s.Courses[code]; ok {
		return c, nil
	}
	return nil, core.NewNotFoundError(course.ErrNotFound, code, s.CourseCodes())
}

func (s *State) PutCourse(c *course.Course) {
	c.Normalize()
	s.Courses[c.Code] = c
}

// DeleteCourse discards the course with its roster and grades.
func (s *State) DeleteCourse(code string) error {
	if _, err := s.GetCourse(code); err != nil {
		return err
	}
	delete(s.Courses, code)
	return nil
}

// ListCourses returns the courses sorted by code.
func (s *State) ListCourses() []*course.Course {
	courses := make([]*course.Course, 0, len(s.Courses))
	for _, code := range s.CourseCodes() {
		courses = append(courses, s.Courses[code])
	}
	return courses
}
