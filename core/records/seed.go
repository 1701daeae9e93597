package records

import (
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/user"
)

// Seed creates the default records when no user exists yet and returns the keys it added:
// an admin, plus a demo instructor, student and course when there are no courses either.
// Nothing happens once any user exists, so seeding never overwrites.
func Seed(s *State) []string {
	if len(s.Users) > 0 {
		return nil
	}

	s.PutUser(&user.User{
		Username: "admin",
		Role:     user.RoleAdmin,
		Password: "admin123",
		Info:     user.Info{Name: "Administrator", Email: "admin@example.com"},
	})
	added := []string{"admin"}
	if len(s.Courses) > 0 {
		return added
	}

	s.PutUser(&user.User{
		Username: "lecturer1",
		Role:     user.RoleInstructor,
		Password: "teach123",
		Info:     user.Info{Name: "Miss Tien", Email: "lecturer1@example.com"},
	})
	s.PutUser(&user.User{
		Username:  "student1",
		Role:      user.RoleStudent,
		Password:  "study123",
		Info:      user.Info{Name: "Nguyen Van A", Email: "student1@example.com"},
		StudentID: user.NextStudentID(s.Users),
	})

	c := course.New("IT101", "Software Engineering", "lecturer1")
	c.Students = append(c.Students, "student1")
	c.Grades["student1"] = 8.5
	s.PutCourse(c)

	return append(added, "lecturer1", "student1", c.Code)
}
