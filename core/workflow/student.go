package workflow

import (
	"context"

	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
)

// GradeLine is one course a student is enrolled in. Grade is nil until graded.
type GradeLine struct {
	CourseID   string
	CourseName string
	Grade      *float64
}

// ViewGrades lists the principal's enrollments by course code. An empty slice means enrolled nowhere.
func (svc *Service) ViewGrades(_ context.Context, p Principal) ([]GradeLine, error) {
	if _, err := svc.authorize(p, ViewOwnGrades); err != nil {
		return nil, err
	}
	lines := make([]GradeLine, 0)
	for _, c := range svc.store.State().ListCourses() {
		if !c.IsEnrolled(p.Username) {
			continue
		}
		line := GradeLine{CourseID: c.Code, CourseName: c.Name}
		if g, ok := c.Grade(p.Username); ok {
			line.Grade = &g
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Profile returns the principal's own account.
func (svc *Service) Profile(_ context.Context, p Principal) (user.User, error) {
	return svc.authorize(p, UpdateOwnProfile)
}

// UpdateProfile changes the principal's name and email; blank values keep the current ones.
func (svc *Service) UpdateProfile(ctx context.Context, p Principal, up user.UpdateProfile) (user.User, error) {
	actor, err := svc.authorize(p, UpdateOwnProfile)
	if err != nil {
		return user.User{}, err
	}
	if err := up.Validate(); err != nil {
		return user.User{}, err
	}

	var updated user.User
	err = svc.store.Update(ctx, func(s *records.State) error {
		usr, err := s.GetUser(p.Username)
		if err != nil {
			return err
		}
		up.Apply(usr)
		updated = *usr
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	svc.logger.Info("profile updated", actor)
	return updated, nil
}
