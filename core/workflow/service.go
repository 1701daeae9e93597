package workflow

import (
	"errors"
	"fmt"

	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
)

var (
	// errors
	ErrForbidden     = errors.New("operation not permitted")
	ErrNotYourCourse = errors.New("you do not teach this course")
)

// Capability names one thing a role may do.
type Capability string

const (
	ViewOwnGrades       Capability = "view own grades"
	UpdateOwnProfile    Capability = "update own profile"
	ViewAssignedCourses Capability = "view assigned courses"
	EnterGrades         Capability = "enter grades"
	ManageAccounts      Capability = "manage accounts"
	ManageStudents      Capability = "manage students"
	ManageCourses       Capability = "manage courses"
	ListUsers           Capability = "list users"
)

var roleCapabilities = map[user.Role][]Capability{
	user.RoleStudent:    {ViewOwnGrades, UpdateOwnProfile},
	user.RoleInstructor: {ViewAssignedCourses, EnterGrades},
	user.RoleAdmin:      {ManageAccounts, ManageStudents, ManageCourses, ListUsers},
}

// Can reports whether `role` holds `capability`.
func Can(role user.Role, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Principal is the acting user of an operation.
type Principal struct {
	Username string
	Role     user.Role
	system   bool
}

// System acts as an admin without a stored account; used by the operator commands.
var System = Principal{Username: "system", Role: user.RoleAdmin, system: true}

func PrincipalOf(usr user.User) Principal {
	return Principal{Username: usr.Username, Role: usr.Role}
}

func (p Principal) String() string {
	return fmt.Sprintf("%s (%s)", p.Username, p.Role)
}

// Service runs the role-scoped operations against the record store.
type Service struct {
	store  *records.Store
	logger core.Logger
	mailer core.EmailService
}

func NewService(store *records.Store, logger core.Logger, mailer core.EmailService) (*Service, error) {
	if err := vala.BeginValidation().Validate(
		vala.IsNotNil(store, "store"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(mailer, "mailer"),
	).Check(); err != nil {
		return nil, err
	}
	return &Service{store: store, logger: logger, mailer: mailer}, nil
}

// WithLogger returns a copy of the service logging through `logger`.
func (svc *Service) WithLogger(logger core.Logger) *Service {
	cp := *svc
	cp.logger = logger
	return &cp
}

// Login authenticates against the stored users and returns the matching principal.
func (svc *Service) Login(username, pwd string) (Principal, user.User, error) {
	usr, err := user.Authenticate(svc.store.State().Users, core.CleanString(username), pwd)
	if err != nil {
		return Principal{}, user.User{}, err
	}
	return PrincipalOf(usr), usr, nil
}

// authorize checks the capability against the role claimed, then that the
// principal still exists with that role. It returns the acting user.
func (svc *Service) authorize(p Principal, capability Capability) (user.User, error) {
	if !Can(p.Role, capability) {
		return user.User{}, pkgerrors.Wrapf(ErrForbidden, "%s cannot %s", p, capability)
	}
	if p.system {
		return user.User{Username: p.Username, Role: p.Role}, nil
	}
	usr, ok := svc.store.State().Users[p.Username]
	if !ok || usr.Role != p.Role {
		return user.User{}, pkgerrors.Wrapf(ErrForbidden, "%s cannot %s", p, capability)
	}
	return *usr, nil
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func invalid(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}
