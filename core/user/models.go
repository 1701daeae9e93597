package user

import (
	"errors"
	"net/mail"

	"github.com/trezcool/rollbook/core"
)

// Roles
const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

var (
	AllRoles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrIDExists       = errors.New("another student already has this id")
	ErrAuthFailed     = errors.New("invalid username or password")
	ErrInvalidRole    = errors.New("invalid role")
)

type Role string

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts any casing and surrounding whitespace.
func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type Info struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type User struct {
	Username  string `json:"-"` // key of the users mapping
	Role      Role   `json:"role"`
	Password  string `json:"password"`
	Info      Info   `json:"info"`
	StudentID string `json:"student_id,omitempty"`
}

// CheckPassword compares in plain text, exact and case-sensitive.
func (u *User) CheckPassword(pwd string) bool {
	return u.Password == pwd
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }

// MailAddress returns the user's address, ok is false when none is usable.
func (u *User) MailAddress() (mail.Address, bool) {
	if u.Info.Email == "" {
		return mail.Address{}, false
	}
	addr, err := mail.ParseAddress(u.Info.Email)
	if err != nil {
		return mail.Address{}, false
	}
	addr.Name = u.Info.Name
	return *addr, true
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username string `json:"username" validate:"notblank"`
	Role     Role   `json:"role" validate:"role"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (nu *NewUser) Validate(users map[string]*User) error {
	nu.Username = core.CleanString(nu.Username)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
	nu.Password = core.CleanString(nu.Password)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email)

	if err := core.ValidateStruct(nu); err != nil {
		return err
	}
	if _, exists := users[nu.Username]; exists {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}

// User builds the record; students get the next free id.
func (nu NewUser) User(users map[string]*User) *User {
	usr := &User{
		Username: nu.Username,
		Role:     nu.Role,
		Password: nu.Password,
		Info:     Info{Name: nu.Name, Email: nu.Email},
	}
	if usr.IsStudent() {
		usr.StudentID = NextStudentID(users)
	}
	return usr
}

// UpdateProfile is what a user may change about themself. Blank fields are left unchanged.
type UpdateProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (up *UpdateProfile) Validate() error {
	up.Name = core.CleanString(up.Name)
	up.Email = core.CleanString(up.Email)
	return core.ValidateStruct(up)
}

func (up UpdateProfile) Apply(usr *User) {
	if up.Name != "" {
		usr.Info.Name = up.Name
	}
	if up.Email != "" {
		usr.Info.Email = up.Email
	}
}

// UpdateStudent defines what an admin may modify on a student. Blank fields are left unchanged.
type UpdateStudent struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	StudentID string `json:"student_id" validate:"omitempty,studentid"`
}

func (us *UpdateStudent) Validate(orig *User, users map[string]*User) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email)
	us.Password = core.CleanString(us.Password)
	us.StudentID = core.CleanString(us.StudentID)

	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	if us.StudentID == "" {
		return nil
	}

	// ids are compared by number, S0001 and S001 are the same student
	n, ok := ParseStudentID(us.StudentID)
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "student_id must look like S001"})
	}
	us.StudentID = FormatStudentID(n)
	for uname, usr := range users {
		if uname == orig.Username || !usr.IsStudent() {
			continue
		}
		if m, ok := ParseStudentID(usr.StudentID); ok && m == n {
			return core.NewValidationError(ErrIDExists, core.FieldError{Field: "student_id", Error: ErrIDExists.Error()})
		}
	}
	return nil
}

func (us UpdateStudent) Apply(usr *User) {
	UpdateProfile{Name: us.Name, Email: us.Email}.Apply(usr)
	if us.Password != "" {
		usr.Password = us.Password
	}
	if us.StudentID != "" {
		usr.StudentID = us.StudentID
	}
}
