package records

import (
	"context"
	"sort"

	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/user"
)

// State is the whole persisted document.
type State struct {
	Users   map[string]*user.User     `json:"users"`
	Courses map[string]*course.Course `json:"courses"`
}

func NewState() *State {
	return &State{
		Users:   make(map[string]*user.User),
		Courses: make(map[string]*course.Course),
	}
}

// Normalize fills keys back into the records and repairs nil maps after decoding.
func (s *State) Normalize() {
	if s.Users == nil {
		s.Users = make(map[string]*user.User)
	}
	if s.Courses == nil {
		s.Courses = make(map[string]*course.Course)
	}
	for uname, usr := range s.Users {
		if usr == nil {
			delete(s.Users, uname)
			continue
		}
		usr.Username = uname
	}
	for code, c := range s.Courses {
		if c == nil {
			delete(s.Courses, code)
			continue
		}
		c.Code = code
		c.Normalize()
	}
}

// Clone returns a deep copy, used to apply a change set atomically.
func (s *State) Clone() *State {
	cp := NewState()
	for uname, usr := range s.Users {
		u := *usr
		cp.Users[uname] = &u
	}
	for code, c := range s.Courses {
		cp.Courses[code] = c.Clone()
	}
	return cp
}

func (s *State) Usernames() []string {
	return sortedKeys(len(s.Users), func(f func(string)) {
		for k := range s.Users {
			f(k)
		}
	})
}

func (s *State) CourseCodes() []string {
	return sortedKeys(len(s.Courses), func(f func(string)) {
		for k := range s.Courses {
			f(k)
		}
	})
}

func sortedKeys(n int, each func(func(string))) []string {
	keys := make([]string, 0, n)
	each(func(k string) { keys = append(keys, k) })
	sort.Strings(keys)
	return keys
}

// Backend loads and saves the whole State.
// Load must return an empty State, not an error, when nothing was saved yet.
type Backend interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}
