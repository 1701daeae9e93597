package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
	"github.com/trezcool/rollbook/core/workflow"
	"github.com/trezcool/rollbook/services/email"
	"github.com/trezcool/rollbook/services/logger"
	"github.com/trezcool/rollbook/storage/database/inmem"
)

// Config returns the TEST configuration.
func Config(t *testing.T) *core.Config {
	t.Helper()
	if err := os.Setenv("ENV", "TEST"); err != nil {
		t.Fatalf("Setenv() failed: %v", err)
	}
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	return conf
}

// NewLogger returns a logger whose entries are captured by the hook.
func NewLogger(t *testing.T) (*logsvc.RollbarLogger, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	return logsvc.NewRollbarLogger(log, Config(t)), hook
}

// NewStore opens a store over an in-memory backend holding `initial`.
func NewStore(t *testing.T, seed bool, initial ...*records.State) (*records.Store, *inmemdb.DB) {
	t.Helper()
	db, err := inmemdb.Open(initial...)
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	logger, _ := NewLogger(t)
	store, err := records.NewStore(db, logger, seed)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if err := store.Open(context.Background()); err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	return store, db
}

// NewService builds a workflow service over `store`; sent emails are kept by the returned console service.
func NewService(t *testing.T, store *records.Store) (*workflow.Service, *emailsvc.ConsoleService) {
	t.Helper()
	logger, _ := NewLogger(t)
	mailer := emailsvc.NewConsoleService(Config(t), nil, logger)
	svc, err := workflow.NewService(store, logger, mailer)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return svc, mailer
}

// CreateUser saves a user straight into the store; students get the next free id.
func CreateUser(t *testing.T, store *records.Store, uname string, role user.Role, pwd string) user.User {
	t.Helper()
	usr := user.User{
		Username: uname,
		Role:     role,
		Password: pwd,
		Info:     user.Info{Name: uname, Email: uname + "@test.cd"},
	}
	err := store.Update(context.Background(), func(s *records.State) error {
		if usr.IsStudent() {
			usr.StudentID = user.NextStudentID(s.Users)
		}
		u := usr
		s.PutUser(&u)
		return nil
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse saves a course straight into the store, enrolling `students`.
func CreateCourse(t *testing.T, store *records.Store, code, name, instructor string, students ...string) course.Course {
	t.Helper()
	c := course.New(code, name, instructor)
	for _, s := range students {
		if err := c.Enroll(s); err != nil {
			t.Fatalf("CreateCourse() failed: %v", err)
		}
	}
	err := store.Update(context.Background(), func(s *records.State) error {
		s.PutCourse(c.Clone())
		return nil
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return *c
}
