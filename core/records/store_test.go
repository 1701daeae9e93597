package records_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
	"github.com/trezcool/rollbook/tests"
)

func TestSeed(t *testing.T) {
	t.Run("empty state", func(t *testing.T) {
		s := records.NewState()
		added := records.Seed(s)
		if want := []string{"admin", "lecturer1", "student1", "IT101"}; !reflect.DeepEqual(added, want) {
			t.Errorf("Seed() = %v, want %v", added, want)
		}
		if s.Users["admin"].Role != user.RoleAdmin || s.Users["admin"].Password != "admin123" {
			t.Errorf("admin = %+v", s.Users["admin"])
		}
		if s.Users["student1"].StudentID != "S001" {
			t.Errorf("student1.StudentID = %q, want S001", s.Users["student1"].StudentID)
		}
		c := s.Courses["IT101"]
		if c.Instructor != "lecturer1" || !c.IsEnrolled("student1") || c.Grades["student1"] != 8.5 {
			t.Errorf("IT101 = %+v", c)
		}

		if again := records.Seed(s); len(again) != 0 {
			t.Errorf("Seed() second run = %v, want nothing", again)
		}
	})

	t.Run("courses already present", func(t *testing.T) {
		s := records.NewState()
		s.PutCourse(course.New("CS1", "Intro", ""))
		added := records.Seed(s)
		if want := []string{"admin"}; !reflect.DeepEqual(added, want) {
			t.Errorf("Seed() = %v, want %v", added, want)
		}
		if len(s.Courses) != 1 {
			t.Errorf("Seed() touched the courses: %v", s.CourseCodes())
		}
	})

	t.Run("users already present", func(t *testing.T) {
		s := records.NewState()
		s.PutUser(&user.User{Username: "boss", Role: user.RoleAdmin})
		if added := records.Seed(s); len(added) != 0 {
			t.Errorf("Seed() = %v, want nothing", added)
		}
	})
}

func TestStore_Open(t *testing.T) {
	store, db := testutil.NewStore(t, true)
	if got := store.State().Usernames(); !reflect.DeepEqual(got, []string{"admin", "lecturer1", "student1"}) {
		t.Errorf("Usernames() = %v", got)
	}
	if db.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", db.Saves())
	}

	// a second run over the same records seeds nothing more
	logger, _ := testutil.NewLogger(t)
	again, err := records.NewStore(db, logger, true)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if err := again.Open(context.Background()); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if len(again.State().Users) != 3 || len(again.State().Courses) != 1 {
		t.Errorf("second Open() state = %v / %v", again.State().Usernames(), again.State().CourseCodes())
	}
}

func TestStore_OpenBackfillsIDs(t *testing.T) {
	initial := records.NewState()
	initial.PutUser(&user.User{Username: "zed", Role: user.RoleStudent})
	initial.PutUser(&user.User{Username: "amy", Role: user.RoleStudent, StudentID: "S004"})
	initial.PutUser(&user.User{Username: "bob", Role: user.RoleStudent})

	store, _ := testutil.NewStore(t, false, initial)
	users := store.State().Users
	for uname, want := range map[string]string{"amy": "S004", "bob": "S005", "zed": "S006"} {
		if users[uname].StudentID != want {
			t.Errorf("%s.StudentID = %q, want %q", uname, users[uname].StudentID, want)
		}
	}
}

func TestNewStore(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	if _, err := records.NewStore(nil, logger, false); err == nil {
		t.Error("NewStore() without a backend should fail")
	}
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	store, db := testutil.NewStore(t, true)
	saves := db.Saves()

	t.Run("failing change set applies nothing", func(t *testing.T) {
		errBoom := errors.New("boom")
		err := store.Update(ctx, func(s *records.State) error {
			delete(s.Users, "admin")
			return errBoom
		})
		if err != errBoom {
			t.Errorf("Update() error = %v, want %v", err, errBoom)
		}
		if _, ok := store.State().Users["admin"]; !ok {
			t.Error("Update() applied a failed change set")
		}
		if db.Saves() != saves {
			t.Error("Update() saved a failed change set")
		}
	})

	t.Run("failing save applies nothing", func(t *testing.T) {
		db.FailSaves(errors.New("disk full"))
		defer db.FailSaves(nil)

		err := store.Update(ctx, func(s *records.State) error {
			return s.DeleteUser("student1")
		})
		if !records.IsPersist(err) {
			t.Errorf("Update() error = %v, want a persist error", err)
		}
		if _, ok := store.State().Users["student1"]; !ok {
			t.Error("Update() kept a change that was not saved")
		}
	})

	t.Run("saved change set", func(t *testing.T) {
		err := store.Update(ctx, func(s *records.State) error {
			return s.DeleteCourse("IT101")
		})
		if err != nil {
			t.Fatalf("Update() unexpected error = %v", err)
		}
		if len(store.State().Courses) != 0 {
			t.Error("Update() did not apply the change set")
		}
		saved, err := db.Load(ctx)
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if len(saved.Courses) != 0 {
			t.Error("Update() did not persist the change set")
		}
	})
}

func TestState_DeleteUser(t *testing.T) {
	s := records.NewState()
	records.Seed(s)
	s.PutUser(&user.User{Username: "student2", Role: user.RoleStudent, StudentID: "S002"})
	it102 := course.New("IT102", "Databases", "lecturer1")
	_ = it102.Enroll("student2")
	_ = it102.Enroll("student1")
	_ = it102.SetGrade("student1", 6)
	s.PutCourse(it102)

	if err := s.DeleteUser("student1"); err != nil {
		t.Fatalf("DeleteUser() unexpected error = %v", err)
	}
	for _, c := range s.ListCourses() {
		if c.IsEnrolled("student1") {
			t.Errorf("%s still enrolls student1", c.Code)
		}
		if _, ok := c.Grades["student1"]; ok {
			t.Errorf("%s still grades student1", c.Code)
		}
	}
	if !s.Courses["IT102"].IsEnrolled("student2") {
		t.Error("DeleteUser() removed another student")
	}

	t.Run("instructor reference is cleared", func(t *testing.T) {
		if err := s.DeleteUser("lecturer1"); err != nil {
			t.Fatalf("DeleteUser() unexpected error = %v", err)
		}
		for _, c := range s.ListCourses() {
			if c.Instructor != "" {
				t.Errorf("%s.Instructor = %q, want none", c.Code, c.Instructor)
			}
		}
	})

	t.Run("unknown user mutates nothing", func(t *testing.T) {
		before := s.Clone()
		err := s.DeleteUser("student9")
		if !core.IsNotFound(err) || !errors.Is(err, user.ErrNotFound) {
			t.Errorf("DeleteUser() error = %v, want not found", err)
		}
		if !reflect.DeepEqual(before, s) {
			t.Error("DeleteUser() of an unknown user changed the state")
		}
	})
}

func TestState_Lookups(t *testing.T) {
	s := records.NewState()
	records.Seed(s)

	if _, err := s.GetUser("student"); err == nil || err.Error() != "user not found (did you mean student1?)" {
		t.Errorf("GetUser() error = %v", err)
	}
	if _, err := s.GetUserWithRole("lecturer1", user.RoleStudent); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetUserWithRole() error = %v, want not found", err)
	}
	if _, err := s.GetCourse("IT10"); !errors.Is(err, course.ErrNotFound) {
		t.Errorf("GetCourse() error = %v, want not found", err)
	}
	if err := s.DeleteCourse("nope"); !core.IsNotFound(err) {
		t.Errorf("DeleteCourse() error = %v, want not found", err)
	}
	if got := s.Usernames(); !reflect.DeepEqual(got, []string{"admin", "lecturer1", "student1"}) {
		t.Errorf("Usernames() = %v, want sorted", got)
	}
}

func TestState_Clone(t *testing.T) {
	s := records.NewState()
	records.Seed(s)
	cp := s.Clone()
	cp.Users["admin"].Password = "changed"
	_ = cp.Courses["IT101"].Unenroll("student1")

	if s.Users["admin"].Password != "admin123" || !s.Courses["IT101"].IsEnrolled("student1") {
		t.Error("Clone() shares records with the original")
	}
}
