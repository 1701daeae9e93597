package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/user"
	"github.com/trezcool/rollbook/storage/jsonfile"
	"github.com/trezcool/rollbook/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	in         string
	wantErr    error
	wantErrStr string
	wantOut    string
}

// execute runs one command line against a fresh commandLine, like a new process would.
func execute(cli *commandLine, in string, args ...string) (string, error) {
	rootCmd := cli.newRootCmd()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(in))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	cli.close()
	return out.String(), err
}

func setup(t *testing.T) string {
	testutil.Config(t)
	return filepath.Join(t.TempDir(), "data.json")
}

func runTests(t *testing.T, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(&commandLine{}, tt.in, tt.args...)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("execute() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("execute() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("execute() unexpected error = %v", err)
			}
			if tt.wantOut != "" && !strings.Contains(out, tt.wantOut) {
				t.Errorf("execute() output = %q, want it to contain %q", out, tt.wantOut)
			}
			if check != nil {
				check(t, tt)
			}
		})
	}
}

func loadUsers(t *testing.T, data string) map[string]*user.User {
	t.Helper()
	state, err := jsonfile.New(data).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return state.Users
}

func Test_commandLine_addUser(t *testing.T) {
	data := setup(t)

	tests := []cliTest{
		{name: "no flags", args: []string{"--data", data, "adduser"}, wantErr: errHelp},
		{name: "no role", args: []string{"--data", data, "adduser", "-u", "admin"}, wantErr: errHelp},
		{
			name:    "admin",
			args:    []string{"--data", data, "adduser", "-u", "admin", "-r", "admin"},
			in:      "admin123\n",
			wantOut: "created admin (admin)",
		},
		{
			name:    "student",
			args:    []string{"--data", data, "adduser", "-u", "student1", "-r", "Student", "-n", "Nguyen Van A", "-e", "a@test.cd"},
			in:      "study123",
			wantOut: "created student1 (student, S001)",
		},
		{name: "duplicate", args: []string{"--data", data, "adduser", "-u", "admin", "-r", "admin"}, in: "x\n", wantErr: user.ErrUsernameExists},
		{name: "invalid role", args: []string{"--data", data, "adduser", "-u", "x", "-r", "janitor"}, in: "x\n", wantErrStr: "role must be one of student, instructor or admin"},
	}
	runTests(t, tests, nil)

	users := loadUsers(t, data)
	if len(users) != 2 {
		t.Fatalf("saved users = %d, want 2", len(users))
	}
	if users["admin"].Password != "admin123" || users["student1"].Password != "study123" {
		t.Error("passwords were not saved as entered")
	}
	if users["student1"].Info.Name != "Nguyen Van A" || users["student1"].StudentID != "S001" {
		t.Errorf("student1 = %+v", users["student1"])
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	data := setup(t)
	if _, err := execute(&commandLine{}, "old\n", "--data", data, "adduser", "-u", "awe", "-r", "instructor"); err != nil {
		t.Fatalf("adduser failed: %v", err)
	}

	tests := []cliTest{
		{name: "no command", args: []string{"--data", data, "lol"}, wantErrStr: `unknown command "lol" for "rollbook"`},
		{name: "no args", args: []string{"--data", data, "resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"--data", data, "resetpassword", "-u", "awe"}, wantErr: errHelp},
		{name: "user not found", args: []string{"--data", data, "resetpassword", "-u", "lol"}, in: "lol\n", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"--data", data, "resetpassword", "-u", "awe"}, in: "  new pwd \n"},
	}
	runTests(t, tests, nil)

	if got := loadUsers(t, data)["awe"].Password; got != "new pwd" {
		t.Errorf("password = %q, want %q", got, "new pwd")
	}
}

func Test_commandLine_terminalPassword(t *testing.T) {
	data := setup(t)
	stdin, err := ioutil.TempFile(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = stdin.Close() }()

	origTerm, origRead := isTerminalFunc, readPasswordFunc
	defer func() { isTerminalFunc, readPasswordFunc = origTerm, origRead }()
	isTerminalFunc = func(fd int) bool { return fd == int(stdin.Fd()) }
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("secret"), nil }

	cli := &commandLine{}
	rootCmd := cli.newRootCmd()
	var out bytes.Buffer
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--data", data, "adduser", "-u", "root", "-r", "admin"})
	err = rootCmd.ExecuteContext(context.Background())
	cli.close()
	if err != nil {
		t.Fatalf("adduser failed: %v", err)
	}
	if got := loadUsers(t, data)["root"].Password; got != "secret" {
		t.Errorf("password = %q, want secret", got)
	}
}

func Test_commandLine_users(t *testing.T) {
	data := setup(t)
	for _, args := range [][]string{
		{"adduser", "-u", "student1", "-r", "student", "-n", "Nguyen Van A"},
		{"adduser", "-u", "lecturer1", "-r", "instructor", "-n", "Miss Tien"},
	} {
		if _, err := execute(&commandLine{}, "pwd\n", append([]string{"--data", data}, args...)...); err != nil {
			t.Fatalf("adduser failed: %v", err)
		}
	}

	out, err := execute(&commandLine{}, "", "--data", data, "users")
	if err != nil {
		t.Fatalf("users failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("users output = %q", out)
	}
	if !strings.HasPrefix(lines[1], "lecturer1") || !strings.HasPrefix(lines[2], "student1") {
		t.Errorf("users are not sorted: %q", out)
	}
	if !strings.Contains(lines[2], "Nguyen Van A") || !strings.HasSuffix(lines[2], "S001") {
		t.Errorf("student line = %q", lines[2])
	}
}

func Test_commandLine_drivers(t *testing.T) {
	setup(t)
	db := filepath.Join(t.TempDir(), "rollbook.db")

	tests := []cliTest{
		{name: "unknown driver", args: []string{"--driver", "mongo", "users"}, wantErrStr: `unknown storage driver "mongo"`},
		{name: "sqlite adduser", args: []string{"--driver", "sqlite", "--data", db, "adduser", "-u", "admin", "-r", "admin"}, in: "pwd\n"},
		{name: "sqlite users", args: []string{"--driver", "sqlite", "--data", db, "users"}, wantOut: "admin"},
		{name: "postgres without dsn", args: []string{"--driver", "postgres", "users"}, wantErrStr: "storage.dsn is required by the postgres driver"},
	}
	runTests(t, tests, nil)
}

func Test_commandLine_session(t *testing.T) {
	data := setup(t)
	if _, err := execute(&commandLine{}, "admin123\n", "--data", data, "adduser", "-u", "admin", "-r", "admin"); err != nil {
		t.Fatalf("adduser failed: %v", err)
	}

	out, err := execute(&commandLine{}, "1\nadmin\nadmin123\n4\n0\n2\n", "--data", data)
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	for _, want := range []string{"Logged in as: admin", "- admin (admin) - \n", "Goodbye."} {
		if !strings.Contains(out, want) {
			t.Errorf("session output = %q, want it to contain %q", out, want)
		}
	}
}

func Test_commandLine_migrate(t *testing.T) {
	testutil.Config(t)

	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a connected database skips the dsn lookup
			_, err := execute(&commandLine{db: &sqlx.DB{}}, "", tt.args...)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("execute() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("execute() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("execute() unexpected error = %v", err)
			}
		})
	}

	t.Run("file drivers have no database", func(t *testing.T) {
		_, err := execute(&commandLine{}, "", "--driver", core.DriverJSON, "migrate", "up")
		if err == nil || err.Error() != "the json driver has no database to migrate" {
			t.Errorf("execute() error = %v", err)
		}
	})
}

func Test_commandLine_roster(t *testing.T) {
	testutil.Config(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "students.csv")
	other := filepath.Join(dir, "other.csv")
	if err := ioutil.WriteFile(other, []byte("id,name,dob,class,gpa\nSV02,Bob Le,2002-01-01,CNTT2,3\nSV09,Carl,someday,CNTT2,3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	roster := func(args ...string) []string {
		return append([]string{"roster", "--file", file}, args...)
	}

	tests := []cliTest{
		{name: "add", args: roster("add", "--id", "SV01", "--name", "Alice Nguyen", "--dob", "2003-04-01", "--class", "CNTT1", "--gpa", "3.5"), wantOut: "added SV01"},
		{name: "add duplicate", args: roster("add", "--id", "SV01", "--name", "x", "--dob", "2003-04-01", "--class", "x", "--gpa", "1"), wantErrStr: "a record with this id already exists"},
		{name: "add bad gpa", args: roster("add", "--id", "SV02", "--name", "x", "--dob", "2003-04-01", "--class", "x", "--gpa", "five"), wantErrStr: "gpa must be a number"},
		{name: "add second", args: roster("add", "--id", "SV02", "--name", "Bob Tran", "--dob", "2002-12-31", "--class", "CNTT2", "--gpa", "2.75"), wantOut: "added SV02"},
		{name: "update", args: roster("update", "SV01", "--gpa", "3.9"), wantOut: "updated SV01"},
		{name: "search", args: roster("search", "alice"), wantOut: "SV01  Alice Nguyen  2003-04-01  CNTT1  3.90"},
		{name: "import", args: roster("import", other), wantOut: "imported 1 records, skipped 1"},
		{name: "list", args: roster("list"), wantOut: "Bob Le"},
		{name: "delete", args: roster("delete", "SV01"), wantOut: "deleted SV01"},
		{name: "delete missing", args: roster("delete", "SV01"), wantErrStr: "student record not found (did you mean SV02?)"},
		{name: "export", args: roster("export", filepath.Join(dir, "export.csv")), wantOut: "exported 1 records"},
	}
	runTests(t, tests, nil)

	data, err := ioutil.ReadFile(filepath.Join(dir, "export.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "id,name,dob,class,gpa\nSV02,Bob Le,2002-01-01,CNTT2,3.00\n"; string(data) != want {
		t.Errorf("export = %q, want %q", data, want)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("roster file was not written: %v", err)
	}
}
