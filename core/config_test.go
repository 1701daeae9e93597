package core

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		prev, had := os.LookupEnv(k)
		if err := os.Setenv(k, v); err != nil {
			t.Fatalf("Setenv() failed: %v", err)
		}
		k := k
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, prev)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}
}

func TestNewConfig(t *testing.T) {
	setEnv(t, map[string]string{"ENV": "test"})

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() unexpected error = %v", err)
	}
	if !conf.IsTest() || conf.Seed {
		t.Errorf("NewConfig() env = %q, seed = %v; want TEST without seeding", conf.Env, conf.Seed)
	}
	if conf.Storage.Driver != DriverJSON || conf.Storage.Path != "data.json" || conf.RosterPath != "students.csv" {
		t.Errorf("NewConfig() storage = %+v, roster = %q", conf.Storage, conf.RosterPath)
	}
	if got := conf.DefaultFromEmail(); got.Address != "noreply@localhost" || got.Name != "Rollbook" {
		t.Errorf("DefaultFromEmail() = %v", got)
	}
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"ENV":                   "TEST",
		"TEST_STORAGE_DRIVER":   "SQLite",
		"TEST_STORAGE_PATH":     "school.db",
		"TEST_DEFAULTFROMEMAIL": "not an address",
		"TEST_LOG_FILE":         "rollbook.log",
	})

	conf, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() unexpected error = %v", err)
	}
	if conf.Storage.Driver != DriverSQLite || conf.Storage.Path != "school.db" {
		t.Errorf("NewConfig() storage = %+v", conf.Storage)
	}
	if conf.LogFile != "rollbook.log" {
		t.Errorf("NewConfig() log file = %q, want rollbook.log", conf.LogFile)
	}
	if got := conf.DefaultFromEmail(); got.Address != "noreply@localhost" {
		t.Errorf("DefaultFromEmail() = %v, want the fallback", got)
	}
}

func TestNewConfig_DotEnv(t *testing.T) {
	setEnv(t, map[string]string{"ENV": "TEST"})
	path := filepath.Join(t.TempDir(), ".env")
	if err := ioutil.WriteFile(path, []byte("TEST_ROSTER_PATH=roster.csv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("TEST_ROSTER_PATH") })

	conf, err := NewConfig(path)
	if err != nil {
		t.Fatalf("NewConfig() unexpected error = %v", err)
	}
	if conf.RosterPath != "roster.csv" {
		t.Errorf("NewConfig() roster = %q, want roster.csv", conf.RosterPath)
	}
}

func TestNewConfig_UnknownDriver(t *testing.T) {
	setEnv(t, map[string]string{"ENV": "TEST", "TEST_STORAGE_DRIVER": "mongo"})
	if _, err := NewConfig(); err == nil {
		t.Error("NewConfig() should reject an unknown driver")
	}
}
