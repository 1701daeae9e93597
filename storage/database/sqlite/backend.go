package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/go-gorp/gorp/v3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/storage/database"
)

// Backend maps the shared rows onto an sqlite file through gorp.
type Backend struct {
	db    *sql.DB
	dbmap *gorp.DbMap
}

var _ records.Backend = (*Backend)(nil) // interface compliance check

// Open opens (or creates) the sqlite file and its tables.
func Open(file string) (*Backend, error) {
	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	dbmap := &gorp.DbMap{Db: db, Dialect: gorp.SqliteDialect{}}
	dbmap.AddTableWithName(database.UserRow{}, "users").SetKeys(false, "Username")
	dbmap.AddTableWithName(database.CourseRow{}, "courses").SetKeys(false, "Code")
	dbmap.AddTableWithName(database.EnrollmentRow{}, "enrollments").SetUniqueTogether("CourseCode", "Username")
	dbmap.AddTableWithName(database.GradeRow{}, "grades").SetUniqueTogether("CourseCode", "Username")
	if err := dbmap.CreateTablesIfNotExists(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "unable to create tables")
	}
	return &Backend{db: db, dbmap: dbmap}, nil
}

func (b *Backend) Load(ctx context.Context) (*records.State, error) {
	exec := b.dbmap.WithContext(ctx)

	var rows database.Rows
	if _, err := exec.Select(&rows.Users, "SELECT * FROM users"); err != nil {
		return nil, errors.Wrap(err, "loading users")
	}
	if _, err := exec.Select(&rows.Courses, "SELECT * FROM courses"); err != nil {
		return nil, errors.Wrap(err, "loading courses")
	}
	if _, err := exec.Select(&rows.Enrollments, "SELECT * FROM enrollments"); err != nil {
		return nil, errors.Wrap(err, "loading enrollments")
	}
	if _, err := exec.Select(&rows.Grades, "SELECT * FROM grades"); err != nil {
		return nil, errors.Wrap(err, "loading grades")
	}
	return database.Assemble(rows), nil
}

// Save replaces every row in one transaction.
func (b *Backend) Save(ctx context.Context, state *records.State) (err error) {
	tx, err := b.dbmap.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	exec := tx.WithContext(ctx)

	for _, table := range []string{"grades", "enrollments", "courses", "users"} {
		if _, err = exec.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(err, "clearing %s", table)
		}
	}

	rows := database.Flatten(state)
	insertData := make([]interface{}, 0, len(rows.Users)+len(rows.Courses)+len(rows.Enrollments)+len(rows.Grades))
	for i := range rows.Users {
		insertData = append(insertData, &rows.Users[i])
	}
	for i := range rows.Courses {
		insertData = append(insertData, &rows.Courses[i])
	}
	for i := range rows.Enrollments {
		insertData = append(insertData, &rows.Enrollments[i])
	}
	for i := range rows.Grades {
		insertData = append(insertData, &rows.Grades[i])
	}
	if len(insertData) > 0 {
		if err = exec.Insert(insertData...); err != nil {
			return errors.Wrap(err, "inserting rows")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
