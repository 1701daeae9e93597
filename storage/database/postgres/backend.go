package pgstore

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/storage/database"
)

// nullable columns; the shared rows use "" for NULL
type (
	userRow struct {
		Username  string      `db:"username"`
		Role      string      `db:"role"`
		Password  string      `db:"password"`
		Name      string      `db:"name"`
		Email     string      `db:"email"`
		StudentID null.String `db:"student_id"`
	}

	courseRow struct {
		Code       string      `db:"code"`
		Name       string      `db:"name"`
		Instructor null.String `db:"instructor"`
	}
)

// Backend stores the state in the tables created by the embedded migrations.
type Backend struct {
	db *sqlx.DB
}

var _ records.Backend = (*Backend)(nil) // interface compliance check

func New(db *sqlx.DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Load(ctx context.Context) (*records.State, error) {
	var (
		rows    database.Rows
		users   []userRow
		courses []courseRow
	)
	if err := sqlx.SelectContext(ctx, b.db, &users, `SELECT username, role, password, name, email, student_id FROM users`); err != nil {
		return nil, errors.Wrap(err, "loading users")
	}
	if err := sqlx.SelectContext(ctx, b.db, &courses, `SELECT code, name, instructor FROM courses`); err != nil {
		return nil, errors.Wrap(err, "loading courses")
	}
	if err := sqlx.SelectContext(ctx, b.db, &rows.Enrollments, `SELECT course_code, username, position FROM enrollments`); err != nil {
		return nil, errors.Wrap(err, "loading enrollments")
	}
	if err := sqlx.SelectContext(ctx, b.db, &rows.Grades, `SELECT course_code, username, grade FROM grades`); err != nil {
		return nil, errors.Wrap(err, "loading grades")
	}

	for _, u := range users {
		rows.Users = append(rows.Users, database.UserRow{
			Username:  u.Username,
			Role:      u.Role,
			Password:  u.Password,
			Name:      u.Name,
			Email:     u.Email,
			StudentID: u.StudentID.String,
		})
	}
	for _, c := range courses {
		rows.Courses = append(rows.Courses, database.CourseRow{Code: c.Code, Name: c.Name, Instructor: c.Instructor.String})
	}
	return database.Assemble(rows), nil
}

// Save replaces every row in one transaction.
func (b *Backend) Save(ctx context.Context, state *records.State) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"grades", "enrollments", "courses", "users"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clearing %s", table)
		}
	}

	rows := database.Flatten(state)
	for _, r := range rows.Users {
		u := userRow{
			Username:  r.Username,
			Role:      r.Role,
			Password:  r.Password,
			Name:      r.Name,
			Email:     r.Email,
			StudentID: null.NewString(r.StudentID, r.StudentID != ""),
		}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO users (username, role, password, name, email, student_id)
			VALUES (:username, :role, :password, :name, :email, :student_id)`, u); err != nil {
			return errors.Wrap(err, "inserting user")
		}
	}
	for _, r := range rows.Courses {
		c := courseRow{Code: r.Code, Name: r.Name, Instructor: null.NewString(r.Instructor, r.Instructor != "")}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO courses (code, name, instructor)
			VALUES (:code, :name, :instructor)`, c); err != nil {
			return errors.Wrap(err, "inserting course")
		}
	}
	for _, r := range rows.Enrollments {
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO enrollments (course_code, username, position)
			VALUES (:course_code, :username, :position)`, r); err != nil {
			return errors.Wrap(err, "inserting enrollment")
		}
	}
	for _, r := range rows.Grades {
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO grades (course_code, username, grade)
			VALUES (:course_code, :username, :grade)`, r); err != nil {
			return errors.Wrap(err, "inserting grade")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}
	return nil
}
