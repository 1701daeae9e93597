package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trezcool/rollbook/core"
)

var (
	ErrNotFound = errors.New("student record not found")
	ErrIDExists = errors.New("a record with this id already exists")
)

// Record is one row of the student table.
type Record struct {
	ID    string  `json:"id" validate:"notblank"`
	Name  string  `json:"name" validate:"notblank"`
	DOB   string  `json:"dob" validate:"isodate"`
	Class string  `json:"class" validate:"notblank"`
	GPA   float64 `json:"gpa"`
}

// complete reports whether every text column is filled in.
func (r Record) complete() bool {
	for _, col := range []string{r.ID, r.Name, r.DOB, r.Class} {
		if strings.TrimSpace(col) == "" {
			return false
		}
	}
	return true
}

// GPAString formats the GPA with two decimals, as stored.
func (r Record) GPAString() string {
	return fmt.Sprintf("%.2f", r.GPA)
}

func (r Record) matches(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(r.ID), q) ||
		strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Class), q)
}

// Backend reads and writes the whole table.
type Backend interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// NewRecord holds raw input for a record; GPA is parsed on validation.
type NewRecord struct {
	ID    string
	Name  string
	DOB   string
	Class string
	GPA   string
}

func (nr NewRecord) Record() (Record, error) {
	gpa, err := core.ParseGPA(nr.GPA)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:    core.CleanString(nr.ID),
		Name:  core.CleanString(nr.Name),
		DOB:   core.CleanString(nr.DOB),
		Class: core.CleanString(nr.Class),
		GPA:   gpa,
	}
	if err := core.ValidateStruct(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpdateRecord holds raw input for an update. Blank fields are left unchanged and only given fields are validated.
type UpdateRecord struct {
	Name  string
	DOB   string
	Class string
	GPA   string
}

func (ur UpdateRecord) Apply(rec Record) (Record, error) {
	if name := core.CleanString(ur.Name); name != "" {
		rec.Name = name
	}
	if dob := core.CleanString(ur.DOB); dob != "" {
		if err := core.ValidateVar("dob", dob, "isodate"); err != nil {
			return Record{}, err
		}
		rec.DOB = dob
	}
	if class := core.CleanString(ur.Class); class != "" {
		rec.Class = class
	}
	if core.CleanString(ur.GPA) != "" {
		gpa, err := core.ParseGPA(ur.GPA)
		if err != nil {
			return Record{}, err
		}
		rec.GPA = gpa
	}
	return rec, nil
}
