package core

import (
	"testing"

	"github.com/pkg/errors"
)

func reason(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want a *ValidationError", err)
	}
	return verr.Reason()
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		want       float64
		wantReason string
	}{
		{name: "not a number", raw: "abc", wantReason: "grade must be a number"},
		{name: "empty", raw: "", wantReason: "grade must be a number"},
		{name: "below range", raw: "-0.5", wantReason: "grade must be between 0 and 10"},
		{name: "above range", raw: "10.01", wantReason: "grade must be between 0 and 10"},
		{name: "lower bound", raw: "0", want: 0},
		{name: "upper bound", raw: "10", want: 10},
		{name: "decimal", raw: " 8.5 ", want: 8.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGrade(tt.raw)
			if tt.wantReason != "" {
				if got := reason(t, err); got != tt.wantReason {
					t.Errorf("ParseGrade() reason = %q, want %q", got, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGrade() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseGrade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseGPA(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "3.25", want: 3.25},
		{raw: "4", want: 4},
		{raw: " 8.50 ", want: 8.5},
		{raw: "three", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseGPA(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGPA() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseGPA() = %v, want %v", got, tt.want)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("ParseGPA() error = %T, want a validation error", err)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2001-02-03"); err != nil {
		t.Errorf("ParseDate() unexpected error = %v", err)
	}
	for _, raw := range []string{"03/02/2001", "2001-13-01", ""} {
		_, err := ParseDate(raw)
		if got := reason(t, err); got != "dob must be a date formatted as YYYY-MM-DD" {
			t.Errorf("ParseDate(%q) reason = %q", raw, got)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Name      string `json:"name" validate:"notblank"`
		StudentID string `json:"student_id" validate:"omitempty,studentid"`
		DOB       string `json:"dob" validate:"omitempty,isodate"`
	}
	tests := []struct {
		name       string
		form       form
		wantReason string
	}{
		{name: "blank name", form: form{Name: "  "}, wantReason: "name cannot be blank"},
		{name: "bad student id", form: form{Name: "a", StudentID: "S1"}, wantReason: "student_id must look like S001"},
		{name: "bad dob", form: form{Name: "a", DOB: "yesterday"}, wantReason: "dob must be a date formatted as YYYY-MM-DD"},
		{name: "valid", form: form{Name: "a", StudentID: "S1000", DOB: "2000-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.form)
			if tt.wantReason == "" {
				if err != nil {
					t.Errorf("ValidateStruct() unexpected error = %v", err)
				}
				return
			}
			if got := reason(t, err); got != tt.wantReason {
				t.Errorf("ValidateStruct() reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestClosestMatches(t *testing.T) {
	candidates := []string{"admin", "lecturer1", "student1", "student2"}
	tests := []struct {
		key  string
		want []string
	}{
		{key: "admn", want: []string{"admin"}},
		{key: "student", want: []string{"student1", "student2"}},
		{key: "zzz", want: []string{}},
		{key: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := ClosestMatches(tt.key, candidates)
			if len(got) != len(tt.want) {
				t.Fatalf("ClosestMatches() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ClosestMatches() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	sentinel := errors.New("user not found")
	err := NewNotFoundError(sentinel, "admn", []string{"admin", "student1"})

	if got, want := err.Error(), "user not found (did you mean admin?)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false, want true")
	}
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() = false, want true")
	}
	if got := NewNotFoundError(sentinel, "zzz", nil).Error(); got != "user not found" {
		t.Errorf("Error() = %q, want no suggestions", got)
	}
}
