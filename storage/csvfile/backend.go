package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/roster"
)

// row is the on-disk shape; every column is required.
type row struct {
	ID    string `csv:"id"`
	Name  string `csv:"name"`
	DOB   string `csv:"dob"`
	Class string `csv:"class"`
	GPA   string `csv:"gpa"`
}

var columns = []string{"id", "name", "dob", "class", "gpa"}

// checkHeader makes sure the first line names every column, so a table without a header is never read as empty.
func checkHeader(data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(header))
	for _, col := range header {
		seen[strings.TrimSpace(col)] = true
	}
	var missing []string
	for _, col := range columns {
		if !seen[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("header row is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (r row) complete() bool {
	for _, col := range []string{r.ID, r.Name, r.DOB, r.Class, r.GPA} {
		if strings.TrimSpace(col) == "" {
			return false
		}
	}
	return true
}

// Backend stores the roster as a CSV table with a header row.
type Backend struct {
	path   string
	logger core.Logger
}

var _ roster.Backend = (*Backend)(nil) // interface compliance check

func New(path string, logger core.Logger) *Backend {
	return &Backend{path: path, logger: logger}
}

func (b *Backend) Path() string { return b.path }

// Load skips rows missing a column. A missing file is an empty table; a missing header or an unreadable gpa
// is a decode error.
func (b *Backend) Load(ctx context.Context) ([]roster.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", b.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if err := checkHeader(data); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", b.path)
	}
	var rows []*row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", b.path)
	}

	recs := make([]roster.Record, 0, len(rows))
	for i, r := range rows {
		if !r.complete() {
			b.logger.Debug(fmt.Sprintf("%s: skipping incomplete row %d", b.path, i+2))
			continue
		}
		gpa, err := strconv.ParseFloat(strings.TrimSpace(r.GPA), 64)
		if err != nil {
			return nil, errors.Errorf("decoding %s: row %d has gpa %q", b.path, i+2, r.GPA)
		}
		recs = append(recs, roster.Record{
			ID:    strings.TrimSpace(r.ID),
			Name:  strings.TrimSpace(r.Name),
			DOB:   strings.TrimSpace(r.DOB),
			Class: strings.TrimSpace(r.Class),
			GPA:   gpa,
		})
	}
	return recs, nil
}

// Save rewrites the table through a temp file in the same directory; gpa is written with two decimals.
func (b *Backend) Save(ctx context.Context, recs []roster.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]*row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, &row{ID: rec.ID, Name: rec.Name, DOB: rec.DOB, Class: rec.Class, GPA: rec.GPAString()})
	}

	tmp, err := ioutil.TempFile(filepath.Dir(b.path), "."+filepath.Base(b.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "writing %s", b.path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := gocsv.Marshal(rows, tmp); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "encoding %s", b.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", b.path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", b.path)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return errors.Wrapf(err, "writing %s", b.path)
	}
	return nil
}
