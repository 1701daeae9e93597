package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/rollbook/core/records"
)

// Backend stores the state as one indented JSON document with sorted keys.
type Backend struct {
	path string
}

var _ records.Backend = (*Backend)(nil) // interface compliance check

func New(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Path() string { return b.path }

// Load returns an empty state when the file does not exist yet.
func (b *Backend) Load(ctx context.Context) (*records.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(b.path)
	if os.IsNotExist(err) {
		return records.NewState(), nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", b.path)
	}

	state := records.NewState()
	if len(bytes.TrimSpace(data)) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", b.path)
	}
	state.Normalize()
	return state, nil
}

// Save rewrites the whole document through a temp file in the same directory.
func (b *Backend) Save(ctx context.Context, state *records.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return errors.Wrap(err, "encoding records")
	}

	dir := filepath.Dir(b.path)
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(b.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "writing %s", b.path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", b.path)
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
