package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/rollbook/core"
)

// Roster is the student table held in memory, written back after every change.
type Roster struct {
	backend Backend
	logger  core.Logger
	records map[string]Record
}

func New(backend Backend, logger core.Logger) (*Roster, error) {
	if err := vala.BeginValidation().Validate(
		vala.IsNotNil(backend, "backend"),
		vala.IsNotNil(logger, "logger"),
	).Check(); err != nil {
		return nil, err
	}
	return &Roster{backend: backend, logger: logger, records: make(map[string]Record)}, nil
}

// Load replaces the records with the backend's. Stored rows are kept as they are, only incomplete ones are
// skipped; a repeated id keeps the last row.
func (r *Roster) Load(ctx context.Context) error {
	recs, err := r.backend.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading roster")
	}
	records := make(map[string]Record, len(recs))
	for i, rec := range recs {
		if !rec.complete() {
			r.logger.Debug(fmt.Sprintf("skipping incomplete roster row %d", i+1))
			continue
		}
		records[rec.ID] = rec
	}
	r.records = records
	return nil
}

func (r *Roster) Save(ctx context.Context) error {
	if err := r.backend.Save(ctx, r.List()); err != nil {
		return errors.Wrap(err, "saving roster")
	}
	return nil
}

func (r *Roster) ids() []string {
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Roster) Get(id string) (Record, error) {
	rec, ok := r.records[core.CleanString(id)]
	if !ok {
		return Record{}, core.NewNotFoundError(ErrNotFound, id, r.ids())
	}
	return rec, nil
}

// List returns the records sorted by id.
func (r *Roster) List() []Record {
	recs := make([]Record, 0, len(r.records))
	for _, id := range r.ids() {
		recs = append(recs, r.records[id])
	}
	return recs
}

// Search matches `q` case-insensitively against id, name and class. A blank query lists everything.
func (r *Roster) Search(q string) []Record {
	q = core.CleanString(q)
	recs := make([]Record, 0)
	for _, rec := range r.List() {
		if q == "" || rec.matches(q) {
			recs = append(recs, rec)
		}
	}
	return recs
}

func (r *Roster) Add(ctx context.Context, nr NewRecord) (Record, error) {
	rec, err := nr.Record()
	if err != nil {
		return Record{}, err
	}
	if _, exists := r.records[rec.ID]; exists {
		return Record{}, core.NewValidationError(ErrIDExists, core.FieldError{Field: "id", Error: ErrIDExists.Error()})
	}
	return rec, r.commit(ctx, func(records map[string]Record) { records[rec.ID] = rec })
}

func (r *Roster) Update(ctx context.Context, id string, ur UpdateRecord) (Record, error) {
	orig, err := r.Get(id)
	if err != nil {
		return Record{}, err
	}
	rec, err := ur.Apply(orig)
	if err != nil {
		return Record{}, err
	}
	return rec, r.commit(ctx, func(records map[string]Record) { records[rec.ID] = rec })
}

func (r *Roster) Delete(ctx context.Context, id string) error {
	rec, err := r.Get(id)
	if err != nil {
		return err
	}
	return r.commit(ctx, func(records map[string]Record) { delete(records, rec.ID) })
}

// Merge adds the valid records of `recs`, overwriting records with the same id.
// It returns how many were merged and how many were skipped.
func (r *Roster) Merge(ctx context.Context, recs []Record) (merged, skipped int, err error) {
	valid := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if verr := core.ValidateStruct(rec); verr != nil {
			r.logger.Debug("skipping merged record "+rec.ID, verr)
			skipped++
			continue
		}
		valid = append(valid, rec)
	}
	if len(valid) == 0 {
		return 0, skipped, nil
	}
	err = r.commit(ctx, func(records map[string]Record) {
		for _, rec := range valid {
			records[rec.ID] = rec
		}
	})
	if err != nil {
		return 0, skipped, err
	}
	return len(valid), skipped, nil
}

// commit applies `fn` to a copy of the records and keeps it only once saved.
func (r *Roster) commit(ctx context.Context, fn func(records map[string]Record)) error {
	draft := make(map[string]Record, len(r.records)+1)
	for id, rec := range r.records {
		draft[id] = rec
	}
	fn(draft)

	prev := r.records
	r.records = draft
	if err := r.Save(ctx); err != nil {
		r.records = prev
		return err
	}
	return nil
}
