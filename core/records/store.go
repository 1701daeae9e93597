package records

import (
	"context"
	"fmt"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/rollbook/core"
	"github.com/trezcool/rollbook/core/user"
)

// PersistError is returned when the state could not be written; there is no recovery from it.
type PersistError struct {
	Err error
}

func (err PersistError) Error() string { return err.Err.Error() }
func (err PersistError) Unwrap() error { return err.Err }

func IsPersist(err error) bool {
	_, ok := errors.Cause(err).(*PersistError)
	return ok
}

// Store owns the in-memory State and its backend. A process holds exactly one.
type Store struct {
	backend Backend
	logger  core.Logger
	state   *State
	seed    bool
}

func NewStore(backend Backend, logger core.Logger, seed bool) (*Store, error) {
	if err := vala.BeginValidation().Validate(
		vala.IsNotNil(backend, "backend"),
		vala.IsNotNil(logger, "logger"),
	).Check(); err != nil {
		return nil, err
	}
	return &Store{backend: backend, logger: logger, seed: seed}, nil
}

// Open loads the state, seeds it when empty, backfills student ids, and saves it back.
func (st *Store) Open(ctx context.Context) error {
	state, err := st.backend.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading records")
	}
	state.Normalize()

	if st.seed {
		if added := Seed(state); len(added) > 0 {
			st.logger.Info("seeded default records", map[string]interface{}{"added": added})
		}
	}
	if unames := user.BackfillIDs(state.Users); len(unames) > 0 {
		st.logger.Info(fmt.Sprintf("assigned student ids to %d students", len(unames)))
	}

	st.state = state
	return st.Save(ctx)
}

// State gives read access to the current records. Callers must not mutate it; use Update.
func (st *Store) State() *State {
	if st.state == nil {
		st.state = NewState()
	}
	return st.state
}

func (st *Store) Save(ctx context.Context) error {
	if err := st.backend.Save(ctx, st.State()); err != nil {
		return &PersistError{errors.Wrap(err, "saving records")}
	}
	return nil
}

// Update applies `fn` to a copy of the state and persists it.
// When fn fails nothing is applied; when saving fails the in-memory state is left untouched too.
func (st *Store) Update(ctx context.Context, fn func(s *State) error) error {
	draft := st.State().Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if err := st.backend.Save(ctx, draft); err != nil {
		return &PersistError{errors.Wrap(err, "saving records")}
	}
	st.state = draft
	return nil
}
