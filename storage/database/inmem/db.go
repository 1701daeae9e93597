package inmemdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/trezcool/rollbook/core/records"
)

// DB keeps the saved state in memory, as an encoded snapshot so callers never share pointers with it.
type DB struct {
	mutex    sync.RWMutex
	snapshot []byte
	saves    int
	failWith error
}

var _ records.Backend = (*DB)(nil) // interface compliance check

func Open(initial ...*records.State) (*DB, error) {
	db := &DB{}
	if len(initial) > 0 && initial[0] != nil {
		if err := db.Save(context.Background(), initial[0]); err != nil {
			return nil, err
		}
		db.saves = 0
	}
	return db, nil
}

func (db *DB) Load(_ context.Context) (*records.State, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	state := records.NewState()
	if db.snapshot == nil {
		return state, nil
	}
	if err := json.Unmarshal(db.snapshot, state); err != nil {
		return nil, err
	}
	state.Normalize()
	return state, nil
}

func (db *DB) Save(_ context.Context, state *records.State) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.failWith != nil {
		return db.failWith
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	db.snapshot = data
	db.saves++
	return nil
}

// Saves counts successful saves since Open.
func (db *DB) Saves() int {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.saves
}

// FailSaves makes every following Save return err (nil restores normal behaviour).
func (db *DB) FailSaves(err error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.failWith = err
}
