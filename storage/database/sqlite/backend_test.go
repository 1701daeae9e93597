package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rollbook/core/course"
	"github.com/trezcool/rollbook/core/records"
	"github.com/trezcool/rollbook/core/user"
)

func TestBackend(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "rollbook.db")

	b, err := Open(file)
	require.NoError(t, err)

	state, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Users)

	records.Seed(state)
	state.PutUser(&user.User{Username: "student2", Role: user.RoleStudent, Info: user.Info{Name: "B"}, StudentID: "S002"})
	c := course.New("IT102", "Databases", "")
	_ = c.Enroll("student2")
	_ = c.Enroll("student1")
	state.PutCourse(c)
	require.NoError(t, b.Save(ctx, state))

	// saving twice replaces rather than duplicates
	require.NoError(t, b.Save(ctx, state))
	require.NoError(t, b.Close())

	b, err = Open(file)
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, got)
	assert.Equal(t, []string{"student2", "student1"}, got.Courses["IT102"].Students)
}
