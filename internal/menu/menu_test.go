package menu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls   []string
	copyErr error
}

func (r *recorder) Refresh() { r.calls = append(r.calls, "refresh") }

func (r *recorder) Quit() { r.calls = append(r.calls, "quit") }

func (r *recorder) Copy() error {
	r.calls = append(r.calls, "copy")
	return r.copyErr
}

func TestItems_LabelsAndOrder(t *testing.T) {
	items := Items()
	require.Len(t, items, 4)

	assert.Equal(t, "刷新一言", items[0].Label)
	assert.Equal(t, ActionRefresh, items[0].Action)
	assert.Equal(t, "复制一言", items[1].Label)
	assert.Equal(t, ActionCopy, items[1].Action)
	assert.True(t, items[2].Separator)
	assert.Empty(t, items[2].Action)
	assert.Equal(t, "退出", items[3].Label)
	assert.Equal(t, ActionQuit, items[3].Action)

	seen := map[int32]bool{}
	for _, it := range items {
		assert.NotZero(t, it.ID)
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
}

func TestLookup(t *testing.T) {
	it, ok := Lookup(2)
	require.True(t, ok)
	assert.Equal(t, ActionCopy, it.Action)

	_, ok = Lookup(99)
	assert.False(t, ok)
}

func TestDispatch(t *testing.T) {
	r := &recorder{}

	require.NoError(t, Dispatch(r, ActionRefresh))
	require.NoError(t, Dispatch(r, ActionCopy))
	require.NoError(t, Dispatch(r, ActionQuit))
	assert.Equal(t, []string{"refresh", "copy", "quit"}, r.calls)

	assert.Error(t, Dispatch(r, Action("reboot")))
}

func TestDispatch_PropagatesCopyError(t *testing.T) {
	boom := errors.New("no clipboard")
	r := &recorder{copyErr: boom}

	assert.ErrorIs(t, Dispatch(r, ActionCopy), boom)
}
