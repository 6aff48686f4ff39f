package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id   int
	name string
}

func itemKey(i item) int { return i.id }

func sampleItems() []item {
	return []item{{3, "c"}, {1, "a"}, {2, "b"}}
}

func TestBuild_ToArrayPreservesOrder(t *testing.T) {
	items := sampleItems()

	m := Build(items, itemKey)

	assert.Equal(t, items, m.ToArray())
	assert.Equal(t, []int{3, 1, 2}, m.IDs())
	assert.Equal(t, 3, m.Len())
}

func TestBuild_Empty(t *testing.T) {
	m := Build([]item{}, itemKey)

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.ToArray())
}

func TestBuild_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	m := Build([]item{{1, "a"}, {2, "b"}, {1, "a2"}}, itemKey)

	assert.Equal(t, []int{1, 2}, m.IDs())
	got, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a2", got.name)
}

func TestRemove(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Remove(1)

	assert.NotContains(t, next.IDs(), 1)
	assert.False(t, next.Has(1))
	assert.Len(t, next.ToArray(), len(m.ToArray())-1)
	assert.Equal(t, []item{{3, "c"}, {2, "b"}}, next.ToArray())
}

func TestRemove_MissingKeyIsNoop(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Remove(42)

	assert.Equal(t, m.ToArray(), next.ToArray())
}

func TestEdits_DoNotTouchPreviousSnapshot(t *testing.T) {
	m := Build(sampleItems(), itemKey)
	before := m.ToArray()

	_ = m.Append(4, item{4, "d"})
	_ = m.Remove(3)
	_ = m.Replace(2, item{2, "B"})
	_ = m.ReplaceKey(1, 10, item{10, "a"})

	assert.Equal(t, before, m.ToArray())
	assert.Equal(t, []int{3, 1, 2}, m.IDs())
}

func TestAppend(t *testing.T) {
	var m Map[int, item]

	m = m.Append(1, item{1, "a"})
	m = m.Append(2, item{2, "b"})

	assert.Equal(t, []item{{1, "a"}, {2, "b"}}, m.ToArray())
}

func TestAppend_ExistingKeyReplacesInPlace(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Append(3, item{3, "C"})

	assert.Equal(t, []int{3, 1, 2}, next.IDs())
	got, _ := next.Get(3)
	assert.Equal(t, "C", got.name)
}

func TestReplace_KeepsOrder(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Replace(1, item{1, "A"})

	assert.Equal(t, []item{{3, "c"}, {1, "A"}, {2, "b"}}, next.ToArray())
}

func TestReplace_MissingKeyIsNoop(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Replace(9, item{9, "z"})

	assert.False(t, next.Has(9))
	assert.Equal(t, 3, next.Len())
}

func TestReplaceKey_KeepsPosition(t *testing.T) {
	m := Build([]item{{1, "a"}, {-1, "tmp"}, {2, "b"}}, itemKey)

	next := m.ReplaceKey(-1, 7, item{7, "tmp"})

	assert.Equal(t, []int{1, 7, 2}, next.IDs())
	assert.False(t, next.Has(-1))
}

func TestReplaceKey_MissingOldAppends(t *testing.T) {
	m := Build([]item{{1, "a"}}, itemKey)

	next := m.ReplaceKey(-1, 7, item{7, "x"})

	assert.Equal(t, []int{1, 7}, next.IDs())
}

func TestReplaceKey_DropsDuplicateNewKey(t *testing.T) {
	m := Build([]item{{7, "fetched"}, {1, "a"}, {-1, "tmp"}}, itemKey)

	next := m.ReplaceKey(-1, 7, item{7, "settled"})

	assert.Equal(t, []int{1, 7}, next.IDs())
	got, _ := next.Get(7)
	assert.Equal(t, "settled", got.name)
}

func TestFilter(t *testing.T) {
	m := Build(sampleItems(), itemKey)

	next := m.Filter(func(i item) bool { return i.id != 1 })

	assert.Equal(t, []int{3, 2}, next.IDs())
}
