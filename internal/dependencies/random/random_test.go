package random

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedRandom struct{ values []int }

func (f *fixedRandom) Intn(n int) int {
	if len(f.values) == 0 {
		return 0
	}
	v := f.values[0]
	f.values = f.values[1:]
	return v % n
}

func TestCryptoRandom_IntnRange(t *testing.T) {
	r := New()
	for i := 0; i < 100; i++ {
		v := r.Intn(5)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 5)
	}
	assert.Equal(t, 0, r.Intn(0))
}

func TestShuffle_IsPermutation(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	Shuffle(New(), len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, sorted)
}

func TestShuffle_Deterministic(t *testing.T) {
	items := []int{0, 1, 2}
	// i=2 swaps with 0, i=1 swaps with 1
	Shuffle(&fixedRandom{values: []int{0, 1}}, len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	assert.Equal(t, []int{2, 1, 0}, items)
}

func TestPick(t *testing.T) {
	assert.Equal(t, "c", Pick(&fixedRandom{values: []int{2}}, []string{"a", "b", "c"}))
	assert.Equal(t, "", Pick[string](New(), nil))
}
