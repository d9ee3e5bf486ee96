package bitset

import (
	"math/rand"
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(b *Bitset) []int {
	return slices.Collect(b.All())
}

func TestBitset_ZeroValueDoesNotAllocate(t *testing.T) {
	var b Bitset
	assert.Nil(t, b.tail)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, unsafe.Sizeof(uint64(0))+unsafe.Sizeof(uintptr(0)), unsafe.Sizeof(b))

	b.Set(63)
	assert.Nil(t, b.tail, "indices below 64 must stay inline")
}

func TestBitset_Set(t *testing.T) {
	bs := New()
	bs.Set(3)
	bs.Set(1)
	bs.Set(7)

	assert.True(t, bs.Has(1))
	assert.True(t, bs.Has(3))
	assert.True(t, bs.Has(7))
	for _, bit := range []int{0, 2, 4, 6, 8} {
		assert.False(t, bs.Has(bit), "bit %d", bit)
	}

	assert.False(t, bs.Has(66000))
	bs.Set(66000)
	assert.True(t, bs.Has(66000))
	assert.False(t, bs.Has(65999))
	assert.False(t, bs.Has(66001))
}

func TestBitset_HasOutOfRange(t *testing.T) {
	bs := New()
	bs.Set(100)

	assert.False(t, bs.Has(-1))
	assert.False(t, bs.Has(1<<20))
	assert.False(t, bs.Has(64))
	assert.True(t, bs.Has(100))
}

func TestBitset_SetNegativePanics(t *testing.T) {
	bs := New()
	assert.Panics(t, func() { bs.Set(-1) })
	assert.Panics(t, func() { bs.Replace(-64) })
}

func TestBitset_WordBoundaries(t *testing.T) {
	bs := New()
	for _, bit := range []int{0, 63, 64, 127, 128} {
		bs.Set(bit)
	}
	assert.Equal(t, []int{0, 63, 64, 127, 128}, collect(&bs))
	require.NotNil(t, bs.tail)
	assert.Len(t, *bs.tail, 2)
}

func TestBitset_GrowthIsExact(t *testing.T) {
	bs := New()
	bs.Set(64 * 5)
	require.NotNil(t, bs.tail)
	assert.Len(t, *bs.tail, 5)

	bs.Set(70)
	assert.Len(t, *bs.tail, 5, "tail never shrinks")
}

func TestBitset_Replace(t *testing.T) {
	bs := New()
	bs.Set(3)
	bs.Set(1)
	bs.Set(7)

	assert.False(t, bs.Replace(2))
	assert.True(t, bs.Replace(2))
	assert.True(t, bs.Replace(2))

	assert.Equal(t, []int{1, 2, 3, 7}, collect(&bs))

	assert.False(t, bs.Replace(66000))
	assert.True(t, bs.Has(66000))
	assert.True(t, bs.Replace(66000))

	// a word that already exists but lacks the bit
	assert.False(t, bs.Replace(65990))
	assert.True(t, bs.Replace(65990))
}

func TestBitset_Clone(t *testing.T) {
	bs := New()
	bs.Set(3)
	bs.Set(6)
	bs.Set(1)
	bs.Set(6000)
	bs.Set(6)

	bs2 := bs.Clone()
	assert.Equal(t, collect(&bs), collect(&bs2))

	bs2.Set(2)
	bs2.Set(6001)
	assert.True(t, bs2.Has(2))
	assert.False(t, bs.Has(2))
	assert.False(t, bs.Has(6001))

	var empty Bitset
	c := empty.Clone()
	assert.Nil(t, c.tail)
}

func TestBitset_All(t *testing.T) {
	bs := New()
	bs.Set(3)
	bs.Set(6)
	bs.Set(1)
	bs.Set(6000)
	bs.Set(6)

	assert.Equal(t, []int{1, 3, 6, 6000}, collect(&bs))
	// restartable
	assert.Equal(t, []int{1, 3, 6, 6000}, collect(&bs))

	var got []int
	for bit := range bs.All() {
		got = append(got, bit)
		if bit == 3 {
			break
		}
	}
	assert.Equal(t, []int{1, 3}, got)

	var empty Bitset
	assert.Empty(t, collect(&empty))
}

func TestBitset_AllSkipsEmptyWords(t *testing.T) {
	bs := New()
	bs.Set(64 * 40)
	bs.Set(64*40 + 63)
	assert.Equal(t, []int{64 * 40, 64*40 + 63}, collect(&bs))
	assert.Equal(t, []int{64 * 40, 64*40 + 63}, bs.AppendTo(nil))
}

func TestBitset_Or(t *testing.T) {
	bs := New()
	bs.Set(3)
	bs.Set(6)
	bs.Set(1)
	bs.Set(6000)

	bs2 := New()
	bs2.Set(7)
	bs2.Set(7000)

	bs.Or(&bs2)

	assert.Equal(t, []int{1, 3, 6, 7, 6000, 7000}, collect(&bs))
	assert.Equal(t, []int{7, 7000}, collect(&bs2), "rhs must not change")
	assert.False(t, bs.Has(8000))
}

func TestBitset_OrLeavesLongerTailUntouched(t *testing.T) {
	a := New()
	a.Set(9000)
	b := New()
	b.Set(100)

	a.Or(&b)
	assert.Equal(t, []int{100, 9000}, collect(&a))
	assert.Len(t, *a.tail, 9000/64)
}

func TestBitset_OrEmpty(t *testing.T) {
	a := New()
	a.Set(5)
	var empty Bitset
	a.Or(&empty)
	assert.Equal(t, []int{5}, collect(&a))
	assert.Nil(t, a.tail)
}

func randomSet(rng *rand.Rand, n, universe int) (Bitset, map[int]bool) {
	b := New()
	ref := make(map[int]bool)
	for range n {
		bit := rng.Intn(universe)
		b.Set(bit)
		ref[bit] = true
	}
	return b, ref
}

func TestBitset_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(4711))

	for round := range 50 {
		b, ref := randomSet(rng, 1+rng.Intn(100), 1+rng.Intn(1000))

		want := make([]int, 0, len(ref))
		for bit := range ref {
			want = append(want, bit)
		}
		slices.Sort(want)

		require.Equal(t, want, collect(&b), "round %d", round)
		require.Equal(t, len(want), b.Len())
		for bit := range 1100 {
			require.Equal(t, ref[bit], b.Has(bit), "round %d bit %d", round, bit)
		}
	}
}

func TestBitset_OrIdempotentAndCommutative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for range 20 {
		base, _ := randomSet(rng, 20, 500)
		x, _ := randomSet(rng, 20, 500)
		y, _ := randomSet(rng, 20, 500)

		once := base.Clone()
		once.Or(&x)
		twice := base.Clone()
		twice.Or(&x)
		twice.Or(&x)
		assert.Equal(t, collect(&once), collect(&twice))

		xy := base.Clone()
		xy.Or(&x)
		xy.Or(&y)
		yx := base.Clone()
		yx.Or(&y)
		yx.Or(&x)
		assert.Equal(t, collect(&xy), collect(&yx))
	}
}

func TestBitset_String(t *testing.T) {
	bs := New()
	assert.Equal(t, "{}", bs.String())
	bs.Set(1)
	bs.Set(3)
	bs.Set(6000)
	assert.Equal(t, "{1 3 6000}", bs.String())
}

func BenchmarkBitset_SetHasInline(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var bs Bitset
		for bit := 0; bit < 40; bit += 3 {
			bs.Set(bit)
		}
		_ = bs.Has(i & 63)
	}
}

func BenchmarkBitset_Or(b *testing.B) {
	x := New()
	y := New()
	for bit := 0; bit < 300; bit += 7 {
		x.Set(bit)
		y.Set(bit + 1)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		z := x.Clone()
		z.Or(&y)
	}
}
