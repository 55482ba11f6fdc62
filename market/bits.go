package market

// Bitset marks grid rows, one bit per row.
type Bitset []uint64

func newBitset(n int) Bitset {
	return make(Bitset, (n+63)/64)
}

// Has reports whether bit i is set.
func (b Bitset) Has(i int) bool {
	if i>>6 >= len(b) {
		return false
	}
	return (b[i>>6] & (uint64(1) << uint(i&63))) != 0
}

func (b Bitset) set(i int) {
	b[i>>6] |= uint64(1) << uint(i&63)
}

// Count returns the number of set bits below n.
func (b Bitset) Count(n int) int {
	c := 0
	for i := 0; i < n; i++ {
		if b.Has(i) {
			c++
		}
	}
	return c
}
