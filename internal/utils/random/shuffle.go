package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Intn returns a uniform integer in [0, n) from crypto/rand.
func Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return int(v.Int64()), nil
}

// Sample draws k distinct elements of src uniformly without replacement using a
// partial Fisher-Yates pass over a copy. src is not modified. The order of the
// result carries no meaning.
func Sample[T any](src []T, k int) ([]T, error) {
	if k < 0 || k > len(src) {
		return nil, fmt.Errorf("cannot sample %d of %d elements", k, len(src))
	}
	buf := make([]T, len(src))
	copy(buf, src)
	return partialShuffle(buf, k)
}

// partialShuffle fixes the first k positions of s with uniformly chosen elements.
func partialShuffle[T any](s []T, k int) ([]T, error) {
	n := len(s)
	for i := 0; i < k && i < n-1; i++ {
		j, err := Intn(n - i)
		if err != nil {
			return nil, err
		}
		j += i
		s[i], s[j] = s[j], s[i]
	}
	return s[:k], nil
}
