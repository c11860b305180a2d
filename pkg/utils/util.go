package utils

// Max returns the larger of two ints.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of two ints.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CloneInts returns an independent copy of an int slice.
func CloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

// CloneIntMatrix returns a deep copy of a slice of int slices.
func CloneIntMatrix(m [][]int) [][]int {
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = CloneInts(row)
	}
	return out
}

// Factorial computes n! for small n; callers guard against overflow.
func Factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
