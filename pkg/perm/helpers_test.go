package perm

import "slices"

func seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

func factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// permutations returns every permutation of [0, n) using Heap's algorithm.
func permutations(n int) [][]int {
	if n <= 0 {
		return [][]int{{}}
	}
	p := seq(n)
	state := make([]int, n)
	result := [][]int{slices.Clone(p)}
	for i := 0; i < n; {
		if state[i] < i {
			if i&1 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[state[i]], p[i] = p[i], p[state[i]]
			}
			result = append(result, slices.Clone(p))
			state[i]++
			i = 0
		} else {
			state[i] = 0
			i++
		}
	}
	return result
}
