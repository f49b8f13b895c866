package perm

// Positions maps each id to its index in ids.
func Positions(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}

// Cycles returns the number of cycles of the permutation p, counting fixed
// points as cycles of length one.
func Cycles(p []int) int {
	visited := make([]bool, len(p))
	cycles := 0
	for i := range p {
		if visited[i] {
			continue
		}
		cycles++
		for j := i; !visited[j]; j = p[j] {
			visited[j] = true
		}
	}
	return cycles
}
