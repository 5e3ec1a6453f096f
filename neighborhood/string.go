// Package neighborhood implements the two deletion-neighborhood primitives
// used by the record hasher: StringNeighborhood (component C2, over UTF-8
// code points) and GroupNeighborhood (component C3, over a vector of
// group hashes).
package neighborhood

// StringNeighborhood returns the set of strings obtainable from s by
// deleting between 0 and d UTF-8 code points, inclusive. s itself (depth
// 0) is always a member. Recursion stops descending once the string
// being expanded is down to 2 code points or fewer — very short strings
// are not eroded further regardless of remaining budget.
func StringNeighborhood(s string, d int) map[string]struct{} {
	out := make(map[string]struct{})
	if d < 0 {
		d = 0
	}
	bestDepthSeen := make(map[string]int)
	expandString(s, d, bestDepthSeen, out)
	return out
}

func expandString(s string, d int, bestDepthSeen map[string]int, out map[string]struct{}) {
	out[s] = struct{}{}

	if prior, visited := bestDepthSeen[s]; visited && prior >= d {
		return
	}
	bestDepthSeen[s] = d

	if d == 0 {
		return
	}

	runes := []rune(s)
	if len(runes) <= 2 {
		return
	}

	for i := range runes {
		deleted := make([]rune, 0, len(runes)-1)
		deleted = append(deleted, runes[:i]...)
		deleted = append(deleted, runes[i+1:]...)
		expandString(string(deleted), d-1, bestDepthSeen, out)
	}
}
