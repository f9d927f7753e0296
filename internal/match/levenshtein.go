// Package match implements edit-distance based string similarity, the shared
// primitive behind wake-word detection and command recall.
package match

// Distance returns the classic Levenshtein distance between a and b with unit
// cost per insert, delete and substitute.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	dp := make([][]int, len(ra)+1)
	for i := range dp {
		dp[i] = make([]int, len(rb)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = minOf(
				dp[i-1][j]+1,      // deletion
				dp[i][j-1]+1,      // insertion
				dp[i-1][j-1]+cost, // substitution
			)
		}
	}

	return dp[len(ra)][len(rb)]
}

// Score returns a normalized similarity in [0,1]: 1 minus the edit distance
// relative to the longer input. Two empty strings score 1.0 by convention.
func Score(a, b string) float64 {
	maxLen := len([]rune(a))
	if lb := len([]rune(b)); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(maxLen)
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
