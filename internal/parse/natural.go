package parse

import "unicode"

// NaturalLess compares two display names so that embedded numbers order
// numerically: "Bay 2" sorts before "Bay 10". Comparison is case-sensitive
// outside digit runs, which matches how the resource names arrive.
func NaturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			ia, na := digitRun(ra, i)
			jb, nb := digitRun(rb, j)
			if na != nb {
				return na < nb
			}
			i, j = ia, jb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}

// digitRun consumes a run of digits starting at i and returns the index past
// the run and the run's numeric value.
func digitRun(r []rune, i int) (int, int64) {
	var n int64
	for i < len(r) && unicode.IsDigit(r[i]) {
		n = n*10 + int64(r[i]-'0')
		i++
	}
	return i, n
}
