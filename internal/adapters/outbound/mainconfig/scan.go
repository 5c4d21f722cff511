package mainconfig

import "strings"

// matchingBracket returns the index of the bracket closing the one at open.
// String literals and comments are skipped. It returns -1 when unbalanced.
func matchingBracket(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '\'', '"', '`':
			i = skipString(src, i)
		case '/':
			if j := skipComment(src, i); j > i {
				i = j
			}
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits an array body on commas that are not nested inside
// brackets or strings. Comments are dropped.
func splitTopLevel(body string) []string {
	var (
		parts []string
		cur   strings.Builder
		depth int
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '\'', '"', '`':
			j := skipString(body, i)
			cur.WriteString(body[i : j+1])
			i = j
			continue
		case '/':
			if j := skipComment(body, i); j > i {
				i = j
				continue
			}
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	if strings.TrimSpace(cur.String()) != "" {
		parts = append(parts, cur.String())
	}
	return parts
}

// elementSpans returns the offsets of the top-level elements of an array
// body, with surrounding whitespace trimmed. Empty elements are dropped.
func elementSpans(body string) [][2]int {
	var (
		spans [][2]int
		start int
		depth int
	)
	add := func(end int) {
		s, e := start, end
		for s < e {
			if isBlank(body[s]) {
				s++
			} else if j := skipComment(body, s); j > s {
				s = j + 1
			} else {
				break
			}
		}
		for e > s && isBlank(body[e-1]) {
			e--
		}
		if s < e {
			spans = append(spans, [2]int{s, e})
		}
	}
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\'', '"', '`':
			i = skipString(body, i)
		case '/':
			if j := skipComment(body, i); j > i {
				i = j
			}
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		case ',':
			if depth == 0 {
				add(i)
				start = i + 1
			}
		}
	}
	add(len(body))
	return spans
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skipString returns the index of the quote closing the literal at i.
func skipString(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case q:
			return j
		}
	}
	return len(src) - 1
}

// skipComment returns the last index of the comment starting at i, or i when
// there is no comment there.
func skipComment(src string, i int) int {
	if i+1 >= len(src) {
		return i
	}
	switch src[i+1] {
	case '/':
		if j := strings.IndexByte(src[i:], '\n'); j >= 0 {
			return i + j - 1
		}
		return len(src) - 1
	case '*':
		if j := strings.Index(src[i+2:], "*/"); j >= 0 {
			return i + 2 + j + 1
		}
		return len(src) - 1
	}
	return i
}
