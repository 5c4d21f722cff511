package mainconfig

import (
	"regexp"
	"sort"
	"strings"
)

// WrapPackageNames wraps the framework name and every addon name in a call to
// fn, turning '@storybook/react-vite' into fn('@storybook/react-vite').
// Literals that already sit inside a call are left alone. It reports whether
// anything changed.
func WrapPackageNames(src, fn string) (string, bool) {
	var spans [][2]int
	if _, s, e, ok := firstMatch(src, frameworkObject, frameworkString); ok && !wrapped(src, s) {
		spans = append(spans, [2]int{s - 1, e + 1})
	}
	if open, end, ok := addonsSpan(src); ok {
		base := open + 1
		for _, el := range elementSpans(src[base:end]) {
			text := src[base+el[0] : base+el[1]]
			re := anyLiteral
			if strings.HasPrefix(text, "{") {
				re = nameProperty
			} else if !isQuote(text[0]) {
				continue
			}
			if _, s, e, ok := match(re, text); ok && !wrapped(text, s) {
				spans = append(spans, [2]int{base + el[0] + s - 1, base + el[0] + e + 1})
			}
		}
	}
	if len(spans) == 0 {
		return src, false
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] > spans[j][0] })
	out := src
	for _, sp := range spans {
		out = out[:sp[0]] + fn + "(" + out[sp[0]:sp[1]] + ")" + out[sp[1]:]
	}
	return out, true
}

// wrapped reports whether the literal whose content starts at s is the
// argument of a call.
func wrapped(src string, s int) bool {
	i := s - 2
	for i >= 0 && isBlank(src[i]) {
		i--
	}
	return i >= 0 && src[i] == '('
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

var (
	importStart  = regexp.MustCompile(`^import\b`)
	requireLine  = regexp.MustCompile(`^(?:const|let|var)\s[^=]+=\s*require\(`)
	importSource = regexp.MustCompile(`\bfrom\s*['"]|^import\s*['"]`)
)

// InsertAfterImports puts text on its own line after the last import or
// top-level require at the head of the file. Without one, text goes first.
func InsertAfterImports(src, text string) string {
	lines := strings.SplitAfter(src, "\n")
	insert := 0
	pos := 0
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		pos += len(lines[i])
		switch {
		case importStart.MatchString(line):
			// Multi-line imports end at the line naming the module.
			for !importSource.MatchString(line) && i+1 < len(lines) {
				i++
				line = strings.TrimSpace(lines[i])
				pos += len(lines[i])
			}
			insert = pos
		case requireLine.MatchString(line):
			insert = pos
		case line == "", strings.HasPrefix(line, "//"), strings.HasPrefix(line, "/*"), strings.HasPrefix(line, "*"),
			line == "'use strict';", line == `"use strict";`:
		default:
			i = len(lines)
		}
	}

	if insert == 0 {
		return text + "\n\n" + src
	}
	head := src[:insert]
	if !strings.HasSuffix(head, "\n") {
		head += "\n"
	}
	return head + "\n" + text + "\n" + src[insert:]
}

// ImportsModule reports whether src imports or requires any of the modules.
func ImportsModule(src string, modules ...string) bool {
	for _, m := range modules {
		re := regexp.MustCompile(`(?:\bfrom\s*|\brequire\(\s*|^import\s*)['"]` + regexp.QuoteMeta(m) + `['"]`)
		for _, line := range strings.Split(src, "\n") {
			if re.MatchString(strings.TrimSpace(line)) {
				return true
			}
		}
	}
	return false
}

// Declares reports whether src defines a top-level function or binding called
// name.
func Declares(src, name string) bool {
	re := regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:function\s+|(?:const|let|var)\s+)` + regexp.QuoteMeta(name) + `\b`)
	return re.MatchString(src)
}
