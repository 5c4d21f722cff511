// Package mainconfig reads and edits the main configuration file of a
// Storybook project (.storybook/main.js and friends).
//
// The file is JavaScript or TypeScript. Only the handful of literal shapes
// the fixes rely on are recognised; anything more dynamic is reported as not
// found so callers can fall back to a manual step.
package mainconfig

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/abdidvp/automigrate/internal/adapters/outbound/fsutil"
)

// Extensions are tried in order when looking for main.<ext>.
var Extensions = []string{".js", ".cjs", ".mjs", ".ts", ".cts", ".mts"}

// Find returns the main config file inside dir.
func Find(dir string) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, "main"+ext)
		if fsutil.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// FindPreview returns the preview file inside dir.
func FindPreview(dir string) (string, bool) {
	for _, ext := range append(append([]string{}, Extensions...), ".jsx", ".tsx") {
		p := filepath.Join(dir, "preview"+ext)
		if fsutil.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// A string literal in any of the three JS quote styles, optionally wrapped in
// a single call such as getAbsolutePath('x') or require.resolve("x").
const literal = `(?:[\w.$]+\(\s*)?(?:'([^'\n]*)'|"([^"\n]*)"|` + "`([^`\\n]*)`" + `)`

func propertyRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + name + `\s*:\s*` + literal)
}

func objectNameRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + name + `\s*:\s*\{[^{}]*?\bname\s*:\s*` + literal)
}

var (
	frameworkString = propertyRe("framework")
	frameworkObject = objectNameRe("framework")
	builderString   = propertyRe("builder")
	builderObject   = objectNameRe("builder")
	nameProperty    = regexp.MustCompile(`\bname\s*:\s*` + literal)
	anyLiteral      = regexp.MustCompile(literal)
	addonsOpen      = regexp.MustCompile(`\baddons\s*:\s*\[`)
	docsPageRe      = regexp.MustCompile(`\bdocsPage(\s*:\s*)(?:true|'automatic'|"automatic")`)
	builderLineRe   = regexp.MustCompile(`(?m)^[ \t]*builder\s*:\s*` + literal + `[ \t]*,?[ \t]*\r?\n`)
	builderInlineRe = regexp.MustCompile(`\bbuilder\s*:\s*` + literal + `\s*,?\s*`)
)

// match locates the literal captured by re. The returned span covers the
// literal's content without its quotes.
func match(re *regexp.Regexp, src string) (value string, start, end int, ok bool) {
	m := re.FindStringSubmatchIndex(src)
	if m == nil {
		return "", 0, 0, false
	}
	for g := 1; g <= 3; g++ {
		if m[2*g] >= 0 {
			start, end = m[2*g], m[2*g+1]
			return src[start:end], start, end, true
		}
	}
	return "", 0, 0, false
}

func firstMatch(src string, res ...*regexp.Regexp) (string, int, int, bool) {
	for _, re := range res {
		if v, s, e, ok := match(re, src); ok {
			return v, s, e, true
		}
	}
	return "", 0, 0, false
}

// FrameworkName returns the framework package, from either
// `framework: 'x'` or `framework: { name: 'x' }`.
func FrameworkName(src string) string {
	v, _, _, _ := firstMatch(src, frameworkObject, frameworkString)
	return v
}

// SetFramework replaces the framework package name in place.
func SetFramework(src, name string) (string, bool) {
	v, s, e, ok := firstMatch(src, frameworkObject, frameworkString)
	if !ok || v == name {
		return src, false
	}
	return src[:s] + name + src[e:], true
}

// Builder returns the configured builder, from `builder: 'x'` or
// `builder: { name: 'x' }`.
func Builder(src string) string {
	v, _, _, _ := firstMatch(src, builderObject, builderString)
	return v
}

// RemoveBuilder deletes a string-valued builder property. The object form is
// left alone and reported as unchanged.
func RemoveBuilder(src string) (string, bool) {
	if builderObject.MatchString(src) {
		return src, false
	}
	if loc := builderLineRe.FindStringIndex(src); loc != nil {
		return src[:loc[0]] + src[loc[1]:], true
	}
	if loc := builderInlineRe.FindStringIndex(src); loc != nil {
		return src[:loc[0]] + src[loc[1]:], true
	}
	return src, false
}

// ReplacePropertyValue rewrites `prop: 'from'` to `prop: 'to'`, keeping the
// quote style.
func ReplacePropertyValue(src, prop, from, to string) (string, bool) {
	v, s, e, ok := match(propertyRe(regexp.QuoteMeta(prop)), src)
	if !ok || v != from {
		return src, false
	}
	return src[:s] + to + src[e:], true
}

// ReplaceLiteral rewrites every string literal equal to from, in any quote
// style, to to.
func ReplaceLiteral(src, from, to string) (string, bool) {
	out := src
	for _, q := range []string{"'", `"`, "`"} {
		out = strings.ReplaceAll(out, q+from+q, q+to+q)
	}
	return out, out != src
}

// HasDocsPage reports whether the legacy docsPage option is set.
func HasDocsPage(src string) bool {
	return docsPageRe.MatchString(src)
}

// ReplaceDocsPage rewrites `docsPage: true` and `docsPage: 'automatic'` to
// `autodocs: true`.
func ReplaceDocsPage(src string) (string, bool) {
	out := docsPageRe.ReplaceAllString(src, "autodocs${1}true")
	return out, out != src
}

// Addons returns the addon package names registered in the addons array.
// Object entries contribute their name property.
func Addons(src string) []string {
	open, end, ok := addonsSpan(src)
	if !ok {
		return nil
	}
	var out []string
	for _, el := range splitTopLevel(src[open+1 : end]) {
		el = strings.TrimSpace(el)
		if el == "" {
			continue
		}
		re := anyLiteral
		if strings.HasPrefix(el, "{") {
			re = nameProperty
		}
		if v, _, _, ok := match(re, el); ok {
			out = append(out, v)
		}
	}
	return out
}

// HasAddonsArray reports whether an addons array literal exists.
func HasAddonsArray(src string) bool {
	_, _, ok := addonsSpan(src)
	return ok
}

// AddAddon appends addon to the addons array, following the quote style and
// layout of the existing entries. It reports false when the addon is already
// present or there is no addons array to extend.
func AddAddon(src, addon string) (string, bool) {
	for _, a := range Addons(src) {
		if a == addon {
			return src, false
		}
	}
	open, end, ok := addonsSpan(src)
	if !ok {
		return src, false
	}
	body := src[open+1 : end]
	q := QuoteStyle(body)
	if q == "" {
		q = QuoteStyle(src)
	}
	if q == "" {
		q = "'"
	}
	lit := q + addon + q

	if strings.TrimSpace(body) == "" {
		return src[:open+1] + lit + src[end:], true
	}

	// Insert right after the last element.
	last := open + 1 + len(strings.TrimRight(body, " \t\r\n"))
	trailingComma := src[last-1] == ','

	if !strings.Contains(body, "\n") {
		if trailingComma {
			return src[:last] + " " + lit + "," + src[last:], true
		}
		return src[:last] + ", " + lit + src[last:], true
	}

	indent := elementIndent(body)
	if trailingComma {
		return src[:last] + "\n" + indent + lit + "," + src[last:], true
	}
	return src[:last] + ",\n" + indent + lit + src[last:], true
}

// QuoteStyle returns the quote character of the first string literal in src,
// or "" when there is none.
func QuoteStyle(src string) string {
	m := anyLiteral.FindStringSubmatchIndex(src)
	if m == nil {
		return ""
	}
	switch {
	case m[2] >= 0:
		return "'"
	case m[4] >= 0:
		return `"`
	default:
		return "`"
	}
}

func addonsSpan(src string) (open, end int, ok bool) {
	loc := addonsOpen.FindStringIndex(src)
	if loc == nil {
		return 0, 0, false
	}
	open = loc[1] - 1
	end = matchingBracket(src, open)
	if end < 0 {
		return 0, 0, false
	}
	return open, end, true
}

// elementIndent returns the indentation of the first element of a multiline
// array body.
func elementIndent(body string) string {
	for _, line := range strings.Split(body, "\n")[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		return line[:len(line)-len(trimmed)]
	}
	return "  "
}
