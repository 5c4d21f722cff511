// Package manifest edits JSON project files such as package.json and
// .eslintrc.json without disturbing key order, so edited files produce
// minimal diffs.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/buger/jsonparser"

	"github.com/abdidvp/automigrate/internal/domain"
)

// FileName is the manifest file at the project root.
const FileName = "package.json"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is an editable JSON document. Edits splice the original bytes, so
// untouched members keep their exact layout.
type Document struct {
	data   []byte
	indent string
	bom    bool
	crlf   bool
}

// Parse wraps data for editing. A byte order mark and CRLF line endings are
// restored when the document is written back.
func Parse(data []byte) (*Document, error) {
	d := &Document{bom: bytes.HasPrefix(data, utf8BOM)}
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.Contains(data, []byte("\r\n")) {
		d.crlf = true
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	}
	if !json.Valid(data) {
		return nil, errors.New("not valid JSON")
	}
	d.data = clone(data)
	d.indent = detectIndent(data)
	return d, nil
}

// Load reads and parses the JSON file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Bytes renders the document with its original encoding details.
func (d *Document) Bytes() []byte {
	out := clone(d.data)
	if d.crlf {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n"))
	}
	if d.bom {
		out = append(clone(utf8BOM), out...)
	}
	return out
}

// Has reports whether the key path exists.
func (d *Document) Has(keys ...string) bool {
	_, dt, _, err := jsonparser.Get(d.data, keys...)
	return err == nil && dt != jsonparser.NotExist
}

// String returns the string at the key path.
func (d *Document) String(keys ...string) (string, bool) {
	v, err := jsonparser.GetString(d.data, keys...)
	if err != nil {
		return "", false
	}
	return v, true
}

// Strings returns the string elements of the array at the key path. A plain
// string value is returned as a one-element slice.
func (d *Document) Strings(keys ...string) []string {
	value, dt, _, err := jsonparser.Get(d.data, keys...)
	if err != nil {
		return nil
	}
	switch dt {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return nil
		}
		return []string{s}
	case jsonparser.Array:
		var out []string
		_, _ = jsonparser.ArrayEach(value, func(v []byte, t jsonparser.ValueType, _ int, _ error) {
			if t != jsonparser.String {
				return
			}
			if s, err := jsonparser.ParseString(v); err == nil {
				out = append(out, s)
			}
		})
		return out
	default:
		return nil
	}
}

// Entries returns the string-valued members of the object at the key path.
func (d *Document) Entries(keys ...string) map[string]string {
	out := map[string]string{}
	_ = jsonparser.ObjectEach(d.data, func(k, v []byte, t jsonparser.ValueType, _ int) error {
		if t != jsonparser.String {
			return nil
		}
		key, err := jsonparser.ParseString(k)
		if err != nil {
			return nil
		}
		val, err := jsonparser.ParseString(v)
		if err != nil {
			return nil
		}
		out[key] = val
		return nil
	}, keys...)
	return out
}

// Set stores any JSON-encodable value at the key path, creating parents.
// An existing value is replaced in place; a new member is appended to the
// deepest existing object on the path.
func (d *Document) Set(value any, keys ...string) error {
	if len(keys) == 0 {
		return errors.New("setting value: empty key path")
	}
	enc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %v: %w", keys, err)
	}

	if s, _, ok := d.valueSpan(keys...); ok {
		d.splice(s.start, s.end, d.format(enc, d.lineIndent(s.start), d.multiline(s)))
		return nil
	}

	depth := len(keys) - 1
	for ; depth >= 0; depth-- {
		if d.Has(keys[:depth]...) || depth == 0 {
			break
		}
	}
	parent, dt, ok := d.valueSpan(keys[:depth]...)
	if !ok || dt != jsonparser.Object {
		return fmt.Errorf("setting %v: parent is not an object", keys)
	}
	for i := len(keys) - 1; i > depth; i-- {
		key, _ := json.Marshal(keys[i])
		enc = append(append(append([]byte("{"), key...), ':'), append(enc, '}')...)
	}
	d.insertMember(parent, keys[depth], enc)
	return nil
}

// Delete removes the key path. Missing paths are ignored.
func (d *Document) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	parent, dt, ok := d.valueSpan(keys[:len(keys)-1]...)
	if !ok || dt != jsonparser.Object {
		return
	}
	name := keys[len(keys)-1]
	members := d.members(parent)
	for i, m := range members {
		if m.key != name {
			continue
		}
		switch {
		case len(members) == 1:
			d.splice(parent.start+1, parent.end-1, nil)
		case i < len(members)-1:
			d.splice(m.start, members[i+1].start, nil)
		default:
			d.splice(members[i-1].end, m.end, nil)
		}
		return
	}
}

// span is a half-open byte range of the document.
type span struct{ start, end int }

// member is one key/value pair of an object: start is the opening quote of
// the key, end is just past the value.
type member struct {
	key        string
	start, end int
}

// valueSpan locates the raw value at the key path. No keys means the root.
func (d *Document) valueSpan(keys ...string) (span, jsonparser.ValueType, bool) {
	value, dt, end, err := jsonparser.Get(d.data, keys...)
	if err != nil || dt == jsonparser.NotExist {
		return span{}, dt, false
	}
	n := len(value)
	if dt == jsonparser.String {
		n += 2
	}
	return span{start: end - n, end: end}, dt, true
}

func (d *Document) members(obj span) []member {
	var out []member
	raw := d.data[obj.start:obj.end]
	cursor := 1
	_ = jsonparser.ObjectEach(raw, func(k, _ []byte, _ jsonparser.ValueType, end int) error {
		start := cursor
		for start < len(raw) && (isSpace(raw[start]) || raw[start] == ',') {
			start++
		}
		key, err := jsonparser.ParseString(k)
		if err != nil {
			key = string(k)
		}
		out = append(out, member{key: key, start: obj.start + start, end: obj.start + end})
		cursor = end
		return nil
	})
	return out
}

// insertMember appends "key": enc to the object at obj, following the layout
// of its existing members.
func (d *Document) insertMember(obj span, key string, enc []byte) {
	name, _ := json.Marshal(key)
	members := d.members(obj)

	if len(members) > 0 {
		last := members[len(members)-1]
		if !d.multiline(obj) {
			d.splice(last.end, last.end, concat(", ", name, ": ", d.format(enc, "", false)))
			return
		}
		indent := d.lineIndent(last.start)
		d.splice(last.end, last.end, concat(",\n"+indent, name, ": ", d.format(enc, indent, true)))
		return
	}

	root, _, _ := d.valueSpan()
	if !d.multiline(root) {
		d.splice(obj.start+1, obj.end-1, concat("", name, ": ", d.format(enc, "", false)))
		return
	}
	outer := d.lineIndent(obj.start)
	indent := outer + d.indent
	d.splice(obj.start+1, obj.end-1, concat("\n"+indent, name, ": ", append(d.format(enc, indent, true), "\n"+outer...)))
}

// format renders an encoded value for insertion at a line indented with
// indent. Scalars are returned unchanged.
func (d *Document) format(enc []byte, indent string, multiline bool) []byte {
	if len(enc) == 0 || (enc[0] != '{' && enc[0] != '[') {
		return enc
	}
	if !multiline {
		return inline(enc)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, enc, indent, d.indent); err != nil {
		return enc
	}
	return buf.Bytes()
}

func (d *Document) multiline(s span) bool {
	return bytes.IndexByte(d.data[s.start:s.end], '\n') >= 0
}

// lineIndent returns the leading whitespace of the line holding pos.
func (d *Document) lineIndent(pos int) string {
	lineStart := bytes.LastIndexByte(d.data[:pos], '\n') + 1
	end := lineStart
	for end < pos && (d.data[end] == ' ' || d.data[end] == '\t') {
		end++
	}
	return string(d.data[lineStart:end])
}

func (d *Document) splice(start, end int, text []byte) {
	out := make([]byte, 0, len(d.data)-(end-start)+len(text))
	out = append(out, d.data[:start]...)
	out = append(out, text...)
	d.data = append(out, d.data[end:]...)
}

// inline spaces out compact JSON the way hand-written one-line arrays and
// objects usually are: ["a", "b"], {"k": "v"}.
func inline(enc []byte) []byte {
	var out []byte
	inString, escaped := false, false
	for _, c := range enc {
		out = append(out, c)
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			out = append(out, ' ')
		}
	}
	return out
}

func concat(prefix string, name []byte, sep string, value []byte) []byte {
	out := append([]byte(prefix), name...)
	out = append(out, sep...)
	return append(out, value...)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Section names in package.json.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
	SectionScripts         = "scripts"
)

// DependencyVersion returns the declared range of name from either section.
func (d *Document) DependencyVersion(name string) (string, bool) {
	if v, ok := d.String(SectionDependencies, name); ok {
		return v, true
	}
	return d.String(SectionDevDependencies, name)
}

// HasDependency reports whether name is declared in either section.
func (d *Document) HasDependency(name string) bool {
	_, ok := d.DependencyVersion(name)
	return ok
}

// AddDevDependency declares name in devDependencies unless it is already
// declared anywhere.
func (d *Document) AddDevDependency(name, version string) error {
	if d.HasDependency(name) {
		return nil
	}
	return d.Set(version, SectionDevDependencies, name)
}

// RemoveDependency removes name from both sections.
func (d *Document) RemoveDependency(name string) {
	d.Delete(SectionDependencies, name)
	d.Delete(SectionDevDependencies, name)
}

// SectionAutomigrate holds the tool's own bookkeeping in package.json.
const SectionAutomigrate = "automigrate"

// Acknowledge records fixID as a manual follow-up the user has handled.
func (d *Document) Acknowledge(fixID string) error {
	ids := d.Strings(SectionAutomigrate, "acknowledged")
	for _, id := range ids {
		if id == fixID {
			return nil
		}
	}
	return d.Set(append(ids, fixID), SectionAutomigrate, "acknowledged")
}

// Scripts returns the scripts section.
func (d *Document) Scripts() map[string]string {
	return d.Entries(SectionScripts)
}

// Manifest decodes the document into the domain model.
func (d *Document) Manifest() (domain.Manifest, error) {
	var m domain.Manifest
	if err := json.Unmarshal(d.data, &m); err != nil {
		return domain.Manifest{}, err
	}
	return m, nil
}

// detectIndent returns the leading whitespace of the first indented line,
// defaulting to two spaces.
func detectIndent(data []byte) string {
	for _, line := range bytes.Split(data, []byte("\n"))[1:] {
		trimmed := bytes.TrimLeft(line, " \t")
		if len(trimmed) == 0 || len(trimmed) == len(line) {
			continue
		}
		return string(line[:len(line)-len(trimmed)])
	}
	return "  "
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
