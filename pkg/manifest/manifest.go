// Package manifest holds the edit callbacks that merge a new component
// into an existing project: its sections into the application manifest
// and its crate into the Cargo workspace. Both edit the existing text in
// place so formatting and comments survive.
package manifest

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ormasoftchile/scaff/pkg/plugin"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// DefaultTemplate is the content path of the manifest a new project gets.
const DefaultTemplate = "spin.toml.tmpl"

// DefaultKeep lists the top-level tables a component contributes.
var DefaultKeep = []string{"trigger", "component"}

// AppendSections renders the template's own manifest as if the project
// were new, keeps only the component's tables and appends them to the
// existing manifest text.
type AppendSections struct {
	Template string   // content path of the manifest template
	Keep     []string // top-level keys to retain
}

var _ plugin.Edit = AppendSections{}

func (a AppendSections) Apply(ctx context.Context, rt plugin.Runtime, text string, ec plugin.Handle) (string, error) {
	name := a.Template
	if name == "" {
		name = DefaultTemplate
	}
	keep := a.Keep
	if keep == nil {
		keep = DefaultKeep
	}

	tmpl, err := readContent(ctx, rt, name)
	if err != nil {
		return "", err
	}
	rendered, err := rt.EvaluateTemplate(ctx, ec, tmpl)
	if err != nil {
		return "", err
	}

	block, err := retainSections(rendered, keep)
	if err != nil {
		return "", plugin.Otherf("rendered %s: %v", name, err)
	}
	if block == "" {
		return text, nil
	}
	// applying the same component twice must not duplicate it
	if strings.Contains(text, block) {
		return text, nil
	}
	return text + "\n" + block, nil
}

// expression is one top-level TOML expression located in the source.
type expression struct {
	kind   unstable.Kind
	keys   []string
	start  int // start of the expression's line
	keyEnd int // end of the last key part
}

// retainSections returns the parts of doc whose top-level key is in keep.
// Table sections are copied verbatim in document order. Root dotted keys
// are rewritten under a table header so the block can follow any table of
// the document it is appended to. When the copied text does not decode to
// the same values as the kept subset of doc, the subset is marshalled
// instead.
func retainSections(doc string, keep []string) (string, error) {
	var full map[string]any
	if err := toml.Unmarshal([]byte(doc), &full); err != nil {
		return "", err
	}
	subset := make(map[string]any)
	for _, k := range keep {
		if v, ok := full[k]; ok {
			subset[k] = v
		}
	}
	if len(subset) == 0 {
		return "", nil
	}

	exprs, err := expressions(doc)
	if err != nil {
		return "", err
	}

	var (
		tables      strings.Builder
		roots       = map[string]*strings.Builder{}
		order       []string
		inTable     bool
		keeping     bool
		needMarshal bool
	)
	for i, e := range exprs {
		end := len(doc)
		if i+1 < len(exprs) {
			end = exprs[i+1].start
		}
		switch {
		case e.kind == unstable.Table || e.kind == unstable.ArrayTable:
			inTable = true
			keeping = contains(keep, e.keys[0])
			if keeping {
				tables.WriteString(doc[e.start:end])
			}
		case inTable:
			if keeping {
				tables.WriteString(doc[e.start:end])
			}
		case contains(keep, e.keys[0]):
			if len(e.keys) < 2 {
				// a whole top-level table assigned inline has no header form
				needMarshal = true
				continue
			}
			header := joinKey(e.keys[:len(e.keys)-1])
			b, ok := roots[header]
			if !ok {
				b = &strings.Builder{}
				roots[header] = b
				order = append(order, header)
			}
			value := strings.TrimSpace(doc[e.keyEnd:end])
			fmt.Fprintf(b, "%s %s\n", bareOrQuoted(e.keys[len(e.keys)-1]), value)
		}
	}

	var out strings.Builder
	for _, h := range order {
		fmt.Fprintf(&out, "[%s]\n%s\n", h, roots[h].String())
	}
	out.WriteString(tables.String())
	block := strings.TrimRight(out.String(), " \t\r\n") + "\n"

	if !needMarshal {
		var check map[string]any
		if toml.Unmarshal([]byte(block), &check) == nil && reflect.DeepEqual(check, subset) {
			return block, nil
		}
	}
	data, err := toml.Marshal(subset)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// expressions lists the table headers and key/value pairs of doc.
func expressions(doc string) ([]expression, error) {
	var (
		p   unstable.Parser
		out []expression
	)
	p.Reset([]byte(doc))
	for p.NextExpression() {
		n := p.Expression()
		if n.Kind != unstable.Table && n.Kind != unstable.ArrayTable && n.Kind != unstable.KeyValue {
			continue
		}
		e := expression{kind: n.Kind}
		it := n.Key()
		for it.Next() {
			k := it.Node()
			if len(e.keys) == 0 {
				off := int(k.Raw.Offset)
				e.start = strings.LastIndexByte(doc[:off], '\n') + 1
			}
			e.keys = append(e.keys, string(k.Data))
			e.keyEnd = int(k.Raw.Offset + k.Raw.Length)
		}
		if len(e.keys) == 0 {
			continue
		}
		out = append(out, e)
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func joinKey(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = bareOrQuoted(p)
	}
	return strings.Join(quoted, ".")
}

func bareOrQuoted(key string) string {
	if key == "" {
		return `""`
	}
	for _, r := range key {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return quote(key)
		}
	}
	return key
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// readContent finds path in the template content tree and reads it. Every
// handle ListFiles returns is dropped.
func readContent(ctx context.Context, caps plugin.Capabilities, path string) (string, error) {
	files, err := caps.ListFiles(ctx)
	if err != nil {
		return "", err
	}

	var (
		text     string
		found    bool
		firstErr error
	)
	for _, f := range files {
		if firstErr == nil && !found {
			p, err := caps.FilePath(ctx, f)
			switch {
			case err != nil:
				firstErr = err
			case p == path:
				found = true
				text, firstErr = caps.ReadFile(ctx, f)
			}
		}
		if err := caps.DropFile(ctx, f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	if !found {
		return "", plugin.Otherf("%s not found", path)
	}
	return text, nil
}

// DefaultMember renders the new crate's directory name.
const DefaultMember = "{{ .project_name | kebab_case }}"

// AppendMember adds the new project to an array field of the existing
// document, workspace.members by default.
type AppendMember struct {
	Table  string // default "workspace"
	Field  string // default "members"
	Member string // template for the new entry
}

var _ plugin.Edit = AppendMember{}

func (a AppendMember) Apply(ctx context.Context, rt plugin.Runtime, text string, ec plugin.Handle) (string, error) {
	table, field, member := a.Table, a.Field, a.Member
	if table == "" {
		table = "workspace"
	}
	if field == "" {
		field = "members"
	}
	if member == "" {
		member = DefaultMember
	}

	var doc map[string]any
	if err := toml.Unmarshal([]byte(text), &doc); err != nil {
		return "", plugin.Otherf("parse existing document: %v", err)
	}
	members, ok := arrayField(doc, table, field)
	if !ok {
		return "", plugin.Otherf("existing Cargo.toml doesn't have a %s.%s", table, field)
	}

	name, err := rt.EvaluateTemplate(ctx, ec, member)
	if err != nil {
		return "", err
	}
	want := append(append([]any(nil), members...), name)

	if out, ok := insertArrayElement(text, table, field, quote(name)); ok {
		var check map[string]any
		if toml.Unmarshal([]byte(out), &check) == nil {
			if got, ok := arrayField(check, table, field); ok && reflect.DeepEqual(got, want) {
				return out, nil
			}
		}
	}

	// the array is laid out in a way the in-place edit cannot follow
	doc[table].(map[string]any)[field] = want
	out, err := toml.Marshal(doc)
	if err != nil {
		return "", plugin.Otherf("marshal document: %v", err)
	}
	return string(out), nil
}

func arrayField(doc map[string]any, table, field string) ([]any, bool) {
	t, ok := doc[table].(map[string]any)
	if !ok {
		return nil, false
	}
	arr, ok := t[field].([]any)
	return arr, ok
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// insertArrayElement appends elem to the array assigned to field inside
// [table], editing the text in place.
func insertArrayElement(text, table, field, elem string) (string, bool) {
	start, ok := fieldOffset(text, table, field)
	if !ok {
		return "", false
	}
	eq := strings.IndexByte(text[start:], '=')
	if eq < 0 {
		return "", false
	}
	open := strings.IndexByte(text[start+eq:], '[')
	if open < 0 {
		return "", false
	}
	open += start + eq

	closeIdx, last, ok := scanArray(text, open)
	if !ok {
		return "", false
	}

	if last < 0 {
		// empty array
		return text[:open+1] + elem + text[closeIdx:], true
	}

	body := text[open+1 : closeIdx]
	if !strings.Contains(body, "\n") {
		sep := ", "
		if text[last] == ',' {
			sep = " "
		}
		return text[:last+1] + sep + elem + text[last+1:], true
	}

	// multi-line array: new element on its own line, indented like the last
	lineStart := strings.LastIndexByte(text[:last], '\n') + 1
	indent := text[lineStart:last]
	indent = indent[:len(indent)-len(strings.TrimLeft(indent, " \t"))]
	if text[last] == ',' {
		return text[:last+1] + "\n" + indent + elem + "," + text[last+1:], true
	}
	return text[:last+1] + ",\n" + indent + elem + text[last+1:], true
}

// fieldOffset finds the line assigning field directly inside [table].
func fieldOffset(text, table, field string) (int, bool) {
	inTable := false
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		s := strings.TrimSpace(line)
		if strings.HasPrefix(s, "[") {
			name := strings.TrimSpace(strings.Trim(stripComment(s), "[] \t"))
			inTable = !strings.HasPrefix(s, "[[") && name == table
		} else if inTable && strings.HasPrefix(s, field) {
			rest := strings.TrimSpace(s[len(field):])
			if strings.HasPrefix(rest, "=") {
				return offset, true
			}
		}
		offset += len(line)
	}
	return 0, false
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// scanArray walks the array opening at text[open] and returns the index of
// its closing bracket and of its last significant character (-1 if the
// array is empty). Strings and comments are skipped.
func scanArray(text string, open int) (closeIdx, last int, ok bool) {
	depth := 0
	last = -1
	for i := open; i < len(text); i++ {
		c := text[i]
		switch c {
		case '#':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return 0, 0, false
			}
			i += nl
			continue
		case '"', '\'':
			end, ok := skipString(text, i)
			if !ok {
				return 0, 0, false
			}
			i = end
			last = end
			continue
		case '[':
			depth++
			if i == open {
				continue
			}
		case ']':
			depth--
			if depth == 0 {
				return i, last, true
			}
		case ' ', '\t', '\r', '\n':
			continue
		}
		last = i
	}
	return 0, 0, false
}

// skipString returns the index of the quote closing the string at
// text[start]. Multi-line strings are not supported.
func skipString(text string, start int) (int, bool) {
	q := text[start]
	if strings.HasPrefix(text[start:], strings.Repeat(string(q), 3)) {
		return 0, false
	}
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			if q == '"' {
				i++
			}
		case q:
			return i, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}
