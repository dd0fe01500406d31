package templates

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/plumelog/plume/core"
)

// Template is a parsed message template. Placeholders are either named
// ({method}) or positional ({}); the two may be mixed, and slots are bound
// to call arguments strictly in declaration order.
type Template struct {
	Raw string

	// Tokens is the full token sequence, literal text interleaved with
	// placeholders.
	Tokens []Token

	// Placeholders indexes the placeholder tokens in declaration order.
	Placeholders []*Placeholder
}

// Token is one element of a parsed template.
type Token interface {
	isToken()
}

// Text is a literal text token.
type Text struct {
	Value string
}

func (Text) isToken() {}

// Placeholder is a substitution slot. Name is empty for positional slots.
type Placeholder struct {
	Name string
	// Slot is the argument index the placeholder binds to.
	Slot int
}

func (*Placeholder) isToken() {}

// Parse parses a template string. It fails on an unterminated placeholder,
// an invalid placeholder name, or a named placeholder that repeats.
// "{{" and "}}" escape literal braces.
func Parse(raw string) (*Template, error) {
	t := &Template{Raw: raw}
	var text strings.Builder
	seen := map[string]bool{}
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				text.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q: unterminated placeholder at index %d", raw, i)
			}
			name := raw[i+1 : i+1+end]
			if name != "" && !validName(name) {
				return nil, fmt.Errorf("template %q: invalid placeholder name %q", raw, name)
			}
			if name != "" {
				if seen[name] {
					return nil, fmt.Errorf("template %q: duplicate placeholder name %q", raw, name)
				}
				seen[name] = true
			}
			if text.Len() > 0 {
				t.Tokens = append(t.Tokens, Text{Value: text.String()})
				text.Reset()
			}
			ph := &Placeholder{Name: name, Slot: len(t.Placeholders)}
			t.Tokens = append(t.Tokens, ph)
			t.Placeholders = append(t.Placeholders, ph)
			i += end + 2
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				text.WriteByte('}')
				i += 2
				continue
			}
			return nil, fmt.Errorf("template %q: unmatched '}' at index %d", raw, i)
		default:
			text.WriteByte(raw[i])
			i++
		}
	}
	if text.Len() > 0 {
		t.Tokens = append(t.Tokens, Text{Value: text.String()})
	}
	return t, nil
}

// Bind validates the argument count against the template and converts the
// arguments into slots in declaration order. The returned slice is freshly
// allocated and safe to hand across goroutines.
func (t *Template) Bind(args ...any) ([]core.Arg, error) {
	if len(args) != len(t.Placeholders) {
		return nil, fmt.Errorf("template %q: %d placeholder(s) but %d argument(s)",
			t.Raw, len(t.Placeholders), len(args))
	}
	if len(args) == 0 {
		return nil, nil
	}
	bound := make([]core.Arg, len(args))
	for i, ph := range t.Placeholders {
		bound[i] = core.Arg{Name: ph.Name, Value: core.ValueOf(args[i])}
	}
	return bound, nil
}

// Render substitutes the bound slots into the template and appends the
// result to dst.
func (t *Template) Render(dst []byte, args []core.Arg) []byte {
	for _, tok := range t.Tokens {
		switch tk := tok.(type) {
		case Text:
			dst = append(dst, tk.Value...)
		case *Placeholder:
			if tk.Slot < len(args) {
				dst = args[tk.Slot].Value.Append(dst)
			}
		}
	}
	return dst
}

// HasNamed reports whether the template declares any named placeholder.
func (t *Template) HasNamed() bool {
	for _, ph := range t.Placeholders {
		if ph.Name != "" {
			return true
		}
	}
	return false
}

func validName(name string) bool {
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
