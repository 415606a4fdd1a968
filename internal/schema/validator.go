package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	validator "github.com/go-playground/validator/v10"
)

// formatTags maps a schema format onto a validator/v10 tag.
var formatTags = map[string]string{
	"date":      "datetime=2006-01-02",
	"date-time": "datetime=2006-01-02T15:04:05Z07:00",
	"ipv4":      "ipv4",
	"ipv6":      "ipv6",
	"email":     "email",
	"uri":       "url",
}

var formats = validator.New()

// Violation is a single failed rule.
type Violation struct {
	// Path is the dotted location of the value; empty for the root.
	Path   string
	Rule   string
	Params []any
}

// Message renders the violation in locale, falling back to English.
func (v Violation) Message(locale string) string {
	return render(locale, v.Rule, v.Params)
}

// String renders the violation with its data path in English.
func (v Violation) String() string {
	return v.text(DefaultLocale)
}

func (v Violation) text(locale string) string {
	path := "data"
	if v.Path != "" {
		path += "." + v.Path
	}
	return path + " " + v.Message(locale)
}

// Result is the outcome of validating one request.
type Result struct {
	Violations []Violation
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool { return len(r.Violations) == 0 }

// Text joins every violation, rendered in locale, with ", ".
func (r Result) Text(locale string) string {
	if r.Valid() {
		return "No errors"
	}
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.text(locale))
	}
	return strings.Join(parts, ", ")
}

// Validator is a compiled Schema. It is safe for concurrent use.
type Validator struct {
	root *node
}

type node struct {
	schema  *Schema
	pattern *regexp.Regexp
	format  string
	enum    map[string]struct{}
	props   map[string]*node
	anyOf   []*node
	oneOf   []*node
}

// Compile prepares s for validation, compiling patterns and enum sets.
func Compile(s *Schema) (*Validator, error) {
	if s == nil {
		return nil, fmt.Errorf("schema: nil schema")
	}
	root, err := compileNode(s, "")
	if err != nil {
		return nil, err
	}
	return &Validator{root: root}, nil
}

func compileNode(s *Schema, path string) (*node, error) {
	n := &node{schema: s}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("schema: %s: pattern %q: %w", describe(path), s.Pattern, err)
		}
		n.pattern = re
	}
	if s.Format != "" {
		tag, ok := formatTags[s.Format]
		if !ok {
			return nil, fmt.Errorf("schema: %s: unknown format %q", describe(path), s.Format)
		}
		n.format = tag
	}
	if len(s.Enum) > 0 {
		n.enum = make(map[string]struct{}, len(s.Enum))
		for _, v := range s.Enum {
			n.enum[v] = struct{}{}
		}
	}
	if len(s.Properties) > 0 {
		n.props = make(map[string]*node, len(s.Properties))
		for name, sub := range s.Properties {
			if sub == nil {
				continue
			}
			child, err := compileNode(sub, join(path, name))
			if err != nil {
				return nil, err
			}
			n.props[name] = child
		}
	}
	for _, sub := range s.AnyOf {
		child, err := compileNode(sub, path)
		if err != nil {
			return nil, err
		}
		n.anyOf = append(n.anyOf, child)
	}
	for _, sub := range s.OneOf {
		child, err := compileNode(sub, path)
		if err != nil {
			return nil, err
		}
		n.oneOf = append(n.oneOf, child)
	}
	return n, nil
}

// Validate checks data, which may be any JSON-encodable value. Every failing
// rule is reported, not only the first one.
func (v *Validator) Validate(data any) (Result, error) {
	value, err := normalise(data)
	if err != nil {
		return Result{}, err
	}
	var out []Violation
	v.root.check(value, "", &out)
	return Result{Violations: out}, nil
}

// normalise round-trips data through JSON so validation only deals with
// map[string]any, []any, string, json.Number, bool and nil.
func normalise(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("schema: encode request: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("schema: decode request: %w", err)
	}
	return value, nil
}

func (n *node) check(value any, path string, out *[]Violation) {
	s := n.schema
	if s.Type != KindAny && !hasKind(value, s.Type) {
		*out = append(*out, Violation{Path: path, Rule: "type", Params: []any{string(s.Type)}})
		return
	}

	switch val := value.(type) {
	case string:
		n.checkString(val, path, out)
	case json.Number:
		n.checkNumber(val, path, out)
	case map[string]any:
		n.checkObject(val, path, out)
	}

	if n.enum != nil {
		str, ok := value.(string)
		if _, found := n.enum[str]; !ok || !found {
			*out = append(*out, Violation{Path: path, Rule: "enum"})
		}
	}

	if len(n.anyOf) > 0 {
		matched := false
		for _, sub := range n.anyOf {
			if sub.matches(value, path) {
				matched = true
				break
			}
		}
		if !matched {
			*out = append(*out, Violation{Path: path, Rule: "anyOf"})
		}
	}

	if len(n.oneOf) > 0 {
		count := 0
		for _, sub := range n.oneOf {
			if sub.matches(value, path) {
				count++
			}
		}
		if count != 1 {
			*out = append(*out, Violation{Path: path, Rule: "oneOf"})
		}
	}
}

func (n *node) matches(value any, path string) bool {
	var scratch []Violation
	n.check(value, path, &scratch)
	return len(scratch) == 0
}

func (n *node) checkString(val, path string, out *[]Violation) {
	s := n.schema
	length := utf8.RuneCountInString(val)
	if s.MinLength != nil && length < *s.MinLength {
		*out = append(*out, Violation{Path: path, Rule: "minLength", Params: []any{*s.MinLength}})
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		*out = append(*out, Violation{Path: path, Rule: "maxLength", Params: []any{*s.MaxLength}})
	}
	if n.pattern != nil && !n.pattern.MatchString(val) {
		*out = append(*out, Violation{Path: path, Rule: "pattern", Params: []any{s.Pattern}})
	}
	if n.format != "" {
		if err := formats.Var(val, n.format); err != nil {
			*out = append(*out, Violation{Path: path, Rule: "format", Params: []any{s.Format}})
		}
	}
}

func (n *node) checkNumber(val json.Number, path string, out *[]Violation) {
	s := n.schema
	f, err := val.Float64()
	if err != nil {
		return
	}
	if s.Minimum != nil && f < *s.Minimum {
		*out = append(*out, Violation{Path: path, Rule: "minimum", Params: []any{*s.Minimum}})
	}
	if s.Maximum != nil && f > *s.Maximum {
		*out = append(*out, Violation{Path: path, Rule: "maximum", Params: []any{*s.Maximum}})
	}
}

func (n *node) checkObject(obj map[string]any, path string, out *[]Violation) {
	s := n.schema
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			*out = append(*out, Violation{Path: path, Rule: "required", Params: []any{name}})
		}
	}

	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child, ok := n.props[name]
		if !ok {
			if s.Closed {
				*out = append(*out, Violation{Path: path, Rule: "additionalProperties", Params: []any{name}})
			}
			continue
		}
		child.check(obj[name], join(path, name), out)
	}
}

func hasKind(value any, kind Kind) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindObject:
		_, ok := value.(map[string]any)
		return ok
	case KindArray:
		_, ok := value.([]any)
		return ok
	case KindNumber:
		_, ok := value.(json.Number)
		return ok
	case KindInteger:
		num, ok := value.(json.Number)
		if !ok {
			return false
		}
		f, err := num.Float64()
		return err == nil && f == math.Trunc(f)
	default:
		return true
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func describe(path string) string {
	if path == "" {
		return "root"
	}
	return path
}
