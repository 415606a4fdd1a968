// Package checksum builds the request checksum expected by the gateway: a
// digest over an ordered concatenation of request and merchant fields.
package checksum

import (
	"crypto/md5" //nolint:gosec // md5 is part of the gateway contract
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedAlgorithm is returned for any digest other than md5 or sha256.
var ErrUnsupportedAlgorithm = errors.New(`checksum: unsupported algorithm, use "md5" or "sha256"`)

// Algorithm selects the digest applied to the checksum source string.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// ParseAlgorithm normalises name case-insensitively.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case MD5:
		return MD5, nil
	case SHA256:
		return SHA256, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}

func (a Algorithm) String() string { return string(a) }

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil //nolint:gosec
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(a))
	}
}

// Source resolves a field value by name.
type Source interface {
	Lookup(field string) (any, bool)
}

// Values is a map-backed Source.
type Values map[string]any

// Lookup implements Source.
func (v Values) Lookup(field string) (any, bool) {
	if v == nil {
		return nil, false
	}
	val, ok := v[field]
	return val, ok
}

// Field names one checksum input. When Sub is set the field is a container
// and only the listed sub-fields contribute, in order.
type Field struct {
	Name string
	Sub  []string
}

// Spec is the ordered list of fields for one operation.
type Spec []Field

// Fields builds a Spec of plain fields.
func Fields(names ...string) Spec {
	spec := make(Spec, 0, len(names))
	for _, name := range names {
		spec = append(spec, Field{Name: name})
	}
	return spec
}

// With returns a copy of s with the named field replaced by a nested field.
func (s Spec) With(name string, sub ...string) Spec {
	out := make(Spec, len(s))
	copy(out, s)
	for i := range out {
		if out[i].Name == name {
			out[i] = Field{Name: name, Sub: append([]string(nil), sub...)}
		}
	}
	return out
}

// Names lists the top-level field names in order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name)
	}
	return names
}

// SourceString resolves every field of spec against req, then cfg, and
// concatenates the results without a separator. Missing values resolve to "".
func SourceString(req, cfg Source, spec Spec) string {
	var b strings.Builder
	for _, field := range spec {
		value, ok := lookup(req, field.Name)
		if !ok {
			value, ok = lookup(cfg, field.Name)
		}
		if !ok {
			continue
		}
		if field.Sub != nil {
			b.WriteString(nested(value, field.Sub))
			continue
		}
		b.WriteString(Stringify(value))
	}
	return b.String()
}

// Compute returns the lowercase hex digest of the checksum source string.
func Compute(req, cfg Source, spec Spec, alg Algorithm) (string, error) {
	h, err := alg.newHash()
	if err != nil {
		return "", err
	}
	h.Write([]byte(SourceString(req, cfg, spec)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func lookup(src Source, name string) (any, bool) {
	if src == nil {
		return nil, false
	}
	return src.Lookup(name)
}

func nested(container any, sub []string) string {
	obj, ok := asObject(container)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, name := range sub {
		if value, ok := obj[name]; ok {
			b.WriteString(Stringify(value))
		}
	}
	return b.String()
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Values:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case nil:
		return nil, false
	default:
		// typed structs contribute through their JSON field names
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	}
}

// Stringify renders a scalar the way it appears on the wire: strings
// unquoted, numbers without exponent, nil and null as "". Named types and
// pointers are rendered through their JSON encoding; objects and arrays stay
// compact JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	switch {
	case string(data) == "null":
		return ""
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			return text
		}
	}
	return string(data)
}

func formatFloat(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
