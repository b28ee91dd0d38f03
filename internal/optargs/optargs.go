// Package optargs is a small table-driven option parser, generalized from
// the original channel_multiatt_args.c/channel_positional_args.c's
// bs_args_struct_t tables: each channel model declares its options as data
// (name, destination, range) instead of hand-written string splitting, and
// this package turns argv into validated values per spec section 4.8.
package optargs

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prathje/ext-2G4-channel/internal/chanerr"
)

// Kind discriminates an option's destination type.
type Kind int

const (
	KindFloat Kind = iota
	KindString
)

// Spec is one row of an option table.
type Spec struct {
	Name string
	Kind Kind

	FloatDest  *float64
	StringDest *string

	Min, Max float64
	HasRange bool
}

func (s *Spec) apply(value string) error {
	switch s.Kind {
	case KindFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &chanerr.ConfigError{Option: s.Name, Value: value, Reason: "not a number"}
		}
		if s.HasRange && (v < s.Min || v > s.Max) {
			return &chanerr.ConfigError{Option: s.Name, Value: value, Reason: "out of range"}
		}
		*s.FloatDest = v
	case KindString:
		*s.StringDest = value
	}
	return nil
}

// Table is an ordered set of option specs for one channel model.
type Table []*Spec

// Float registers a ranged float64 option. dest should already hold the
// option's default value.
func (t *Table) Float(name string, dest *float64, min, max float64) {
	*t = append(*t, &Spec{Name: name, Kind: KindFloat, FloatDest: dest, Min: min, Max: max, HasRange: true})
}

// String registers a string option (typically a file path).
func (t *Table) String(name string, dest *string) {
	*t = append(*t, &Spec{Name: name, Kind: KindString, StringDest: dest})
}

// Load applies argv to the table. If argv is a single "-config=<path>"
// (or "config=<path>") entry naming a .yaml/.yml file, the options are read
// from that document instead, using the same field names as the flat argv
// form (spec_full section 2's optional structured-config surface).
// Otherwise argv is parsed as a flat list of "-name=value" / "-name value"
// pairs, applied left to right so a later entry overrides an earlier one
// for the same option, per the original's documented override semantics.
func (t Table) Load(argv []string) error {
	if path, ok := configFilePath(argv); ok {
		return t.loadYAML(path)
	}
	return t.parseArgv(argv)
}

func configFilePath(argv []string) (string, bool) {
	if len(argv) != 1 {
		return "", false
	}
	name, value, hasValue := splitArg(argv[0])
	if !hasValue || name != "config" {
		return "", false
	}
	if !strings.HasSuffix(value, ".yaml") && !strings.HasSuffix(value, ".yml") {
		return "", false
	}
	return value, true
}

func (t Table) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &chanerr.ConfigError{Option: "config", Value: path, Reason: err.Error()}
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &chanerr.ConfigError{Option: "config", Value: path, Reason: "invalid YAML: " + err.Error()}
	}
	specs := t.byName()
	for name, raw := range doc {
		spec, ok := specs[name]
		if !ok {
			continue
		}
		value := yamlScalarString(raw)
		if err := spec.apply(value); err != nil {
			return err
		}
	}
	return nil
}

func yamlScalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}

func (t Table) byName() map[string]*Spec {
	m := make(map[string]*Spec, len(t))
	for _, s := range t {
		m[s.Name] = s
	}
	return m
}

func (t Table) parseArgv(argv []string) error {
	specs := t.byName()
	for i := 0; i < len(argv); i++ {
		name, value, hasValue := splitArg(argv[i])
		spec, ok := specs[name]
		if !ok {
			continue // options meant for other parts of the host are ignored
		}
		if !hasValue {
			i++
			if i >= len(argv) {
				return &chanerr.ConfigError{Option: name, Reason: "missing value"}
			}
			value = argv[i]
		}
		if err := spec.apply(value); err != nil {
			return err
		}
	}
	return nil
}

func splitArg(arg string) (name, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	arg = strings.TrimPrefix(arg, "-")
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}
