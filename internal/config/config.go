package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level minispec.yaml configuration.
type Config struct {
	// Specializations lists the specializations to run for every kernel.
	// Defaults to DefaultSpecializations.
	Specializations []string `yaml:"specializations,omitempty"`

	// Kernels are the functions to specialize.
	Kernels []Kernel `yaml:"kernels"`
}

// Kernel describes one elementwise function.
//
//	kernels:
//	  - name: axpy
//	    ndim: 2
//	    params:
//	      - {name: out, dtype: double, ndim: 2}
//	      - {name: x, dtype: double, ndim: 2}
//	      - {name: alpha, dtype: double}
//	    body:
//	      - out = x * alpha
type Kernel struct {
	Name string `yaml:"name"`

	// NDim is the dimensionality of the iteration space.
	NDim int `yaml:"ndim"`

	Params []Param `yaml:"params"`

	// Body statements run once per element, in order.
	Body []Statement `yaml:"body"`

	// MayFail marks the body as calling into code that can raise. The body
	// then gets an error handler when specialized.
	MayFail bool `yaml:"may_fail,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// Param is a kernel parameter. Parameters with ndim 0 are scalars.
type Param struct {
	Name string `yaml:"name"`

	// Dtype is a scalar type name or alias (e.g. "double", "float32").
	// Defaults to "double".
	Dtype string `yaml:"dtype,omitempty"`

	NDim int `yaml:"ndim,omitempty"`
}

// Statement is one `target = operand [op operand]` assignment.
// Operands are parameter names or integer literals.
type Statement struct {
	Target string
	LHS    string
	Op     string
	RHS    string

	Line   int
	Column int
}

func (k *Kernel) UnmarshalYAML(value *yaml.Node) error {
	type plain Kernel
	if err := value.Decode((*plain)(k)); err != nil {
		return err
	}
	k.Line, k.Column = value.Line, value.Column
	return nil
}

func (s *Statement) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	st, err := ParseStatement(text)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*s = st
	s.Line, s.Column = value.Line, value.Column
	return nil
}

// ParseStatement parses `target = operand` or `target = operand op operand`.
func ParseStatement(text string) (Statement, error) {
	target, expr, ok := strings.Cut(text, "=")
	if !ok {
		return Statement{}, errors.Errorf("statement %q: missing '='", text)
	}
	st := Statement{Target: strings.TrimSpace(target)}
	if !isIdent(st.Target) {
		return Statement{}, errors.Errorf("statement %q: target must be a name", text)
	}

	expr = strings.TrimSpace(expr)
	// skip the first byte so a leading sign stays part of the literal
	opAt := -1
	if len(expr) > 1 {
		opAt = strings.IndexAny(expr[1:], strings.Join(KernelOperators, ""))
	}
	if opAt < 0 {
		st.LHS = expr
	} else {
		opAt++
		st.LHS = strings.TrimSpace(expr[:opAt])
		st.Op = expr[opAt : opAt+1]
		st.RHS = strings.TrimSpace(expr[opAt+1:])
	}

	for _, operand := range []string{st.LHS, st.RHS} {
		if operand == "" && st.Op == "" {
			continue
		}
		if !isIdent(operand) && !IsLiteral(operand) {
			return Statement{}, errors.Errorf("statement %q: bad operand %q", text, operand)
		}
	}
	return st, nil
}

// Operands returns the operand texts of the statement.
func (s Statement) Operands() []string {
	if s.Op == "" {
		return []string{s.LHS}
	}
	return []string{s.LHS, s.RHS}
}

func (s Statement) String() string {
	if s.Op == "" {
		return s.Target + " = " + s.LHS
	}
	return s.Target + " = " + s.LHS + " " + s.Op + " " + s.RHS
}

// IsLiteral reports whether operand is an integer literal.
func IsLiteral(operand string) bool {
	_, err := strconv.ParseInt(operand, 10, 64)
	return err == nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// LoadConfig reads and parses a minispec.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses minispec.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for minispec.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving directory")
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ApplyEnv overrides the configuration from the environment.
func (c *Config) ApplyEnv() {
	if names := env.Str(EnvSpecializations); names != "" {
		c.Specializations = SplitList(names)
	}
}

// TraceFromEnv reports whether tracing was requested through the environment.
func TraceFromEnv() bool {
	return env.Bool(EnvTrace)
}

// ColorFromEnv returns the colour setting from the environment and whether
// one was given at all.
func ColorFromEnv() (on, set bool) {
	if !env.Has(EnvColor) {
		return false, false
	}
	return env.Bool(EnvColor), true
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if len(c.Kernels) == 0 {
		return errors.Errorf("%s: no kernels defined", path)
	}

	seenKernels := make(map[string]bool)
	for i, k := range c.Kernels {
		if k.Name == "" {
			return errors.Errorf("%s: kernels[%d]: name is required", path, i)
		}
		if seenKernels[k.Name] {
			return errors.Errorf("%s: kernels[%d]: duplicate kernel %q", path, i, k.Name)
		}
		seenKernels[k.Name] = true

		if k.NDim < 0 {
			return errors.Errorf("%s: kernels[%d] (%s): ndim must not be negative", path, i, k.Name)
		}
		if len(k.Body) == 0 {
			return errors.Errorf("%s: kernels[%d] (%s): body is empty", path, i, k.Name)
		}

		params := make(map[string]Param)
		for j, p := range k.Params {
			if !isIdent(p.Name) {
				return errors.Errorf("%s: kernels[%d].params[%d] (%s): invalid name %q", path, i, j, k.Name, p.Name)
			}
			if _, dup := params[p.Name]; dup {
				return errors.Errorf("%s: kernels[%d].params[%d] (%s): duplicate parameter %q", path, i, j, k.Name, p.Name)
			}
			if p.NDim < 0 || p.NDim > k.NDim {
				return errors.Errorf("%s: kernels[%d].params[%d] (%s): %s has ndim %d, kernel iterates over %d",
					path, i, j, k.Name, p.Name, p.NDim, k.NDim)
			}
			params[p.Name] = p
		}

		for j, st := range k.Body {
			if _, ok := params[st.Target]; !ok {
				return errors.Errorf("%s:%d: kernels[%d].body[%d] (%s): assignment to unknown parameter %q",
					path, st.Line, i, j, k.Name, st.Target)
			}
			for _, operand := range st.Operands() {
				if _, ok := params[operand]; !ok && !IsLiteral(operand) {
					return errors.Errorf("%s:%d: kernels[%d].body[%d] (%s): unknown operand %q",
						path, st.Line, i, j, k.Name, operand)
				}
			}
		}
	}

	return errors.Wrap(CheckSpecializations(c.Specializations), path)
}

// CheckSpecializations rejects an empty selection and names listed more
// than once. Overrides from the environment or the command line must pass
// it as well.
func CheckSpecializations(names []string) error {
	if len(names) == 0 {
		return errors.New("no specializations selected")
	}
	for i, name := range names {
		if slices.Index(names[:i], name) >= 0 {
			return errors.Errorf("specialization %q listed twice", name)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if len(c.Specializations) == 0 {
		c.Specializations = slices.Clone(DefaultSpecializations)
	}
	for i := range c.Kernels {
		for j := range c.Kernels[i].Params {
			if c.Kernels[i].Params[j].Dtype == "" {
				c.Kernels[i].Params[j].Dtype = DefaultDtype
			}
		}
	}
}
