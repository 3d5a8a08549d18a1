package tools

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults applied to missing settings keys.
const (
	DefaultRuns               = 3
	DefaultTimeout            = time.Hour
	DefaultVersionTimeout     = 5 * time.Second
	DefaultUnitFraction       = 0.5
	DefaultUnitLabel          = "base"
	DefaultDecompressedSuffix = "_decompressed"
	DefaultCategory           = "unknown"

	DefaultCompareCompress   = "{binary} compress -i {input} -o {output} -t {threads} -q"
	DefaultCompareDecompress = "{binary} decompress -i {output} -o {decompressed} -t {threads} -q"
	DefaultCompareExtension  = ".fqc"
)

var (
	DefaultThreads        = []int{1, 4}
	DefaultCompareThreads = []int{1, 4, 8}
)

// Settings are the sweep-wide knobs read from the `settings` section.
type Settings struct {
	DefaultThreads     []int         `validate:"min=1,dive,gt=0"`
	Runs               int           `validate:"gt=0"`
	Timeout            time.Duration `validate:"gt=0"`
	VersionTimeout     time.Duration `validate:"gt=0"`
	UnitFraction       float64       `validate:"gt=0"`
	UnitLabel          string        `validate:"required"`
	Verify             bool
	DecompressedSuffix string        `validate:"required"`

	CompareCompress   string `validate:"required"`
	CompareDecompress string `validate:"required"`
	CompareExtension  string `validate:"required"`
	CompareThreads    []int  `validate:"min=1,dive,gt=0"`
}

// DefaultSettings returns the settings used when a file omits them.
func DefaultSettings() Settings {
	return Settings{
		DefaultThreads:     append([]int(nil), DefaultThreads...),
		Runs:               DefaultRuns,
		Timeout:            DefaultTimeout,
		VersionTimeout:     DefaultVersionTimeout,
		UnitFraction:       DefaultUnitFraction,
		UnitLabel:          DefaultUnitLabel,
		Verify:             true,
		DecompressedSuffix: DefaultDecompressedSuffix,
		CompareCompress:    DefaultCompareCompress,
		CompareDecompress:  DefaultCompareDecompress,
		CompareExtension:   DefaultCompareExtension,
		CompareThreads:     append([]int(nil), DefaultCompareThreads...),
	}
}

type rawSettings struct {
	DefaultThreads     []int          `yaml:"default_threads"`
	Runs               *int           `yaml:"runs"`
	Timeout            *time.Duration `yaml:"timeout"`
	VersionTimeout     *time.Duration `yaml:"version_timeout"`
	UnitFraction       *float64       `yaml:"unit_fraction"`
	UnitLabel          string         `yaml:"unit_label"`
	Verify             *bool          `yaml:"verify"`
	DecompressedSuffix *string        `yaml:"decompressed_suffix"`
	Compare            struct {
		Compress   string `yaml:"compress"`
		Decompress string `yaml:"decompress"`
		Extension  string `yaml:"extension"`
		Threads    []int  `yaml:"threads"`
	} `yaml:"compare"`
}

func (r rawSettings) apply(s *Settings) {
	if len(r.DefaultThreads) > 0 {
		s.DefaultThreads = r.DefaultThreads
	}
	if r.Runs != nil {
		s.Runs = *r.Runs
	}
	if r.Timeout != nil {
		s.Timeout = *r.Timeout
	}
	if r.VersionTimeout != nil {
		s.VersionTimeout = *r.VersionTimeout
	}
	if r.UnitFraction != nil {
		s.UnitFraction = *r.UnitFraction
	}
	if r.UnitLabel != "" {
		s.UnitLabel = r.UnitLabel
	}
	if r.Verify != nil {
		s.Verify = *r.Verify
	}
	if r.DecompressedSuffix != nil {
		s.DecompressedSuffix = *r.DecompressedSuffix
	}
	if r.Compare.Compress != "" {
		s.CompareCompress = r.Compare.Compress
	}
	if r.Compare.Decompress != "" {
		s.CompareDecompress = r.Compare.Decompress
	}
	if r.Compare.Extension != "" {
		s.CompareExtension = r.Compare.Extension
	}
	if len(r.Compare.Threads) > 0 {
		s.CompareThreads = r.Compare.Threads
	}
}

// rawTool mirrors one entry of the `tools` mapping. Keys not listed here
// are ignored.
type rawTool struct {
	Name        string   `yaml:"name"`
	Compress    string   `yaml:"compress"`
	Decompress  string   `yaml:"decompress"`
	Extension   string   `yaml:"extension"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	VersionCmd  string   `yaml:"version_cmd"`
	Binary      string   `yaml:"binary"`
	Candidates  []string `yaml:"candidates"`
}

type document struct {
	Settings yaml.Node `yaml:"settings"`
	Tools    yaml.Node `yaml:"tools"`
}

// Option customises registry construction.
type Option func(*options)

type options struct {
	lookPath LookPathFunc
	baseDir  string
}

// WithLookPath replaces exec.LookPath for binary resolution.
func WithLookPath(fn LookPathFunc) Option {
	return func(o *options) { o.lookPath = fn }
}

// WithBaseDir sets the directory relative candidate paths are resolved
// against. Load sets it to the config file's directory.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// Registry holds the configured tools in file order.
type Registry struct {
	Settings Settings

	tools []*Descriptor
	byID  map[string]*Descriptor
	opts  options
}

var validate = validator.New()

// Load reads and validates a tool definition file.
func Load(path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrConfiguration, "reading %s: %v", path, err)
	}
	opts = append([]Option{WithBaseDir(filepath.Dir(path))}, opts...)
	r, err := Parse(data, opts...)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return r, nil
}

// Parse builds a registry from YAML. Any malformed tool aborts the load
// with an error wrapping ErrConfiguration.
func Parse(data []byte, opts ...Option) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, configErrorf("%v", err)
	}

	settings := DefaultSettings()
	if !doc.Settings.IsZero() {
		var rs rawSettings
		if err := doc.Settings.Decode(&rs); err != nil {
			return nil, configErrorf("settings: %v", err)
		}
		rs.apply(&settings)
	}

	r := NewRegistry(settings, opts...)
	if err := validateStruct("settings", &r.Settings); err != nil {
		return nil, err
	}

	if doc.Tools.IsZero() {
		return r, nil
	}
	if doc.Tools.Kind != yaml.MappingNode {
		return nil, configErrorf("line %d: tools must be a mapping", doc.Tools.Line)
	}
	for i := 0; i+1 < len(doc.Tools.Content); i += 2 {
		key, value := doc.Tools.Content[i], doc.Tools.Content[i+1]
		var rt rawTool
		if err := value.Decode(&rt); err != nil {
			return nil, configErrorf("tool %q: %v", key.Value, err)
		}
		d, err := r.build(key.Value, rt)
		if err != nil {
			return nil, err
		}
		if err := r.add(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewRegistry returns an empty registry with the given settings.
func NewRegistry(settings Settings, opts ...Option) *Registry {
	r := &Registry{Settings: settings, byID: map[string]*Descriptor{}}
	for _, o := range opts {
		o(&r.opts)
	}
	return r
}

// Variant builds and registers a compare-mode descriptor for binary, using
// the compare templates from the settings.
func (r *Registry) Variant(id, binary string) (*Descriptor, error) {
	bin := func(tmpl string) string {
		return replacePlaceholders(tmpl, func(name string) string {
			if name == placeholderBinary {
				return shellQuote(binary)
			}
			return "{" + name + "}"
		})
	}
	d, err := r.build(id, rawTool{
		Name:       id,
		Compress:   bin(r.Settings.CompareCompress),
		Decompress: bin(r.Settings.CompareDecompress),
		Extension:  r.Settings.CompareExtension,
		Category:   "variant",
		VersionCmd: shellQuote(binary) + " --version",
		Binary:     binary,
	})
	if err != nil {
		return nil, err
	}
	return d, r.add(d)
}

func (r *Registry) build(id string, rt rawTool) (*Descriptor, error) {
	if strings.TrimSpace(id) == "" {
		return nil, configErrorf("tool id must not be empty")
	}
	d := &Descriptor{
		ID:          id,
		Name:        rt.Name,
		Category:    rt.Category,
		Description: rt.Description,
		Compress:    strings.TrimSpace(rt.Compress),
		Decompress:  strings.TrimSpace(rt.Decompress),
		Extension:   rt.Extension,
		VersionCmd:  strings.TrimSpace(rt.VersionCmd),
		Binary:      rt.Binary,
	}
	if d.Name == "" {
		d.Name = id
	}
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Extension == "" {
		d.Extension = "." + id
	}
	if d.Binary == "" {
		d.Binary = firstToken(d.Compress)
	}
	for _, c := range rt.Candidates {
		if c != "" && !filepath.IsAbs(c) && r.opts.baseDir != "" {
			c = filepath.Join(r.opts.baseDir, c)
		}
		d.Candidates = append(d.Candidates, c)
	}

	if err := validateStruct("tool "+id, d); err != nil {
		return nil, err
	}
	for _, tmpl := range []string{d.Compress, d.Decompress} {
		if err := CheckTemplate(tmpl); err != nil {
			return nil, errors.Wrapf(ErrConfiguration, "tool %q: %v", id, err)
		}
	}
	d.resolve(r.opts.lookPath)
	return d, nil
}

func (r *Registry) add(d *Descriptor) error {
	if _, dup := r.byID[d.ID]; dup {
		return configErrorf("tool %q defined twice", d.ID)
	}
	r.byID[d.ID] = d
	r.tools = append(r.tools, d)
	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Tools returns every descriptor in configuration order.
func (r *Registry) Tools() []*Descriptor {
	return append([]*Descriptor(nil), r.tools...)
}

// IDs returns every tool id in configuration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.tools))
	for i, d := range r.tools {
		ids[i] = d.ID
	}
	return ids
}

// Select returns the descriptors for ids, failing on the first id that is
// not configured.
func (r *Registry) Select(ids []string) ([]*Descriptor, error) {
	out := make([]*Descriptor, 0, len(ids))
	for _, id := range ids {
		d, ok := r.byID[id]
		if !ok {
			return nil, errors.Wrap(ErrUnknownTool, id)
		}
		out = append(out, d)
	}
	return out, nil
}

func validateStruct(what string, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return configErrorf("%s: %s failed %q", what, fe.Field(), fe.Tag())
	}
	return configErrorf("%s: %v", what, err)
}
