package instrument

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Field names an enumerated instrument setting.
type Field string

const (
	ImageMask Field = "image mask"
	PupilMask Field = "pupil mask"
	Filter    Field = "filter"
	Detector  Field = "detector"
)

//go:embed catalog.yaml
var catalogYAML []byte

// AllowedSet is a read-only set of canonical (upper case) names.
type AllowedSet struct {
	names map[string]struct{}
}

func newAllowedSet(values []string) AllowedSet {
	s := AllowedSet{names: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.names[Normalize(v)] = struct{}{}
	}
	return s
}

func (s AllowedSet) Contains(canonical string) bool {
	_, ok := s.names[canonical]
	return ok
}

func (s AllowedSet) Len() int { return len(s.names) }

// Names returns the members sorted, as a fresh slice.
func (s AllowedSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Spec describes one instrument type: its allowed sets and defaults.
type Spec struct {
	Name            string
	DefaultFilter   string
	DefaultDetector string
	fields          map[Field]AllowedSet
}

func (s *Spec) Allowed(f Field) AllowedSet {
	return s.fields[f]
}

type catalogFile struct {
	Instruments []struct {
		Name            string   `yaml:"name"`
		DefaultFilter   string   `yaml:"default_filter"`
		DefaultDetector string   `yaml:"default_detector"`
		Filters         []string `yaml:"filters"`
		ImageMasks      []string `yaml:"image_masks"`
		PupilMasks      []string `yaml:"pupil_masks"`
		Detectors       []string `yaml:"detectors"`
	} `yaml:"instruments"`
}

var (
	catalogOnce sync.Once
	catalog     map[string]*Spec
	catalogErr  error
)

func parseCatalog(data []byte) (map[string]*Spec, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("instrument catalog: %w", err)
	}
	out := make(map[string]*Spec, len(f.Instruments))
	for _, in := range f.Instruments {
		if in.Name == "" {
			return nil, fmt.Errorf("instrument catalog: entry without name")
		}
		spec := &Spec{
			Name:            in.Name,
			DefaultFilter:   Normalize(in.DefaultFilter),
			DefaultDetector: Normalize(in.DefaultDetector),
			fields: map[Field]AllowedSet{
				ImageMask: newAllowedSet(in.ImageMasks),
				PupilMask: newAllowedSet(in.PupilMasks),
				Filter:    newAllowedSet(in.Filters),
				Detector:  newAllowedSet(in.Detectors),
			},
		}
		if spec.DefaultFilter != "" && !spec.fields[Filter].Contains(spec.DefaultFilter) {
			return nil, fmt.Errorf("instrument catalog: %s default filter %s not in filter list", in.Name, spec.DefaultFilter)
		}
		if spec.DefaultDetector != "" && !spec.fields[Detector].Contains(spec.DefaultDetector) {
			return nil, fmt.Errorf("instrument catalog: %s default detector %s not in detector list", in.Name, spec.DefaultDetector)
		}
		out[strings.ToUpper(in.Name)] = spec
	}
	return out, nil
}

func loadCatalog() (map[string]*Spec, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = parseCatalog(catalogYAML)
	})
	return catalog, catalogErr
}

// Lookup finds an instrument type by case-insensitive name.
func Lookup(name string) (*Spec, error) {
	c, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	spec, ok := c[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, name)
	}
	return spec, nil
}

// Names lists the catalog's instrument names in sorted order.
func Names() []string {
	c, err := loadCatalog()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(c))
	for _, s := range c {
		out = append(out, s.Name)
	}
	sort.Strings(out)
	return out
}
