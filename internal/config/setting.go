package config

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromEnvironment is the reserved webbpsf_path value that defers to the
// WEBBPSF_PATH environment variable.
const FromEnvironment = "from_environment_variable"

type SettingKind int

const (
	Unset SettingKind = iota
	Deferred
	Explicit
)

func (k SettingKind) String() string {
	switch k {
	case Deferred:
		return "defer"
	case Explicit:
		return "explicit"
	default:
		return "unset"
	}
}

// PathSetting is the persistent webbpsf_path value: unset, deferred to the
// environment, or an explicit directory.
type PathSetting struct {
	kind  SettingKind
	value string
}

func DeferToEnvironment() PathSetting {
	return PathSetting{kind: Deferred}
}

// ExplicitPath pins the data directory. An empty path is Unset.
func ExplicitPath(path string) PathSetting {
	if strings.TrimSpace(path) == "" {
		return PathSetting{}
	}
	return PathSetting{kind: Explicit, value: path}
}

// ParsePathSetting maps the textual setting onto its variant.
func ParsePathSetting(s string) PathSetting {
	if strings.TrimSpace(s) == FromEnvironment {
		return DeferToEnvironment()
	}
	return ExplicitPath(s)
}

func (p PathSetting) Kind() SettingKind { return p.kind }

// Value is the explicit path, or "" for the other variants.
func (p PathSetting) Value() string { return p.value }

func (p PathSetting) IsZero() bool { return p.kind == Unset }

func (p PathSetting) String() string {
	switch p.kind {
	case Deferred:
		return FromEnvironment
	case Explicit:
		return p.value
	default:
		return ""
	}
}

func (p *PathSetting) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.New("webbpsf_path must be a string")
	}
	*p = ParsePathSetting(value.Value)
	return nil
}

func (p PathSetting) MarshalYAML() (interface{}, error) {
	if p.kind == Unset {
		return nil, nil
	}
	return p.String(), nil
}
