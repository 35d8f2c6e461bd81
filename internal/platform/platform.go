package platform

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrNoHosts = errors.New("platform: hosts list is empty")

// Platform is the simulated host topology description.
type Platform struct {
	Name  string `yaml:"platform"`
	Hosts []Host `yaml:"hosts"`
}

// Host declares one simulated host.
type Host struct {
	Name  string `yaml:"name"`
	Cores int    `yaml:"cores"`
}

// Load parses and validates a YAML platform descriptor.
func Load(path string) (Platform, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Platform{}, fmt.Errorf("platform: read %q: %w", path, err)
	}

	var p Platform
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Platform{}, fmt.Errorf("platform: unmarshal %q: %w", path, err)
	}

	if err := Validate(p); err != nil {
		return Platform{}, err
	}
	return p, nil
}

// Validate enforces structural correctness before any aggregation runs.
func Validate(p Platform) error {
	if len(p.Hosts) == 0 {
		return ErrNoHosts
	}
	seen := make(map[string]struct{}, len(p.Hosts))
	for _, h := range p.Hosts {
		if h.Name == "" {
			return errors.New("platform: host name is empty")
		}
		if _, exists := seen[h.Name]; exists {
			return fmt.Errorf("platform: duplicate host %q", h.Name)
		}
		seen[h.Name] = struct{}{}
		if h.Cores <= 0 {
			return fmt.Errorf("platform: host %q has non-positive core count %d", h.Name, h.Cores)
		}
	}
	return nil
}

// HostNames returns host names in declaration order. Report rows follow this
// ordering.
func (p Platform) HostNames() []string {
	names := make([]string, 0, len(p.Hosts))
	for _, h := range p.Hosts {
		names = append(names, h.Name)
	}
	return names
}

// Lookup returns the host with the given name.
func (p Platform) Lookup(name string) (Host, bool) {
	for _, h := range p.Hosts {
		if h.Name == name {
			return h, true
		}
	}
	return Host{}, false
}
