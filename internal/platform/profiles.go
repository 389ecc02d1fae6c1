// Package platform holds the static per-site configuration (selectors,
// headers, rate limits) and the URL classifier that maps links onto it.
package platform

import (
	_ "embed"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/cartscope/cartscope-cli/internal/model"
)

//go:embed profiles.yaml
var defaultProfilesYAML []byte

// Profile is the static configuration for one platform: how to fetch its
// pages and which selectors extract each product field. Profiles are loaded
// once at process start and never mutated.
type Profile struct {
	ID         model.Platform      `yaml:"id"`
	Domains    []string            `yaml:"domains"`
	Selectors  map[string][]string `yaml:"selectors"`
	Headers    map[string]string   `yaml:"headers"`
	MinDelayMS int                 `yaml:"min_delay_ms"`
	MaxRetries int                 `yaml:"max_retries"`
	TimeoutSec int                 `yaml:"timeout_secs"`
	SearchURL  string              `yaml:"search_url"`
}

// MinDelay returns the minimum inter-request delay for this platform's
// registered domain.
func (p *Profile) MinDelay() time.Duration {
	if p.MinDelayMS <= 0 {
		return time.Second
	}
	return time.Duration(p.MinDelayMS) * time.Millisecond
}

// Timeout returns the per-request timeout.
func (p *Profile) Timeout() time.Duration {
	if p.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSec) * time.Second
}

// SelectorsFor returns the ordered selector list for a field, if any.
func (p *Profile) SelectorsFor(field model.Field) []string {
	return p.Selectors[string(field)]
}

type profilesFile struct {
	Profiles []*Profile `yaml:"profiles"`
	Generic  *Profile   `yaml:"generic"`
}

// Registry is the read-only set of platform profiles keyed by domain suffix.
type Registry struct {
	profiles []*Profile
	generic  *Profile
	byDomain map[string]*Profile
}

// LoadRegistry reads profiles from the given path, or falls back to the
// embedded default set when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	raw := defaultProfilesYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "platform: read profiles %s", path)
		}
		raw = b
	}

	var file profilesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, eris.Wrap(err, "platform: parse profiles")
	}
	if file.Generic == nil {
		return nil, eris.New("platform: profiles missing generic fallback")
	}
	file.Generic.ID = model.PlatformGeneric

	reg := &Registry{
		profiles: file.Profiles,
		generic:  file.Generic,
		byDomain: make(map[string]*Profile),
	}
	for _, p := range file.Profiles {
		for _, d := range p.Domains {
			reg.byDomain[strings.ToLower(d)] = p
		}
	}
	return reg, nil
}

// Lookup resolves a registered domain to a platform profile by exact or
// suffix match. Absence of a match selects the generic profile.
func (r *Registry) Lookup(domain string) *Profile {
	domain = strings.ToLower(domain)
	if p, ok := r.byDomain[domain]; ok {
		return p
	}
	for suffix, p := range r.byDomain {
		if strings.HasSuffix(domain, "."+suffix) {
			return p
		}
	}
	return r.generic
}

// Generic returns the fallback profile.
func (r *Registry) Generic() *Profile { return r.generic }

// Profiles returns all platform-specific profiles.
func (r *Registry) Profiles() []*Profile { return r.profiles }
