// Package catalog holds the registry of OAuth identity providers. LinkedIn
// is built in; a YAML file can override its endpoints or register additional
// providers.
package catalog

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var providerIDRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Provider describes one OAuth identity provider's endpoints and scopes.
type Provider struct {
	ID          string   `yaml:"id"`
	AuthURL     string   `yaml:"auth_url"`
	TokenURL    string   `yaml:"token_url"`
	UserInfoURL string   `yaml:"userinfo_url"`
	Scopes      []string `yaml:"scopes"`
	Enabled     *bool    `yaml:"enabled"`
}

type fileConfig struct {
	Providers []Provider `yaml:"providers"`
}

// Catalog is an immutable provider registry built at startup.
type Catalog struct {
	byID  map[string]Provider
	order []string
}

// builtin returns the providers shipped with the application.
func builtin() []Provider {
	return []Provider{
		{
			ID:          "linkedin",
			AuthURL:     "https://www.linkedin.com/oauth/v2/authorization",
			TokenURL:    "https://www.linkedin.com/oauth/v2/accessToken",
			UserInfoURL: "https://api.linkedin.com/v2/userinfo",
			Scopes:      []string{"openid", "profile", "email"},
		},
	}
}

// Load builds the catalog from the built-in providers plus an optional YAML
// file. Path may be empty.
func Load(path string) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Provider)}
	for _, p := range builtin() {
		c.add(p)
	}

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers config: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse providers config: %w", err)
	}

	for _, p := range file.Providers {
		if !providerIDRegexp.MatchString(p.ID) {
			return nil, fmt.Errorf("invalid provider id %q", p.ID)
		}
		if existing, ok := c.byID[p.ID]; ok {
			c.byID[p.ID] = merge(existing, p)
			continue
		}
		if p.AuthURL == "" || p.TokenURL == "" || p.UserInfoURL == "" {
			return nil, fmt.Errorf("provider %q is missing endpoint urls", p.ID)
		}
		c.add(p)
	}
	return c, nil
}

func (c *Catalog) add(p Provider) {
	c.byID[p.ID] = p
	c.order = append(c.order, p.ID)
}

// merge overlays non-empty file values onto a built-in provider.
func merge(base, override Provider) Provider {
	if override.AuthURL != "" {
		base.AuthURL = override.AuthURL
	}
	if override.TokenURL != "" {
		base.TokenURL = override.TokenURL
	}
	if override.UserInfoURL != "" {
		base.UserInfoURL = override.UserInfoURL
	}
	if len(override.Scopes) > 0 {
		base.Scopes = override.Scopes
	}
	if override.Enabled != nil {
		base.Enabled = override.Enabled
	}
	return base
}

// Get returns the provider with the given id.
func (c *Catalog) Get(id string) (Provider, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Enabled reports whether the provider exists and is not disabled.
func (c *Catalog) Enabled(id string) bool {
	p, ok := c.byID[id]
	if !ok {
		return false
	}
	return p.Enabled == nil || *p.Enabled
}

// IDs returns provider ids in registration order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
