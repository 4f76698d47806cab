// Package config handles loading, validation, and persistence of the CLI
// configuration: named connection profiles plus process-wide defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Valid output formats. "wide" is table with all columns.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
	FormatWide  = "wide"
)

// ValidFormats lists the accepted values for default-format and per-profile
// format overrides.
var ValidFormats = []string{FormatJSON, FormatYAML, FormatTable, FormatWide}

// Profile is a named bundle of connection and identity settings for one
// deployment target.
type Profile struct {
	Endpoint          string `yaml:"endpoint"`
	AuthToken         string `yaml:"auth-token"`
	Key               string `yaml:"key,omitempty"`
	Secret            string `yaml:"secret,omitempty"`
	Region            string `yaml:"region,omitempty"`
	Format            string `yaml:"format,omitempty"`
	OrganizationID    string `yaml:"organization-id,omitempty"`
	ProviderToken     string `yaml:"provider-token,omitempty"`
	ProviderClusterID string `yaml:"provider-cluster-id,omitempty"`
}

// Config is the full persisted configuration.
type Config struct {
	DefaultFormat  string              `yaml:"default-format"`
	CurrentProfile string              `yaml:"current-profile"`
	Profiles       map[string]*Profile `yaml:"profiles"`
}

// DefaultEndpoint is used when a configuration file is synthesized from
// scratch on first run.
const DefaultEndpoint = "https://api.vantagedata.io"

// DefaultPath returns the XDG-compliant location of the configuration file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "vantage", "config.yaml")
}

// defaultConfig synthesizes the initial configuration written on first run.
func defaultConfig() *Config {
	return &Config{
		DefaultFormat:  FormatTable,
		CurrentProfile: "default",
		Profiles: map[string]*Profile{
			"default": {Endpoint: DefaultEndpoint},
		},
	}
}

// Store owns the single in-process configuration instance. The backing file
// is read lazily on first access and rewritten in full by every mutator;
// there is no unsaved-changes state.
type Store struct {
	path   string
	cfg    *Config
	loaded bool
	env    *envOverrides
}

// NewStore creates a store backed by the file at path. An empty path selects
// the default XDG location.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, env: loadEnvOverrides()}
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// load reads and validates the persisted configuration, synthesizing
// defaults when no file exists yet. Called lazily by every accessor.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cfg = defaultConfig()
		s.loaded = true
		return s.persist()
	}
	if err != nil {
		return &InvalidError{Path: s.path, Reason: err.Error()}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &InvalidError{Path: s.path, Reason: fmt.Sprintf("malformed YAML: %v", err)}
	}
	if err := validate(&cfg); err != nil {
		return &InvalidError{Path: s.path, Reason: err.Error()}
	}

	s.cfg = &cfg
	s.loaded = true
	return nil
}

// validate enforces the configuration schema. A violation is a load-time
// fatal error, never a silent fallback to defaults.
func validate(cfg *Config) error {
	if cfg.DefaultFormat == "" {
		return fmt.Errorf("default-format is required")
	}
	if !validFormat(cfg.DefaultFormat) {
		return fmt.Errorf("default-format %q is not one of %v", cfg.DefaultFormat, ValidFormats)
	}
	if len(cfg.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	if cfg.CurrentProfile == "" {
		return fmt.Errorf("current-profile is required")
	}
	if _, ok := cfg.Profiles[cfg.CurrentProfile]; !ok {
		return fmt.Errorf("current-profile %q does not name an existing profile", cfg.CurrentProfile)
	}
	for name, p := range cfg.Profiles {
		if p == nil || p.Endpoint == "" {
			return fmt.Errorf("profile %q has no endpoint", name)
		}
		if p.Format != "" && !validFormat(p.Format) {
			return fmt.Errorf("profile %q: format %q is not one of %v", name, p.Format, ValidFormats)
		}
	}
	return nil
}

func validFormat(f string) bool {
	for _, v := range ValidFormats {
		if f == v {
			return true
		}
	}
	return false
}

// persist rewrites the whole configuration file with owner-only permissions.
func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Name returns the active profile's name.
func (s *Store) Name() (string, error) {
	if err := s.load(); err != nil {
		return "", err
	}
	if s.env.profile != "" {
		if _, ok := s.cfg.Profiles[s.env.profile]; ok {
			return s.env.profile, nil
		}
	}
	return s.cfg.CurrentProfile, nil
}

// Endpoint returns the active profile's base URL, honoring the environment
// override.
func (s *Store) Endpoint() (string, error) {
	if s.env.endpoint != "" {
		return s.env.endpoint, nil
	}
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.Endpoint, nil
}

// Token returns the active profile's session credential.
func (s *Store) Token() (string, error) {
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.AuthToken, nil
}

// Key returns the active profile's non-interactive credential key.
func (s *Store) Key() (string, error) {
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.Key, nil
}

// Secret returns the active profile's non-interactive credential secret.
func (s *Store) Secret() (string, error) {
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.Secret, nil
}

// Region returns the active profile's routing hint. There is no
// configuration-wide fallback; empty means unset.
func (s *Store) Region() (string, error) {
	if s.env.region != "" {
		return s.env.region, nil
	}
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.Region, nil
}

// Format returns the effective output format: the profile's own format when
// set, otherwise the configuration default.
func (s *Store) Format() (string, error) {
	if s.env.format != "" {
		return s.env.format, nil
	}
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	if p.Format != "" {
		return p.Format, nil
	}
	return s.cfg.DefaultFormat, nil
}

// Organization returns the active profile's sticky organization scope.
func (s *Store) Organization() (string, error) {
	p, err := s.profileForRead()
	if err != nil {
		return "", err
	}
	return p.OrganizationID, nil
}

// Profile returns a copy of the named profile.
func (s *Store) Profile(name string) (Profile, error) {
	if err := s.load(); err != nil {
		return Profile{}, err
	}
	p, ok := s.cfg.Profiles[name]
	if !ok {
		return Profile{}, &ProfileError{Name: name, Reason: "profile does not exist"}
	}
	return *p, nil
}

// ProfileNames returns all profile names plus the current one.
func (s *Store) ProfileNames() ([]string, string, error) {
	if err := s.load(); err != nil {
		return nil, "", err
	}
	names := make([]string, 0, len(s.cfg.Profiles))
	for name := range s.cfg.Profiles {
		names = append(names, name)
	}
	return names, s.cfg.CurrentProfile, nil
}

// profileForRead resolves the profile accessors read through, honoring the
// VANTAGE_PROFILE override when it names an existing profile.
func (s *Store) profileForRead() (*Profile, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	if s.env.profile != "" {
		if p, ok := s.cfg.Profiles[s.env.profile]; ok {
			return p, nil
		}
	}
	return s.cfg.Profiles[s.cfg.CurrentProfile], nil
}

// AddProfile inserts a new profile and persists. Optional fields are applied
// through opts; the auth token always starts empty.
func (s *Store) AddProfile(name, endpoint string, opts ...ProfileOption) error {
	if err := s.load(); err != nil {
		return err
	}
	if _, exists := s.cfg.Profiles[name]; exists {
		return &ProfileError{Name: name, Reason: "profile already exists"}
	}
	if endpoint == "" {
		return &ProfileError{Name: name, Reason: "endpoint is required"}
	}

	p := &Profile{Endpoint: endpoint}
	for _, opt := range opts {
		opt(p)
	}
	p.AuthToken = ""

	s.cfg.Profiles[name] = p
	return s.persist()
}

// ProfileOption sets an optional field on a new profile.
type ProfileOption func(*Profile)

// WithRegion sets the routing region on a new profile.
func WithRegion(region string) ProfileOption {
	return func(p *Profile) { p.Region = region }
}

// WithFormat sets the output-format override on a new profile.
func WithFormat(format string) ProfileOption {
	return func(p *Profile) { p.Format = format }
}

// WithKeySecret sets the non-interactive credential pair on a new profile.
func WithKeySecret(key, secret string) ProfileOption {
	return func(p *Profile) {
		p.Key = key
		p.Secret = secret
	}
}

// WithOrganization sets the sticky organization scope on a new profile.
func WithOrganization(orgID string) ProfileOption {
	return func(p *Profile) { p.OrganizationID = orgID }
}

// RemoveProfile deletes a profile and persists. Removing the active profile
// is forbidden; switch away first.
func (s *Store) RemoveProfile(name string) error {
	if err := s.load(); err != nil {
		return err
	}
	if _, exists := s.cfg.Profiles[name]; !exists {
		return &ProfileError{Name: name, Reason: "profile does not exist"}
	}
	if name == s.cfg.CurrentProfile {
		return &ProfileError{Name: name, Reason: "cannot remove the active profile"}
	}
	delete(s.cfg.Profiles, name)
	return s.persist()
}

// UseProfile switches the current profile and persists.
func (s *Store) UseProfile(name string) error {
	if err := s.load(); err != nil {
		return err
	}
	if _, exists := s.cfg.Profiles[name]; !exists {
		return &ProfileError{Name: name, Reason: "profile does not exist"}
	}
	s.cfg.CurrentProfile = name
	return s.persist()
}

// Apply runs mutate against the named profile and persists once. Handlers
// that change several fields in one invocation go through here to avoid
// redundant writes.
func (s *Store) Apply(name string, mutate func(*Profile)) error {
	if err := s.load(); err != nil {
		return err
	}
	p, ok := s.cfg.Profiles[name]
	if !ok {
		return &ProfileError{Name: name, Reason: "profile does not exist"}
	}
	mutate(p)
	return s.persist()
}

// SetAuthToken stores a new session credential on the named profile.
func (s *Store) SetAuthToken(name, token string) error {
	return s.Apply(name, func(p *Profile) { p.AuthToken = token })
}

// SetOrganizationID stores the sticky organization scope on the named profile.
func (s *Store) SetOrganizationID(name, orgID string) error {
	return s.Apply(name, func(p *Profile) { p.OrganizationID = orgID })
}

// SetFormat stores the output-format override on the named profile.
func (s *Store) SetFormat(name, format string) error {
	if !validFormat(format) {
		return &ProfileError{Name: name, Reason: fmt.Sprintf("format %q is not one of %v", format, ValidFormats)}
	}
	return s.Apply(name, func(p *Profile) { p.Format = format })
}

// SetProviderToken stores the scheduled-jobs provider credential.
func (s *Store) SetProviderToken(name, token string) error {
	return s.Apply(name, func(p *Profile) { p.ProviderToken = token })
}

// SetProviderClusterID stores the scheduled-jobs provider cluster linkage.
func (s *Store) SetProviderClusterID(name, clusterID string) error {
	return s.Apply(name, func(p *Profile) { p.ProviderClusterID = clusterID })
}
