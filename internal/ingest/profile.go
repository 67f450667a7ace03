package ingest

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Logical field names a profile can map raw columns onto.
const (
	FieldDescription = "description"
	FieldDate        = "date"
	FieldDateYear    = "date_year"
	FieldDateMonth   = "date_month"
	FieldDateDay     = "date_day"
	FieldDateHour    = "date_hour"
	FieldDateMinute  = "date_minute"
	FieldCity        = "city"
	FieldState       = "state"
	FieldCountry     = "country"
	FieldShape       = "shape"
	FieldDuration    = "duration"
	FieldLatitude    = "latitude"
	FieldLongitude   = "longitude"
	FieldOriginalID  = "original_id"
)

// SourceKind tags how a raw payload is structured.
type SourceKind string

const (
	SourceKindCSV  SourceKind = "csv"
	SourceKindJSON SourceKind = "json"
	SourceKindXLSX SourceKind = "xlsx"
)

// SourceProfile is the declarative per-feed configuration consumed by the
// shared pipeline. Adding a new upstream feed means writing a profile, not a
// new importer.
type SourceProfile struct {
	// Name identifies the source (NUFORC, GEIPAN, MUFON, USER) and is stamped
	// onto every sighting it produces.
	Name string `yaml:"name"`
	// Kind defaults to CSV.
	Kind SourceKind `yaml:"kind,omitempty"`
	// Encoding defaults to UTF-8.
	Encoding string `yaml:"encoding,omitempty"`
	// Headerless feeds are addressed positionally via col_0, col_1, ...
	Headerless bool `yaml:"headerless,omitempty"`
	// DialectHint short-circuits delimiter detection when set.
	DialectHint string `yaml:"dialect_hint,omitempty"`
	// DefaultCountry fills the country field when the feed never carries one.
	DefaultCountry string `yaml:"default_country,omitempty"`
	// DefaultURL is the feed location used when an import request does not
	// override it.
	DefaultURL string `yaml:"default_url,omitempty"`
	// Fields maps each logical field to candidate raw column names, tried in
	// priority order. Matching is case- and accent-insensitive.
	Fields map[string][]string `yaml:"fields"`
}

// Validate checks the profile invariants.
func (p SourceProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile is missing a name")
	}
	if len(p.Fields[FieldDescription]) == 0 {
		return fmt.Errorf("profile %s does not map the description field", p.Name)
	}
	return nil
}

// Candidates returns the ordered candidate column names for a logical field.
func (p SourceProfile) Candidates(field string) []string {
	return p.Fields[field]
}

var (
	profileMu sync.RWMutex
	profiles  = make(map[string]SourceProfile)
)

// RegisterProfile adds a profile to the registry, replacing any existing
// profile with the same name. Names are normalized to upper case, so lookups
// (and the import URL path) are case-insensitive.
func RegisterProfile(p SourceProfile) error {
	p.Name = normalizeProfileName(p.Name)
	if err := p.Validate(); err != nil {
		return err
	}
	profileMu.Lock()
	defer profileMu.Unlock()
	profiles[p.Name] = p
	return nil
}

// LookupProfile returns a registered profile by name, case-insensitively.
func LookupProfile(name string) (SourceProfile, error) {
	profileMu.RLock()
	defer profileMu.RUnlock()
	p, ok := profiles[normalizeProfileName(name)]
	if !ok {
		return SourceProfile{}, fmt.Errorf("unknown import source: %q", name)
	}
	return p, nil
}

func normalizeProfileName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// AllProfiles returns every registered profile sorted by name.
func AllProfiles() []SourceProfile {
	profileMu.RLock()
	defer profileMu.RUnlock()
	result := make([]SourceProfile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// LoadProfiles registers additional profiles from a YAML file. The file holds
// a list of SourceProfile documents.
func LoadProfiles(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read profile file: %w", err)
	}
	var loaded []SourceProfile
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return 0, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}
	for _, p := range loaded {
		if err := RegisterProfile(p); err != nil {
			return 0, fmt.Errorf("failed to register profile from %s: %w", path, err)
		}
	}
	return len(loaded), nil
}
