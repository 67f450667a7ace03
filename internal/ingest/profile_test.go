package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinProfilesRegistered(t *testing.T) {
	for _, name := range []string{"NUFORC", "GEIPAN", "MUFON", "USER"} {
		profile, err := LookupProfile(name)
		if err != nil {
			t.Fatalf("builtin profile %s missing: %v", name, err)
		}
		if err := profile.Validate(); err != nil {
			t.Fatalf("builtin profile %s invalid: %v", name, err)
		}
	}
}

func TestLookupProfileUnknown(t *testing.T) {
	if _, err := LookupProfile("ROSWELL-WEEKLY"); err == nil {
		t.Fatalf("expected error for unknown profile")
	}
}

func TestValidateRequiresDescriptionMapping(t *testing.T) {
	p := SourceProfile{Name: "BROKEN", Fields: map[string][]string{FieldCity: {"city"}}}
	if err := p.Validate(); err == nil {
		t.Fatalf("profile without description mapping must be invalid")
	}
}

func TestProfileNamesNormalizedAtRegistration(t *testing.T) {
	if err := RegisterProfile(SourceProfile{
		Name:   " ovni-pt ",
		Fields: map[string][]string{FieldDescription: {"descricao"}},
	}); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	p, err := LookupProfile("ovni-pt")
	if err != nil {
		t.Fatalf("lowercase lookup must reach the profile: %v", err)
	}
	if p.Name != "OVNI-PT" {
		t.Fatalf("name must be normalized to upper case, got %q", p.Name)
	}
	if _, err := LookupProfile("OVNI-PT"); err != nil {
		t.Fatalf("uppercase lookup must reach the profile: %v", err)
	}
}

func TestLoadProfilesFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `
- name: OVNI-ES
  kind: csv
  encoding: latin-1
  default_country: Spain
  fields:
    description: [descripcion, resumen]
    date: [fecha]
    city: [ciudad, localidad]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}

	n, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("load profiles returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 profile loaded, got %d", n)
	}

	profile, err := LookupProfile("OVNI-ES")
	if err != nil {
		t.Fatalf("loaded profile missing: %v", err)
	}
	if profile.DefaultCountry != "Spain" || profile.Encoding != EncodingLatin1 {
		t.Fatalf("profile fields did not round-trip: %+v", profile)
	}
	if got := profile.Candidates(FieldDescription); len(got) != 2 || got[0] != "descripcion" {
		t.Fatalf("candidate order lost: %v", got)
	}
}

func TestLoadProfilesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := "- name: NO-DESCRIPTION\n  fields:\n    city: [city]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}
	if _, err := LoadProfiles(path); err == nil {
		t.Fatalf("invalid profile must be rejected")
	}
}
