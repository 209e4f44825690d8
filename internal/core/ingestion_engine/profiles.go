package ingestion_engine

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/markdave123-py/weddingkb/internal/models"
)

// ContentType selects a content profile.
type ContentType string

const (
	ContentPodcast ContentType = "podcast"
	ContentVendor  ContentType = "vendor"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profile holds everything that differs between podcast transcripts and vendor lists:
// the prompt vocabulary, the fallback metadata and the labels written to stored rows.
type Profile struct {
	Label      string                `yaml:"label"`
	DocType    string                `yaml:"doc_type"`
	Genre      string                `yaml:"genre"`
	Difficulty string                `yaml:"difficulty"`
	SourceType string                `yaml:"source_type"`
	IDPrefix   string                `yaml:"id_prefix"`
	Subject    string                `yaml:"subject"`
	Item       string                `yaml:"item"`
	Tones      []string              `yaml:"tones"`
	Audiences  []string              `yaml:"audiences"`
	Categories []string              `yaml:"categories"`
	Fallback   models.MetadataRecord `yaml:"fallback"`
}

// Profiles maps content types to their profile.
type Profiles map[ContentType]Profile

// LoadProfiles parses the embedded profile table.
func LoadProfiles() (Profiles, error) {
	return ParseProfiles(profilesYAML)
}

// ParseProfiles parses a profile table and checks that every fallback field is set.
func ParseProfiles(data []byte) (Profiles, error) {
	var out Profiles
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for _, ct := range []ContentType{ContentPodcast, ContentVendor} {
		p, ok := out[ct]
		if !ok {
			return nil, fmt.Errorf("profile %q missing", ct)
		}
		if !complete(p.Fallback) {
			return nil, fmt.Errorf("profile %q: fallback metadata must set every field", ct)
		}
	}
	return out, nil
}

// MustLoadProfiles is LoadProfiles for package initialisation paths.
func MustLoadProfiles() Profiles {
	p, err := LoadProfiles()
	if err != nil {
		panic(err)
	}
	return p
}

func complete(m models.MetadataRecord) bool {
	return m.Title != "" && m.Author != "" && m.Summary != "" && m.Tags != "" &&
		m.Tone != "" && m.Audience != "" && m.Category != ""
}
