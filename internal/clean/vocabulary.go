package clean

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary lists the noise words the cleaner filters on.
type Vocabulary struct {
	PageTokens   []string `yaml:"page_tokens"`
	TitleMarkers []string `yaml:"title_markers"`
	Exact        []string `yaml:"exact"`
	PhoneLabels  []string `yaml:"phone_labels"`
	Bullets      []string `yaml:"bullets"`
}

// DefaultVocabulary returns the built-in Danish hearing-list vocabulary.
func DefaultVocabulary() Vocabulary {
	v, err := ParseVocabulary(defaultVocabulary)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary: %v", err))
	}
	return v
}

// ParseVocabulary decodes a YAML vocabulary.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	return v, nil
}

// LoadVocabulary reads a YAML vocabulary file. Lists missing from the file
// keep their built-in values.
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := ParseVocabulary(data)
	if err != nil {
		return Vocabulary{}, err
	}
	def := DefaultVocabulary()
	if v.PageTokens == nil {
		v.PageTokens = def.PageTokens
	}
	if v.TitleMarkers == nil {
		v.TitleMarkers = def.TitleMarkers
	}
	if v.Exact == nil {
		v.Exact = def.Exact
	}
	if v.PhoneLabels == nil {
		v.PhoneLabels = def.PhoneLabels
	}
	if v.Bullets == nil {
		v.Bullets = def.Bullets
	}
	return v, nil
}
