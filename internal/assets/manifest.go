package assets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	eagerScriptsTierNameConstant         = "eager scripts"
	lazyScriptsTierNameConstant          = "lazy scripts"
	deferredScriptsTierNameConstant      = "deferred scripts"
	stylesTierNameConstant               = "styles"
	fontsTierNameConstant                = "fonts"
	styleIncludePathsTierNameConstant    = "style include paths"
	manifestPathRequiredMessageConstant  = "manifest path must be provided"
	manifestEmptyMessageConstant         = "manifest declares no assets"
	manifestReadFailureTemplateConstant  = "failed to read asset manifest %q: %w"
	manifestParseFailureTemplateConstant = "failed to parse asset manifest %q: %w"
	emptyEntryTemplateConstant           = "%s entry %d is empty"
	duplicateEntryTemplateConstant       = "%s entry %q is declared more than once"
	duplicateScriptTemplateConstant      = "script %q appears in more than one loading tier"
	tierSummaryLineTemplateConstant      = "%-19s %d\n"
)

// ErrManifestPathRequired indicates the manifest path argument was empty.
var ErrManifestPathRequired = errors.New(manifestPathRequiredMessageConstant)

// ErrManifestEmpty indicates the manifest declares no assets in any tier.
var ErrManifestEmpty = errors.New(manifestEmptyMessageConstant)

// InvalidManifestEntryError indicates a malformed entry inside a tier.
type InvalidManifestEntryError struct {
	Message string
}

// Error describes the malformed entry.
func (entryError InvalidManifestEntryError) Error() string {
	return entryError.Message
}

// Manifest enumerates bundler inputs grouped by loading tier. Scripts split
// into three tiers: eager scripts load with the shell, lazy scripts load on
// first navigation, deferred scripts load on demand.
type Manifest struct {
	EagerScripts      []string `yaml:"eager_scripts"`
	LazyScripts       []string `yaml:"lazy_scripts"`
	DeferredScripts   []string `yaml:"deferred_scripts"`
	Styles            []string `yaml:"styles"`
	Fonts             []string `yaml:"fonts"`
	StyleIncludePaths []string `yaml:"style_include_paths"`
}

// LoadManifest reads and parses the manifest at the given path.
func LoadManifest(manifestPath string) (Manifest, error) {
	trimmedPath := strings.TrimSpace(manifestPath)
	if len(trimmedPath) == 0 {
		return Manifest{}, ErrManifestPathRequired
	}

	manifestContent, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Manifest{}, fmt.Errorf(manifestReadFailureTemplateConstant, trimmedPath, readError)
	}

	return ParseManifest(trimmedPath, manifestContent)
}

// ParseManifest decodes manifest YAML. The path only labels parse errors.
func ParseManifest(manifestPath string, manifestContent []byte) (Manifest, error) {
	parsedManifest := Manifest{}
	if parseError := yaml.Unmarshal(manifestContent, &parsedManifest); parseError != nil {
		return Manifest{}, fmt.Errorf(manifestParseFailureTemplateConstant, manifestPath, parseError)
	}
	return parsedManifest, nil
}

// Validate rejects manifests with empty entries, entries repeated within a
// tier, or scripts declared in more than one loading tier.
func (manifest Manifest) Validate() error {
	if manifest.EntryCount() == 0 {
		return ErrManifestEmpty
	}

	for _, tier := range manifest.tiers() {
		if tierError := validateTierEntries(tier.name, tier.entries); tierError != nil {
			return tierError
		}
	}

	seenScripts := map[string]bool{}
	scriptTiers := [][]string{manifest.EagerScripts, manifest.LazyScripts, manifest.DeferredScripts}
	for _, scriptEntries := range scriptTiers {
		for _, scriptEntry := range scriptEntries {
			normalizedEntry := strings.TrimSpace(scriptEntry)
			if seenScripts[normalizedEntry] {
				return InvalidManifestEntryError{Message: fmt.Sprintf(duplicateScriptTemplateConstant, normalizedEntry)}
			}
			seenScripts[normalizedEntry] = true
		}
	}

	return nil
}

// Summary renders one line per tier with its entry count.
func (manifest Manifest) Summary() string {
	summaryBuilder := strings.Builder{}
	for _, tier := range manifest.tiers() {
		summaryBuilder.WriteString(fmt.Sprintf(tierSummaryLineTemplateConstant, tier.name, len(tier.entries)))
	}
	return summaryBuilder.String()
}

type manifestTier struct {
	name    string
	entries []string
}

func (manifest Manifest) tiers() []manifestTier {
	return []manifestTier{
		{name: eagerScriptsTierNameConstant, entries: manifest.EagerScripts},
		{name: lazyScriptsTierNameConstant, entries: manifest.LazyScripts},
		{name: deferredScriptsTierNameConstant, entries: manifest.DeferredScripts},
		{name: stylesTierNameConstant, entries: manifest.Styles},
		{name: fontsTierNameConstant, entries: manifest.Fonts},
		{name: styleIncludePathsTierNameConstant, entries: manifest.StyleIncludePaths},
	}
}

// EntryCount reports the number of entries across every tier.
func (manifest Manifest) EntryCount() int {
	entryCount := 0
	for _, tier := range manifest.tiers() {
		entryCount += len(tier.entries)
	}
	return entryCount
}

func validateTierEntries(tierName string, tierEntries []string) error {
	seenEntries := map[string]bool{}
	for entryIndex, tierEntry := range tierEntries {
		normalizedEntry := strings.TrimSpace(tierEntry)
		if len(normalizedEntry) == 0 {
			return InvalidManifestEntryError{Message: fmt.Sprintf(emptyEntryTemplateConstant, tierName, entryIndex)}
		}
		if seenEntries[normalizedEntry] {
			return InvalidManifestEntryError{Message: fmt.Sprintf(duplicateEntryTemplateConstant, tierName, normalizedEntry)}
		}
		seenEntries[normalizedEntry] = true
	}
	return nil
}
