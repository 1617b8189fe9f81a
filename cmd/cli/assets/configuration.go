package assets

import "strings"

const defaultManifestPathConstant = "assets.yaml"

// CommandConfiguration captures configuration values for the assets commands.
type CommandConfiguration struct {
	ManifestPath string `mapstructure:"manifest"`
}

// DefaultCommandConfiguration returns the built-in manifest location.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{ManifestPath: defaultManifestPathConstant}
}

// Sanitize trims the manifest path and falls back to the default location.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{ManifestPath: strings.TrimSpace(configuration.ManifestPath)}
	if len(sanitized.ManifestPath) == 0 {
		sanitized.ManifestPath = defaultManifestPathConstant
	}
	return sanitized
}
