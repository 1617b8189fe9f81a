package sync

import "strings"

const (
	defaultIntegrationBranchConstant = "v3"
	defaultPublicBranchConstant      = "public"
	defaultRemoteNameConstant        = "webclient"
)

// CommandConfiguration captures configuration values for the sync command.
type CommandConfiguration struct {
	RepositoryPath    string `mapstructure:"repository"`
	IntegrationBranch string `mapstructure:"integration_branch"`
	PublicBranch      string `mapstructure:"public_branch"`
	RemoteName        string `mapstructure:"remote"`
	MirrorURL         string `mapstructure:"mirror_url"`
	MirrorPushURL     string `mapstructure:"mirror_push_url"`
	Tag               string `mapstructure:"tag"`
}

// DefaultCommandConfiguration returns the built-in branch and remote names.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		IntegrationBranch: defaultIntegrationBranchConstant,
		PublicBranch:      defaultPublicBranchConstant,
		RemoteName:        defaultRemoteNameConstant,
	}
}

// Sanitize trims textual configuration values and fills empty branch and
// remote names from the defaults.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{
		RepositoryPath:    strings.TrimSpace(configuration.RepositoryPath),
		IntegrationBranch: strings.TrimSpace(configuration.IntegrationBranch),
		PublicBranch:      strings.TrimSpace(configuration.PublicBranch),
		RemoteName:        strings.TrimSpace(configuration.RemoteName),
		MirrorURL:         strings.TrimSpace(configuration.MirrorURL),
		MirrorPushURL:     strings.TrimSpace(configuration.MirrorPushURL),
		Tag:               strings.TrimSpace(configuration.Tag),
	}
	if len(sanitized.IntegrationBranch) == 0 {
		sanitized.IntegrationBranch = defaultIntegrationBranchConstant
	}
	if len(sanitized.PublicBranch) == 0 {
		sanitized.PublicBranch = defaultPublicBranchConstant
	}
	if len(sanitized.RemoteName) == 0 {
		sanitized.RemoteName = defaultRemoteNameConstant
	}
	return sanitized
}
