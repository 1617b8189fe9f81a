package assets

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/websync/internal/assets"
)

const (
	namespaceUseConstant                 = "assets"
	namespaceShortDescriptionConstant    = "Asset manifest commands"
	manifestCommandUseConstant           = "manifest"
	manifestCommandShortDescription      = "Validate and summarize the asset manifest"
	manifestCommandLongDescription       = "assets manifest loads the third-party asset manifest, validates every loading tier, and prints one line per tier with its entry count."
	manifestFlagNameConstant             = "manifest"
	manifestFlagDescriptionConstant      = "Path to the asset manifest file"
	manifestValidMessageTemplateConstant = "manifest %s is valid\n"
	manifestValidatedLogMessageConstant  = "asset manifest validated"
	manifestPathLogFieldNameConstant     = "manifest_path"
	manifestEntryCountLogFieldConstant   = "entry_count"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the assets command namespace.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the assets namespace with the manifest subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	namespaceCommand := &cobra.Command{
		Use:           namespaceUseConstant,
		Short:         namespaceShortDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	manifestCommand := &cobra.Command{
		Use:           manifestCommandUseConstant,
		Short:         manifestCommandShortDescription,
		Long:          manifestCommandLongDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.runManifest,
	}
	manifestCommand.Flags().String(manifestFlagNameConstant, "", manifestFlagDescriptionConstant)

	namespaceCommand.AddCommand(manifestCommand)
	return namespaceCommand, nil
}

func (builder *CommandBuilder) runManifest(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	manifestPath := configuration.ManifestPath
	if command.Flags().Changed(manifestFlagNameConstant) {
		flagValue, flagError := command.Flags().GetString(manifestFlagNameConstant)
		if flagError != nil {
			return flagError
		}
		if trimmedValue := strings.TrimSpace(flagValue); len(trimmedValue) > 0 {
			manifestPath = trimmedValue
		}
	}

	manifest, loadError := assets.LoadManifest(manifestPath)
	if loadError != nil {
		return loadError
	}

	if validationError := manifest.Validate(); validationError != nil {
		return validationError
	}

	builder.resolveLogger().Info(manifestValidatedLogMessageConstant,
		zap.String(manifestPathLogFieldNameConstant, manifestPath),
		zap.Int(manifestEntryCountLogFieldConstant, manifest.EntryCount()),
	)

	fmt.Fprintf(command.OutOrStdout(), manifestValidMessageTemplateConstant, manifestPath)
	fmt.Fprint(command.OutOrStdout(), manifest.Summary())
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
