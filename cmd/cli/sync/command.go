package sync

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/websync/internal/execshell"
	"github.com/tyemirov/websync/internal/gitrepo"
	"github.com/tyemirov/websync/internal/releases"
)

const (
	commandUseConstant              = "sync"
	commandShortDescriptionConstant = "Synchronize the integration branch with the public mirror"
	commandLongDescriptionConstant  = "sync replays the commits between the public mirror's release and the integration branch's release onto the public branch and pushes them to the mirror remote.\n\n" +
		"When a cherry-pick stops on a conflict, resolve the conflict, run 'git cherry-pick --continue', push the public branch to the mirror remote, and check out the integration branch again."
	tagFlagNameConstant                   = "tag"
	tagFlagDescriptionConstant            = "Release label to sync instead of the integration branch head"
	remoteFlagNameConstant                = "remote"
	remoteFlagDescriptionConstant         = "Name of the mirror remote"
	repositoryFlagNameConstant            = "repository"
	repositoryFlagDescriptionConstant     = "Path to the webclient repository (defaults to the working directory)"
	workingDirectoryErrorTemplate         = "unable to determine working directory: %w"
	releasePointerOutputTemplateConstant  = "%s release: %s (%s)\n"
	publicReleaseDisplayNameConstant      = "public"
	integrationReleaseDisplayNameConstant = "integration"
	syncSuccessMessageConstant            = "public mirror is in sync\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	RepositoryManager            releases.RepositoryManager
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().String(tagFlagNameConstant, "", tagFlagDescriptionConstant)
	command.Flags().String(remoteFlagNameConstant, "", remoteFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	if overrideError := applyFlagOverrides(command, &configuration); overrideError != nil {
		return overrideError
	}

	if len(configuration.RepositoryPath) == 0 {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return fmt.Errorf(workingDirectoryErrorTemplate, workingDirectoryError)
		}
		configuration.RepositoryPath = workingDirectory
	}

	repositoryManager, managerError := builder.resolveRepositoryManager()
	if managerError != nil {
		return managerError
	}

	syncService, serviceError := releases.NewSyncService(
		releases.SyncDependencies{RepositoryManager: repositoryManager, Logger: builder.resolveLogger()},
		releases.SyncOptions{
			RepositoryPath:    configuration.RepositoryPath,
			IntegrationBranch: configuration.IntegrationBranch,
			PublicBranch:      configuration.PublicBranch,
			RemoteName:        configuration.RemoteName,
			MirrorURL:         configuration.MirrorURL,
			MirrorPushURL:     configuration.MirrorPushURL,
		},
	)
	if serviceError != nil {
		return serviceError
	}

	resolver, resolverError := releases.NewResolver(
		releases.ResolverDependencies{RepositoryManager: repositoryManager},
		releases.ResolverOptions{
			RepositoryPath:    configuration.RepositoryPath,
			IntegrationBranch: configuration.IntegrationBranch,
			PublicBranch:      configuration.PublicBranch,
		},
	)
	if resolverError != nil {
		return resolverError
	}

	executionContext := command.Context()

	if preconditionError := syncService.EnsureIntegrationBranch(executionContext); preconditionError != nil {
		_ = command.Help()
		return preconditionError
	}

	if _, bootstrapError := syncService.EnsurePublicRemote(executionContext); bootstrapError != nil {
		_ = command.Help()
		return bootstrapError
	}

	publicRelease, publicResolutionError := resolver.ResolvePublicRelease(executionContext)
	if publicResolutionError != nil {
		_ = command.Help()
		return publicResolutionError
	}

	integrationRelease, integrationResolutionError := resolver.ResolveIntegrationRelease(executionContext, configuration.Tag)
	if integrationResolutionError != nil {
		_ = command.Help()
		return integrationResolutionError
	}

	fmt.Fprintf(command.OutOrStdout(), releasePointerOutputTemplateConstant, publicReleaseDisplayNameConstant, publicRelease.Hash, publicRelease.Label)
	fmt.Fprintf(command.OutOrStdout(), releasePointerOutputTemplateConstant, integrationReleaseDisplayNameConstant, integrationRelease.Hash, integrationRelease.Label)

	if _, syncError := syncService.SyncReleases(executionContext, publicRelease, integrationRelease); syncError != nil {
		_ = command.Help()
		return syncError
	}

	fmt.Fprint(command.OutOrStdout(), syncSuccessMessageConstant)
	return nil
}

func applyFlagOverrides(command *cobra.Command, configuration *CommandConfiguration) error {
	stringOverrides := map[string]*string{
		tagFlagNameConstant:        &configuration.Tag,
		remoteFlagNameConstant:     &configuration.RemoteName,
		repositoryFlagNameConstant: &configuration.RepositoryPath,
	}
	for flagName, target := range stringOverrides {
		if !command.Flags().Changed(flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(flagName)
		if flagError != nil {
			return flagError
		}
		*target = strings.TrimSpace(flagValue)
	}
	return nil
}

func (builder *CommandBuilder) resolveRepositoryManager() (releases.RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	shellExecutor, executorError := execshell.NewShellExecutor(builder.resolveLogger(), execshell.NewOSCommandRunner(), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, creationError := gitrepo.NewRepositoryManager(shellExecutor)
	if creationError != nil {
		return nil, creationError
	}
	return repositoryManager, nil
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
