package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	assetscmd "github.com/tyemirov/websync/cmd/cli/assets"
	synccmd "github.com/tyemirov/websync/cmd/cli/sync"
	"github.com/tyemirov/websync/internal/utils"
	"github.com/tyemirov/websync/internal/version"
)

const (
	applicationNameConstant                             = "websync"
	applicationShortDescriptionConstant                 = "Command-line interface for webclient release synchronization"
	applicationLongDescriptionConstant                  = "websync keeps the public webclient mirror aligned with the internal integration branch and validates the webclient asset manifest."
	configFileFlagNameConstant                          = "config"
	configFileFlagUsageConstant                         = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                            = "log-level"
	logLevelFlagUsageConstant                           = "Override the configured log level."
	logFormatFlagNameConstant                           = "log-format"
	logFormatFlagUsageConstant                          = "Override the configured log format (structured or console)."
	versionFlagNameConstant                             = "version"
	versionFlagUsageConstant                            = "Print the application version and exit"
	versionOutputTemplateConstant                       = "websync version: %s\n"
	versionCommandUseNameConstant                       = "version"
	versionCommandShortDescriptionConstant              = "Print the websync version"
	versionCommandLongDescriptionConstant               = "version prints the current websync release identifier."
	environmentPrefixConstant                           = "WEBSYNC"
	configurationNameConstant                           = "config"
	configurationTypeConstant                           = "yaml"
	configurationLoadErrorTemplateConstant              = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant                 = "unable to create logger: %w"
	defaultConfigurationSearchPathConstant              = "."
	userConfigurationDirectoryNameConstant              = ".websync"
	xdgConfigHomeEnvironmentVariableConstant            = "XDG_CONFIG_HOME"
	syncOperationNameConstant                           = "sync"
	assetsManifestOperationNameConstant                 = "assets/manifest"
	syncCommandNameConstant                             = "sync"
	assetsCommandNameConstant                           = "assets"
	commandBuildErrorTemplateConstant                   = "unable to build %s command: %w"
	duplicateOperationConfigurationTemplateConstant     = "duplicate configuration for operation %q"
	missingOperationConfigurationTemplateConstant       = "missing configuration for operation %q"
	operationDecodeErrorMessageConstant                 = "unable to decode operation defaults"
	missingOperationConfigurationSkippedMessageConstant = "operation configuration missing; continuing without defaults"
	operationNameLogFieldConstant                       = "operation"
	operationErrorLogFieldConstant                      = "error"
)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand                     *cobra.Command
	configurationLoader             *utils.ConfigurationLoader
	loggerFactory                   *utils.LoggerFactory
	logger                          *zap.Logger
	configuration                   ApplicationConfiguration
	configurationMetadata           utils.LoadedConfiguration
	configurationFilePath           string
	logLevelFlagValue               string
	logFormatFlagValue              string
	operationConfigurations         OperationConfigurations
	embeddedOperationConfigurations OperationConfigurations
	versionFlag                     bool
	versionResolver                 func(context.Context) string
	exitFunction                    func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	application := &Application{
		loggerFactory: utils.NewLoggerFactory(),
		logger:        zap.NewNop(),
	}
	application.versionResolver = application.resolveVersion
	application.exitFunction = os.Exit

	application.configurationLoader = utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		application.resolveConfigurationSearchPaths(),
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	application.configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)
	application.embeddedOperationConfigurations = loadEmbeddedOperationConfigurations()

	rootCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if initializationError := application.initializeConfiguration(); initializationError != nil {
				return initializationError
			}

			if application.versionFlag {
				application.printVersion(command.Context())
				application.exitFunction(0)
			}

			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	rootCommand.SetContext(context.Background())
	rootCommand.SetOut(utils.NewFlushingWriter(os.Stdout))
	rootCommand.SetErr(utils.NewFlushingWriter(os.Stderr))
	rootCommand.PersistentFlags().SetNormalizeFunc(normalizeFlagName)
	rootCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	rootCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	rootCommand.PersistentFlags().BoolVar(&application.versionFlag, versionFlagNameConstant, false, versionFlagUsageConstant)

	versionCommand := &cobra.Command{
		Use:           versionCommandUseNameConstant,
		Short:         versionCommandShortDescriptionConstant,
		Long:          versionCommandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			application.printVersion(command.Context())
			return nil
		},
	}
	rootCommand.AddCommand(versionCommand)

	syncBuilder := synccmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider:        application.syncCommandConfiguration,
	}
	syncCommand, syncBuildError := syncBuilder.Build()
	if syncBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, syncCommandNameConstant, syncBuildError)
	}
	rootCommand.AddCommand(syncCommand)

	assetsBuilder := assetscmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: application.assetsCommandConfiguration,
	}
	assetsCommand, assetsBuildError := assetsBuilder.Build()
	if assetsBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, assetsCommandNameConstant, assetsBuildError)
	}
	rootCommand.AddCommand(assetsCommand)

	application.rootCommand = rootCommand
	return application, nil
}

// Execute runs the root command with the process context.
func (application *Application) Execute() error {
	return application.rootCommand.ExecuteContext(application.rootCommand.Context())
}

// Execute assembles the application and runs it.
func Execute() error {
	application, constructionError := NewApplication()
	if constructionError != nil {
		return constructionError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration() error {
	configuration := ApplicationConfiguration{}
	configurationMetadata, loadError := application.configurationLoader.LoadConfiguration(
		strings.TrimSpace(application.configurationFilePath),
		nil,
		&configuration,
	)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configuration = configuration
	application.configurationMetadata = configurationMetadata

	operationConfigurations, operationError := newOperationConfigurations(configuration.Operations)
	if operationError != nil {
		return operationError
	}
	application.operationConfigurations = operationConfigurations.MergeDefaults(application.embeddedOperationConfigurations)

	return application.initializeLogger()
}

func (application *Application) initializeLogger() error {
	logLevelValue := strings.TrimSpace(application.configuration.Common.LogLevel)
	if flagLogLevel := strings.TrimSpace(application.logLevelFlagValue); len(flagLogLevel) > 0 {
		logLevelValue = flagLogLevel
	}
	if len(logLevelValue) == 0 {
		logLevelValue = string(utils.LogLevelInfo)
	}

	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	if flagLogFormat := strings.TrimSpace(application.logFormatFlagValue); len(flagLogFormat) > 0 {
		logFormatValue = flagLogFormat
	}
	if len(logFormatValue) == 0 {
		logFormatValue = string(utils.LogFormatStructured)
	}

	logger, loggerError := application.loggerFactory.CreateLogger(utils.LogLevel(logLevelValue), utils.LogFormat(logFormatValue))
	if loggerError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerError)
	}

	application.logger = logger
	application.configuration.Common.LogLevel = logLevelValue
	application.configuration.Common.LogFormat = logFormatValue
	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return strings.TrimSpace(application.configuration.Common.LogFormat) == string(utils.LogFormatConsole)
}

func (application *Application) syncCommandConfiguration() synccmd.CommandConfiguration {
	configuration := synccmd.DefaultCommandConfiguration()
	application.decodeOperationConfiguration(syncOperationNameConstant, &configuration)
	return configuration
}

func (application *Application) assetsCommandConfiguration() assetscmd.CommandConfiguration {
	configuration := assetscmd.DefaultCommandConfiguration()
	application.decodeOperationConfiguration(assetsManifestOperationNameConstant, &configuration)
	return configuration
}

func (application *Application) decodeOperationConfiguration(operationName string, target any) {
	decodeError := application.operationConfigurations.decode(operationName, target)
	if decodeError == nil {
		return
	}

	if _, isMissing := decodeError.(MissingOperationConfigurationError); isMissing {
		application.logger.Debug(missingOperationConfigurationSkippedMessageConstant,
			zap.String(operationNameLogFieldConstant, operationName),
		)
		return
	}

	application.logger.Warn(operationDecodeErrorMessageConstant,
		zap.String(operationNameLogFieldConstant, operationName),
		zap.String(operationErrorLogFieldConstant, decodeError.Error()),
	)
}

func (application *Application) resolveConfigurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}

	if xdgConfigHome := strings.TrimSpace(os.Getenv(xdgConfigHomeEnvironmentVariableConstant)); len(xdgConfigHome) > 0 {
		searchPaths = append(searchPaths, filepath.Join(xdgConfigHome, applicationNameConstant))
	}

	if homeDirectory, homeError := os.UserHomeDir(); homeError == nil && len(strings.TrimSpace(homeDirectory)) > 0 {
		searchPaths = append(searchPaths, filepath.Join(homeDirectory, userConfigurationDirectoryNameConstant))
	}

	return searchPaths
}

func (application *Application) printVersion(executionContext context.Context) {
	resolvedVersion := application.versionResolver(executionContext)
	fmt.Fprintf(application.rootCommand.OutOrStdout(), versionOutputTemplateConstant, resolvedVersion)
}

func (application *Application) resolveVersion(executionContext context.Context) string {
	return version.Detect(executionContext, version.Dependencies{})
}

// normalizeFlagName accepts underscore spellings of multi-word flags.
func normalizeFlagName(flagSet *pflag.FlagSet, flagName string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(flagName, "_", "-"))
}
