package assets_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	assetscmd "github.com/tyemirov/websync/cmd/cli/assets"
	"github.com/tyemirov/websync/internal/assets"
)

const validManifestContentConstant = `eager_scripts:
  - vendor/zone.js/dist/zone.min.js
styles:
  - vendor/normalize.css/normalize.css
`

func executeManifestCommand(testInstance *testing.T, configuration assetscmd.CommandConfiguration, commandArguments ...string) (string, error) {
	builder := assetscmd.CommandBuilder{
		ConfigurationProvider: func() assetscmd.CommandConfiguration {
			return configuration
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(append([]string{"manifest"}, commandArguments...))
	command.SetContext(context.Background())

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestManifestCommandSummarizesValidManifest(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "assets.yaml")
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(validManifestContentConstant), 0o600))

	output, executionError := executeManifestCommand(testInstance, assetscmd.CommandConfiguration{ManifestPath: manifestPath})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "manifest "+manifestPath+" is valid")
	require.Contains(testInstance, output, "eager scripts")
	require.Contains(testInstance, output, "styles")
}

func TestManifestCommandLogsValidationOutcome(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "assets.yaml")
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(validManifestContentConstant), 0o600))

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	builder := assetscmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.New(observedCore)
		},
		ConfigurationProvider: func() assetscmd.CommandConfiguration {
			return assetscmd.CommandConfiguration{ManifestPath: manifestPath}
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{"manifest"})
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Execute())

	logEntries := observedLogs.FilterMessage("asset manifest validated").All()
	require.Len(testInstance, logEntries, 1)
	logFields := logEntries[0].ContextMap()
	require.Equal(testInstance, manifestPath, logFields["manifest_path"])
	require.Equal(testInstance, int64(2), logFields["entry_count"])
}

func TestManifestCommandFlagOverridesConfiguredPath(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "override.yaml")
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(validManifestContentConstant), 0o600))

	output, executionError := executeManifestCommand(
		testInstance,
		assetscmd.CommandConfiguration{ManifestPath: "does-not-exist.yaml"},
		"--manifest", manifestPath,
	)

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "manifest "+manifestPath+" is valid")
}

func TestManifestCommandReportsValidationFailure(testInstance *testing.T) {
	manifestPath := filepath.Join(testInstance.TempDir(), "assets.yaml")
	duplicateContent := "styles:\n  - vendor/a.css\n  - vendor/a.css\n"
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(duplicateContent), 0o600))

	_, executionError := executeManifestCommand(testInstance, assetscmd.CommandConfiguration{ManifestPath: manifestPath})

	entryError := assets.InvalidManifestEntryError{}
	require.ErrorAs(testInstance, executionError, &entryError)
	require.Contains(testInstance, entryError.Message, "declared more than once")
}
