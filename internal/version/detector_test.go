package version_test

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/websync/internal/execshell"
	"github.com/tyemirov/websync/internal/version"
)

type stubBuildInfoProvider struct {
	info      *debug.BuildInfo
	available bool
}

func (provider stubBuildInfoProvider) Read() (*debug.BuildInfo, bool) {
	if !provider.available {
		return nil, false
	}
	return provider.info, true
}

type stubGitExecutor struct {
	testInstance *testing.T
	commands     []stubGitCommand
}

type stubGitCommand struct {
	expectedArguments []string
	output            string
	executionError    error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.testInstance.Helper()
	require.Greater(executor.testInstance, len(executor.commands), 0)

	executedArguments := append([]string{}, details.Arguments...)
	command := executor.commands[0]
	executor.commands = executor.commands[1:]

	require.Equal(executor.testInstance, command.expectedArguments, executedArguments)
	return execshell.ExecutionResult{StandardOutput: command.output}, command.executionError
}

func TestVersionUsesBuildInfoWhenAvailable(testInstance *testing.T) {
	provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, available: true}
	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: provider,
		GitExecutor:       &stubGitExecutor{testInstance: testInstance},
		WorkingDirectory:  testInstance.TempDir(),
	})
	require.NoError(testInstance, creationError)

	require.Equal(testInstance, "v1.2.3", detector.Version(context.Background()))
}

func TestVersionNormalizesBuildInfoSemver(testInstance *testing.T) {
	provider := stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "v1.2"}}, available: true}
	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: provider,
		GitExecutor:       &stubGitExecutor{testInstance: testInstance},
		WorkingDirectory:  testInstance.TempDir(),
	})
	require.NoError(testInstance, creationError)

	require.Equal(testInstance, "v1.2.0", detector.Version(context.Background()))
}

func TestVersionFallsBackToExactDescribe(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	executor := &stubGitExecutor{
		testInstance: testInstance,
		commands: []stubGitCommand{
			{expectedArguments: []string{"rev-parse", "--show-toplevel"}, output: workingDirectory},
			{expectedArguments: []string{"describe", "--tags", "--exact-match"}, output: "v2.4.0"},
		},
	}

	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{info: &debug.BuildInfo{Main: debug.Module{Version: "devel"}}, available: true},
		GitExecutor:       executor,
		WorkingDirectory:  workingDirectory,
	})
	require.NoError(testInstance, creationError)

	require.Equal(testInstance, "v2.4.0", detector.Version(context.Background()))
}

func TestVersionFallsBackToLongDescribe(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	executor := &stubGitExecutor{
		testInstance: testInstance,
		commands: []stubGitCommand{
			{expectedArguments: []string{"rev-parse", "--show-toplevel"}, output: workingDirectory},
			{expectedArguments: []string{"describe", "--tags", "--exact-match"}, executionError: errors.New("no tag matches")},
			{expectedArguments: []string{"describe", "--tags", "--long", "--dirty"}, output: "v2.4.0-3-gabcdef0"},
		},
	}

	detector, creationError := version.NewDetector(version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{available: false},
		GitExecutor:       executor,
		WorkingDirectory:  workingDirectory,
	})
	require.NoError(testInstance, creationError)

	require.Equal(testInstance, "v2.4.0-3-gabcdef0", detector.Version(context.Background()))
}

func TestVersionReportsUnknownWhenNothingResolves(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	executor := &stubGitExecutor{
		testInstance: testInstance,
		commands: []stubGitCommand{
			{expectedArguments: []string{"rev-parse", "--show-toplevel"}, executionError: errors.New("not a repository")},
			{expectedArguments: []string{"describe", "--tags", "--exact-match"}, executionError: errors.New("no tag matches")},
			{expectedArguments: []string{"describe", "--tags", "--long", "--dirty"}, executionError: errors.New("no tag matches")},
		},
	}

	resolvedVersion := version.Detect(context.Background(), version.Dependencies{
		BuildInfoProvider: stubBuildInfoProvider{available: false},
		GitExecutor:       executor,
		WorkingDirectory:  workingDirectory,
	})

	require.Equal(testInstance, "unknown", resolvedVersion)
}
