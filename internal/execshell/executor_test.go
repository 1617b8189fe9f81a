package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/websync/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant     = "success"
	testExecutionFailureCaseNameConstant     = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant = "runner_error"
	testCommandArgumentConstant              = "--version"
	testWorkingDirectoryConstant             = "."
	testStandardErrorOutputConstant          = "failure"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		runner      execshell.CommandRunner
		expectError error
	}{
		{
			name:        "logger_validation",
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        "runner_validation",
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:   "successful_initialization",
			logger: zap.NewNop(),
			runner: &recordingCommandRunner{},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner, false)
			if testCase.expectError != nil {
				require.ErrorIs(subtest, creationError, testCase.expectError)
				require.Nil(subtest, executor)
				return
			}
			require.NoError(subtest, creationError)
			require.NotNil(subtest, executor)
		})
	}
}

func TestShellExecutorExecuteGit(testInstance *testing.T) {
	testCases := []struct {
		name            string
		executionResult execshell.ExecutionResult
		executionError  error
		expectFailure   bool
		expectExecution bool
	}{
		{
			name:            testExecutionSuccessCaseNameConstant,
			executionResult: execshell.ExecutionResult{ExitCode: 0, StandardOutput: "git version"},
		},
		{
			name:            testExecutionFailureCaseNameConstant,
			executionResult: execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorOutputConstant},
			expectFailure:   true,
		},
		{
			name:            testExecutionRunnerErrorCaseNameConstant,
			executionError:  errors.New("runner exploded"),
			expectExecution: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.InfoLevel)
			runner := &recordingCommandRunner{executionResult: testCase.executionResult, executionError: testCase.executionError}
			executor, creationError := execshell.NewShellExecutor(zap.New(observedCore), runner, false)
			require.NoError(subtest, creationError)

			commandDetails := execshell.CommandDetails{
				Arguments:        []string{testCommandArgumentConstant},
				WorkingDirectory: testWorkingDirectoryConstant,
			}
			executionResult, executionError := executor.ExecuteGit(context.Background(), commandDetails)

			require.Len(subtest, runner.recordedCommands, 1)
			require.Equal(subtest, execshell.CommandGit, runner.recordedCommands[0].Name)
			require.GreaterOrEqual(subtest, observedLogs.Len(), 2)

			switch {
			case testCase.expectFailure:
				failedError := execshell.CommandFailedError{}
				require.ErrorAs(subtest, executionError, &failedError)
				require.Equal(subtest, 1, failedError.Result.ExitCode)
				require.Contains(subtest, failedError.Error(), testStandardErrorOutputConstant)
			case testCase.expectExecution:
				executionFailure := execshell.CommandExecutionError{}
				require.ErrorAs(subtest, executionError, &executionFailure)
				require.ErrorContains(subtest, executionFailure.Unwrap(), "runner exploded")
			default:
				require.NoError(subtest, executionError)
				require.Equal(subtest, testCase.executionResult, executionResult)
			}
		})
	}
}

func TestShellExecutorRejectsMissingCommandName(testInstance *testing.T) {
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{}, false)
	require.NoError(testInstance, creationError)

	_, executionError := executor.Execute(context.Background(), execshell.ShellCommand{})
	require.ErrorIs(testInstance, executionError, execshell.ErrCommandNameMissing)
}
