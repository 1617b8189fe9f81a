package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/websync/internal/execshell"
)

func TestCommandMessageFormatterDescribesGitCommands(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}

	testCases := []struct {
		name            string
		arguments       []string
		expectedStarted string
	}{
		{
			name:            "checkout_branch",
			arguments:       []string{"checkout", "v3"},
			expectedStarted: "Switching /repo to branch v3",
		},
		{
			name:            "checkout_tracking_branch",
			arguments:       []string{"checkout", "-b", "public", "webclient/public"},
			expectedStarted: "Creating tracking branch public in /repo",
		},
		{
			name:            "cherry_pick_range",
			arguments:       []string{"cherry-pick", "--allow-empty", "abc..def"},
			expectedStarted: "Replaying commits abc..def in /repo",
		},
		{
			name:            "push_branch",
			arguments:       []string{"push", "webclient", "public"},
			expectedStarted: "Pushing public to webclient from /repo",
		},
		{
			name:            "remote_lookup",
			arguments:       []string{"remote", "get-url", "webclient"},
			expectedStarted: "Checking webclient remote in /repo",
		},
		{
			name:            "history_query",
			arguments:       []string{"log", "--format=%H%x09%s"},
			expectedStarted: "Reading commit history in /repo",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			command := execshell.ShellCommand{
				Name:    execshell.CommandGit,
				Details: execshell.CommandDetails{Arguments: testCase.arguments, WorkingDirectory: "/repo"},
			}
			require.Equal(subtest, testCase.expectedStarted, formatter.BuildStartedMessage(command))
		})
	}
}

func TestCommandMessageFormatterDistinguishesTrackingBranchFailures(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"checkout", "-b", "public", "webclient/public"}, WorkingDirectory: "/repo"},
	}
	failureResult := execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: a branch named 'public' already exists"}

	require.Equal(testInstance,
		"Failed to create tracking branch public in /repo (exit code 128: fatal: a branch named 'public' already exists)",
		formatter.BuildFailureMessage(command, failureResult))
	require.Equal(testInstance,
		"Unable to create tracking branch public in /repo: fork failed",
		formatter.BuildExecutionFailureMessage(command, errors.New("fork failed")))
}

func TestCommandMessageFormatterFallsBackToGenericMessages(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	command := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"gc"}},
	}

	require.Equal(testInstance, "Running git gc", formatter.BuildStartedMessage(command))
	require.Equal(testInstance, "Completed git gc", formatter.BuildSuccessMessage(command))
}
