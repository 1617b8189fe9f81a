package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCheckoutSubcommandNameConstant   = "checkout"
	gitPullSubcommandNameConstant       = "pull"
	gitFetchSubcommandNameConstant      = "fetch"
	gitPushSubcommandNameConstant       = "push"
	gitCherryPickSubcommandNameConstant = "cherry-pick"
	gitRemoteSubcommandNameConstant     = "remote"
	gitRevParseSubcommandNameConstant   = "rev-parse"
	gitLogSubcommandNameConstant        = "log"
	gitRemoteAddSubcommandNameConstant  = "add"
	gitRemoteGetURLSubcommandConstant   = "get-url"
	gitRemoteSetURLSubcommandConstant   = "set-url"
	gitCheckoutNewBranchFlagConstant    = "-b"
)

const (
	gitCheckoutStartTemplateConstant              = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant            = "%s now on branch %s"
	gitCheckoutFailureTemplateConstant            = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant   = "Unable to switch %s to branch %s: %s"
	gitCheckoutCreateStartTemplateConstant        = "Creating tracking branch %s in %s"
	gitCheckoutCreateSuccessTemplateConstant      = "Created tracking branch %s in %s"
	gitCheckoutCreateFailureTemplateConstant      = "Failed to create tracking branch %s in %s (exit code %d%s)"
	gitCheckoutCreateExecutionFailureConstant     = "Unable to create tracking branch %s in %s: %s"
	gitPullStartTemplateConstant                  = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant                = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant                = "Failed to pull latest changes in %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant       = "Unable to pull latest changes in %s: %s"
	gitFetchStartTemplateConstant                 = "Fetching %s in %s"
	gitFetchSuccessTemplateConstant               = "Fetched %s in %s"
	gitFetchFailureTemplateConstant               = "Failed to fetch %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant      = "Unable to fetch %s in %s: %s"
	gitFetchAllRemotesLabelConstant               = "all remotes"
	gitPushStartTemplateConstant                  = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant       = "Unable to push %s to %s from %s: %s"
	gitCherryPickStartTemplateConstant            = "Replaying commits %s in %s"
	gitCherryPickSuccessTemplateConstant          = "Replayed commits %s in %s"
	gitCherryPickFailureTemplateConstant          = "Cherry-pick of %s stopped in %s (exit code %d%s)"
	gitCherryPickExecutionFailureTemplateConstant = "Unable to replay commits %s in %s: %s"
	gitRemoteLookupStartTemplateConstant          = "Checking %s remote in %s"
	gitRemoteLookupSuccessTemplateConstant        = "%s remote is configured in %s"
	gitRemoteLookupFailureTemplateConstant        = "Remote %s is not configured in %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureConstant       = "Unable to read %s remote in %s: %s"
	gitRemoteRegisterStartTemplateConstant        = "Registering %s remote in %s"
	gitRemoteRegisterSuccessTemplateConstant      = "Registered %s remote in %s"
	gitRemoteRegisterFailureTemplateConstant      = "Failed to register %s remote in %s (exit code %d%s)"
	gitRemoteUpdateStartTemplateConstant          = "Updating %s remote in %s"
	gitRemoteUpdateSuccessTemplateConstant        = "Updated %s remote in %s"
	gitRemoteUpdateFailureTemplateConstant        = "Failed to update %s remote in %s (exit code %d%s)"
	gitLogStartTemplateConstant                   = "Reading commit history in %s"
	gitLogSuccessTemplateConstant                 = "Read commit history in %s"
	gitLogFailureTemplateConstant                 = "Failed to read commit history in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant        = "Unable to read commit history in %s: %s"
	gitCurrentBranchStartTemplateConstant         = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant       = "Identified current branch in %s"
	gitCurrentBranchFailureTemplateConstant       = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureConstant      = "Unable to identify current branch in %s: %s"
)

// CommandMessageFormatter renders human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage renders the message logged before execution.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage renders the message logged after successful execution.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage renders the message logged when the command exits non-zero.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage renders the message logged when the runner fails outright.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit {
		if described := formatter.describeGitMessage(command, result, failure, stage); len(described) > 0 {
			return described
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return ""
	}

	switch arguments[0] {
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitPullStartTemplateConstant, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitPullSuccessTemplateConstant, formatter.describeWorkingDirectory(command)),
			gitPullFailureTemplateConstant,
			gitPullExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command))
	case gitFetchSubcommandNameConstant:
		fetchTarget := formatter.argumentAtIndex(arguments, 1)
		if len(fetchTarget) == 0 {
			fetchTarget = gitFetchAllRemotesLabelConstant
		}
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitFetchStartTemplateConstant, fetchTarget, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitFetchSuccessTemplateConstant, fetchTarget, formatter.describeWorkingDirectory(command)),
			gitFetchFailureTemplateConstant,
			gitFetchExecutionFailureTemplateConstant,
			fetchTarget, formatter.describeWorkingDirectory(command))
	case gitPushSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
		reference := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitPushStartTemplateConstant, reference, remoteName, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitPushSuccessTemplateConstant, reference, remoteName, formatter.describeWorkingDirectory(command)),
			gitPushFailureTemplateConstant,
			gitPushExecutionFailureTemplateConstant,
			reference, remoteName, formatter.describeWorkingDirectory(command))
	case gitCherryPickSubcommandNameConstant:
		commitRange := formatter.ensureValue(formatter.lastArgument(arguments))
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitCherryPickStartTemplateConstant, commitRange, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitCherryPickSuccessTemplateConstant, commitRange, formatter.describeWorkingDirectory(command)),
			gitCherryPickFailureTemplateConstant,
			gitCherryPickExecutionFailureTemplateConstant,
			commitRange, formatter.describeWorkingDirectory(command))
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	case gitLogSubcommandNameConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitLogStartTemplateConstant, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitLogSuccessTemplateConstant, formatter.describeWorkingDirectory(command)),
			gitLogFailureTemplateConstant,
			gitLogExecutionFailureTemplateConstant,
			formatter.describeWorkingDirectory(command))
	case gitRevParseSubcommandNameConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitCurrentBranchStartTemplateConstant, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, formatter.describeWorkingDirectory(command)),
			gitCurrentBranchFailureTemplateConstant,
			gitCurrentBranchExecutionFailureConstant,
			formatter.describeWorkingDirectory(command))
	}

	return ""
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) > 1 && arguments[1] == gitCheckoutNewBranchFlagConstant {
		branchName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitCheckoutCreateStartTemplateConstant, branchName, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitCheckoutCreateSuccessTemplateConstant, branchName, formatter.describeWorkingDirectory(command)),
			gitCheckoutCreateFailureTemplateConstant,
			gitCheckoutCreateExecutionFailureConstant,
			branchName, formatter.describeWorkingDirectory(command))
	}

	branchName := formatter.ensureValue(formatter.lastArgument(arguments))
	return formatter.describeStageMessage(stage, result, failure,
		fmt.Sprintf(gitCheckoutStartTemplateConstant, formatter.describeWorkingDirectory(command), branchName),
		fmt.Sprintf(gitCheckoutSuccessTemplateConstant, formatter.describeWorkingDirectory(command), branchName),
		gitCheckoutFailureTemplateConstant,
		gitCheckoutExecutionFailureTemplateConstant,
		formatter.describeWorkingDirectory(command), branchName)
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	subcommand := formatter.argumentAtIndex(arguments, 1)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))

	switch subcommand {
	case gitRemoteGetURLSubcommandConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			gitRemoteLookupFailureTemplateConstant,
			gitRemoteLookupExecutionFailureConstant,
			remoteName, formatter.describeWorkingDirectory(command))
	case gitRemoteAddSubcommandNameConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitRemoteRegisterStartTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitRemoteRegisterSuccessTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			gitRemoteRegisterFailureTemplateConstant,
			gitRemoteLookupExecutionFailureConstant,
			remoteName, formatter.describeWorkingDirectory(command))
	case gitRemoteSetURLSubcommandConstant:
		return formatter.describeStageMessage(stage, result, failure,
			fmt.Sprintf(gitRemoteUpdateStartTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			fmt.Sprintf(gitRemoteUpdateSuccessTemplateConstant, remoteName, formatter.describeWorkingDirectory(command)),
			gitRemoteUpdateFailureTemplateConstant,
			gitRemoteLookupExecutionFailureConstant,
			remoteName, formatter.describeWorkingDirectory(command))
	}

	return ""
}

func (formatter CommandMessageFormatter) describeStageMessage(
	stage messageStage,
	result ExecutionResult,
	failure error,
	startMessage string,
	successMessage string,
	failureTemplate string,
	executionFailureTemplate string,
	templateArguments ...any,
) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		failureArguments := append(append([]any{}, templateArguments...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	case messageStageExecutionFailure:
		executionArguments := append(append([]any{}, templateArguments...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionArguments...)
	}
	return ""
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	if len(command.Details.WorkingDirectory) > 0 {
		commandLabel = commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, command.Details.WorkingDirectory)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
	return commandLabel
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmed := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	for position := 1; position < len(arguments); position++ {
		if strings.HasPrefix(arguments[position], "-") {
			continue
		}
		index--
		if index == 0 {
			return arguments[position]
		}
	}
	return ""
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	for position := len(arguments) - 1; position > 0; position-- {
		if !strings.HasPrefix(arguments[position], "-") {
			return arguments[position]
		}
	}
	return ""
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}
