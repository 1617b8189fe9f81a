package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tyemirov/websync/internal/execshell"
)

const (
	gitRevParseSubcommandConstant               = "rev-parse"
	gitAbbrevRefFlagConstant                    = "--abbrev-ref"
	gitHeadReferenceConstant                    = "HEAD"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCheckoutNewBranchFlagConstant            = "-b"
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteAddSubcommandConstant              = "add"
	gitRemoteGetURLSubcommandConstant           = "get-url"
	gitRemoteSetURLSubcommandConstant           = "set-url"
	gitRemotePushFlagConstant                   = "--push"
	gitFetchSubcommandConstant                  = "fetch"
	gitPullSubcommandConstant                   = "pull"
	gitPushSubcommandConstant                   = "push"
	gitLogSubcommandConstant                    = "log"
	gitLogFormatFlagConstant                    = "--format=%H%x09%s"
	gitLogMaxCountOneFlagConstant               = "--max-count=1"
	gitCherryPickSubcommandConstant             = "cherry-pick"
	gitCherryPickStrategyOptionFlagConstant     = "--strategy-option=theirs"
	gitCherryPickAllowEmptyFlagConstant         = "--allow-empty"
	gitCherryPickKeepRedundantFlagConstant      = "--keep-redundant-commits"
	gitCommitRangeTemplateConstant              = "%s..%s"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	commitLogFieldSeparatorConstant             = "\t"
	commitLogFieldCountConstant                 = 2
	repositoryPathFieldNameConstant             = "repository_path"
	branchNameFieldNameConstant                 = "branch_name"
	startPointFieldNameConstant                 = "start_point"
	remoteNameFieldNameConstant                 = "remote_name"
	remoteURLFieldNameConstant                  = "remote_url"
	commitHashFieldNameConstant                 = "commit_hash"
	requiredValueMessageConstant                = "value required"
	executorNotConfiguredMessageConstant        = "git executor not configured"
	repositoryOperationErrorTemplateConstant    = "%s operation failed"
	repositoryOperationErrorWithCauseConstant   = "%s operation failed: %s"
	invalidRepositoryInputTemplateConstant      = "%s: %s"
	currentBranchOperationNameConstant          = RepositoryOperationName("GetCurrentBranch")
	checkoutBranchOperationNameConstant         = RepositoryOperationName("CheckoutBranch")
	createTrackingBranchOperationNameConstant   = RepositoryOperationName("CreateTrackingBranch")
	remoteURLOperationNameConstant              = RepositoryOperationName("GetRemoteURL")
	addRemoteOperationNameConstant              = RepositoryOperationName("AddRemote")
	setRemotePushURLOperationNameConstant       = RepositoryOperationName("SetRemotePushURL")
	fetchRemoteOperationNameConstant            = RepositoryOperationName("FetchRemote")
	pullOperationNameConstant                   = RepositoryOperationName("Pull")
	pushBranchOperationNameConstant             = RepositoryOperationName("PushBranch")
	headCommitOperationNameConstant             = RepositoryOperationName("HeadCommit")
	listHistoryOperationNameConstant            = RepositoryOperationName("ListHistory")
	cherryPickRangeOperationNameConstant        = RepositoryOperationName("CherryPickRange")
)

var terminalColorCodePattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Commit pairs a commit identifier with the first line of its message.
type Commit struct {
	Hash    string
	Subject string
}

// GitCommandExecutor exposes the subset of execshell functionality required by RepositoryManager.
type GitCommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager coordinates Git operations through execshell.
type RepositoryManager struct {
	executor GitCommandExecutor
}

// ErrGitExecutorNotConfigured indicates the RepositoryManager was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidRepositoryInputError indicates validation failures for repository operations.
type InvalidRepositoryInputError struct {
	FieldName string
	Message   string
}

// Error describes the validation failure.
func (inputError InvalidRepositoryInputError) Error() string {
	return fmt.Sprintf(invalidRepositoryInputTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryOperationName captures descriptive names for repository operations.
type RepositoryOperationName string

// RepositoryOperationError wraps execution failures for git operations.
type RepositoryOperationError struct {
	Operation RepositoryOperationName
	Cause     error
}

// Error describes the repository operation failure.
func (operationError RepositoryOperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(repositoryOperationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(repositoryOperationErrorWithCauseConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying error.
func (operationError RepositoryOperationError) Unwrap() error {
	return operationError.Cause
}

// NewRepositoryManager constructs a RepositoryManager for the provided executor.
func NewRepositoryManager(executor GitCommandExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// StripTerminalColorCodes removes ANSI color escape sequences from command output.
func StripTerminalColorCodes(output string) string {
	return terminalColorCodePattern.ReplaceAllString(output, "")
}

// GetCurrentBranch resolves the current branch name.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return "", pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return "", RepositoryOperationError{Operation: currentBranchOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(StripTerminalColorCodes(executionResult.StandardOutput)), nil
}

// CheckoutBranch checks out an existing branch.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedBranch, branchError := requireValue(branchName, branchNameFieldNameConstant)
	if branchError != nil {
		return branchError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, trimmedBranch},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: checkoutBranchOperationNameConstant, Cause: executionError}
	}
	return nil
}

// CreateTrackingBranch creates and checks out a branch tracking the provided start point.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedBranch, branchError := requireValue(branchName, branchNameFieldNameConstant)
	if branchError != nil {
		return branchError
	}

	trimmedStartPoint, startPointError := requireValue(startPoint, startPointFieldNameConstant)
	if startPointError != nil {
		return startPointError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitCheckoutNewBranchFlagConstant, trimmedBranch, trimmedStartPoint},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: createTrackingBranchOperationNameConstant, Cause: executionError}
	}
	return nil
}

// GetRemoteURL returns the configured remote URL for the given remote name.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return "", pathError
	}

	trimmedRemote, remoteError := requireValue(remoteName, remoteNameFieldNameConstant)
	if remoteError != nil {
		return "", remoteError
	}

	executionResult, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, trimmedRemote},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return "", RepositoryOperationError{Operation: remoteURLOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(StripTerminalColorCodes(executionResult.StandardOutput)), nil
}

// AddRemote registers a remote pointing at the provided URL.
func (manager *RepositoryManager) AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedRemote, remoteError := requireValue(remoteName, remoteNameFieldNameConstant)
	if remoteError != nil {
		return remoteError
	}

	trimmedURL, urlError := requireValue(remoteURL, remoteURLFieldNameConstant)
	if urlError != nil {
		return urlError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteAddSubcommandConstant, trimmedRemote, trimmedURL},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: addRemoteOperationNameConstant, Cause: executionError}
	}
	return nil
}

// SetRemotePushURL configures the push target for a remote.
func (manager *RepositoryManager) SetRemotePushURL(executionContext context.Context, repositoryPath string, remoteName string, pushURL string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedRemote, remoteError := requireValue(remoteName, remoteNameFieldNameConstant)
	if remoteError != nil {
		return remoteError
	}

	trimmedURL, urlError := requireValue(pushURL, remoteURLFieldNameConstant)
	if urlError != nil {
		return urlError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteSetURLSubcommandConstant, gitRemotePushFlagConstant, trimmedRemote, trimmedURL},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: setRemotePushURLOperationNameConstant, Cause: executionError}
	}
	return nil
}

// FetchRemote downloads objects and refs from the named remote.
func (manager *RepositoryManager) FetchRemote(executionContext context.Context, repositoryPath string, remoteName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedRemote, remoteError := requireValue(remoteName, remoteNameFieldNameConstant)
	if remoteError != nil {
		return remoteError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitFetchSubcommandConstant, trimmedRemote},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: fetchRemoteOperationNameConstant, Cause: executionError}
	}
	return nil
}

// Pull integrates changes from the tracked upstream of the current branch.
// When remoteName and branchName are provided the pull targets that pair.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	commandArguments := []string{gitPullSubcommandConstant}
	trimmedRemote := strings.TrimSpace(remoteName)
	trimmedBranch := strings.TrimSpace(branchName)
	if len(trimmedRemote) > 0 && len(trimmedBranch) > 0 {
		commandArguments = append(commandArguments, trimmedRemote, trimmedBranch)
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        commandArguments,
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: pullOperationNameConstant, Cause: executionError}
	}
	return nil
}

// PushBranch uploads the named branch to the named remote.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedRemote, remoteError := requireValue(remoteName, remoteNameFieldNameConstant)
	if remoteError != nil {
		return remoteError
	}

	trimmedBranch, branchError := requireValue(branchName, branchNameFieldNameConstant)
	if branchError != nil {
		return branchError
	}

	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, trimmedRemote, trimmedBranch},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: pushBranchOperationNameConstant, Cause: executionError}
	}
	return nil
}

// HeadCommit returns the most recent commit on the current branch.
func (manager *RepositoryManager) HeadCommit(executionContext context.Context, repositoryPath string) (Commit, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return Commit{}, pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitLogMaxCountOneFlagConstant, gitLogFormatFlagConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return Commit{}, RepositoryOperationError{Operation: headCommitOperationNameConstant, Cause: executionError}
	}

	commits := parseCommitLog(executionResult.StandardOutput)
	if len(commits) == 0 {
		return Commit{}, nil
	}
	return commits[0], nil
}

// ListHistory returns the full commit history of the current branch, most recent first.
func (manager *RepositoryManager) ListHistory(executionContext context.Context, repositoryPath string) ([]Commit, error) {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return nil, pathError
	}

	executionResult, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitLogFormatFlagConstant},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return nil, RepositoryOperationError{Operation: listHistoryOperationNameConstant, Cause: executionError}
	}

	return parseCommitLog(executionResult.StandardOutput), nil
}

// CherryPickRange replays the open-to-closed range (startHash, endHash] onto the
// current branch, preferring "theirs" on conflicts and keeping empty commits.
func (manager *RepositoryManager) CherryPickRange(executionContext context.Context, repositoryPath string, startHash string, endHash string) error {
	trimmedPath, pathError := requireValue(repositoryPath, repositoryPathFieldNameConstant)
	if pathError != nil {
		return pathError
	}

	trimmedStart, startError := requireValue(startHash, commitHashFieldNameConstant)
	if startError != nil {
		return startError
	}

	trimmedEnd, endError := requireValue(endHash, commitHashFieldNameConstant)
	if endError != nil {
		return endError
	}

	commitRange := fmt.Sprintf(gitCommitRangeTemplateConstant, trimmedStart, trimmedEnd)
	_, executionError := manager.executeGit(executionContext, execshell.CommandDetails{
		Arguments: []string{
			gitCherryPickSubcommandConstant,
			gitCherryPickStrategyOptionFlagConstant,
			gitCherryPickAllowEmptyFlagConstant,
			gitCherryPickKeepRedundantFlagConstant,
			commitRange,
		},
		WorkingDirectory: trimmedPath,
	})
	if executionError != nil {
		return RepositoryOperationError{Operation: cherryPickRangeOperationNameConstant, Cause: executionError}
	}
	return nil
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	if details.EnvironmentVariables == nil {
		details.EnvironmentVariables = map[string]string{}
	}
	details.EnvironmentVariables[gitTerminalPromptEnvironmentNameConstant] = gitTerminalPromptEnvironmentDisableConstant
	return manager.executor.ExecuteGit(executionContext, details)
}

func parseCommitLog(output string) []Commit {
	strippedOutput := strings.TrimSpace(StripTerminalColorCodes(output))
	if len(strippedOutput) == 0 {
		return nil
	}

	lines := strings.Split(strippedOutput, "\n")
	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		fields := strings.SplitN(trimmedLine, commitLogFieldSeparatorConstant, commitLogFieldCountConstant)
		commit := Commit{Hash: strings.TrimSpace(fields[0])}
		if len(fields) == commitLogFieldCountConstant {
			commit.Subject = strings.TrimSpace(fields[1])
		}
		commits = append(commits, commit)
	}
	return commits
}

func requireValue(rawValue string, fieldName string) (string, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return "", InvalidRepositoryInputError{FieldName: fieldName, Message: requiredValueMessageConstant}
	}
	return trimmedValue, nil
}
