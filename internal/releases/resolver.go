package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/websync/internal/gitrepo"
)

const (
	repositoryManagerMissingMessageConstant   = "repository manager not configured"
	repositoryPathRequiredMessageConstant     = "repository path must be provided"
	integrationBranchRequiredMessageConstant  = "integration branch must be provided"
	publicBranchRequiredMessageConstant       = "public branch must be provided"
	releaseNotFoundMessageConstant            = "no release commit matches the requested label"
	ambiguousReleaseMessageConstant           = "multiple release commits match the requested label"
	emptyPublicHistoryMessageConstant         = "public branch has no commits"
	currentBranchLookupFailureTemplate        = "failed to resolve current branch: %w"
	branchCheckoutFailureTemplate             = "failed to checkout branch %q: %w"
	branchRestoreFailureTemplate              = "failed to restore branch %q: %w"
	headCommitLookupFailureTemplate           = "failed to read head commit: %w"
	historyLookupFailureTemplate              = "failed to read commit history: %w"
)

var (
	// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
	ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)
	// ErrRepositoryPathRequired indicates the repository path option was empty.
	ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)
	// ErrIntegrationBranchRequired indicates the integration branch option was empty.
	ErrIntegrationBranchRequired = errors.New(integrationBranchRequiredMessageConstant)
	// ErrPublicBranchRequired indicates the public branch option was empty.
	ErrPublicBranchRequired = errors.New(publicBranchRequiredMessageConstant)
	// ErrReleaseNotFound indicates no history entry matched the correlation label.
	ErrReleaseNotFound = errors.New(releaseNotFoundMessageConstant)
	// ErrAmbiguousRelease indicates more than one history entry matched the correlation label.
	ErrAmbiguousRelease = errors.New(ambiguousReleaseMessageConstant)
	// ErrEmptyPublicHistory indicates the public branch carries no commits to correlate.
	ErrEmptyPublicHistory = errors.New(emptyPublicHistoryMessageConstant)
)

// RepositoryManager enumerates the git operations the workflow requires.
type RepositoryManager interface {
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	SetRemotePushURL(executionContext context.Context, repositoryPath string, remoteName string, pushURL string) error
	FetchRemote(executionContext context.Context, repositoryPath string, remoteName string) error
	Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	HeadCommit(executionContext context.Context, repositoryPath string) (gitrepo.Commit, error)
	ListHistory(executionContext context.Context, repositoryPath string) ([]gitrepo.Commit, error)
	CherryPickRange(executionContext context.Context, repositoryPath string, startHash string, endHash string) error
}

// ResolverDependencies enumerates collaborators required by the Resolver.
type ResolverDependencies struct {
	RepositoryManager RepositoryManager
}

// ResolverOptions locate the histories release pointers are resolved from.
type ResolverOptions struct {
	RepositoryPath    string
	IntegrationBranch string
	PublicBranch      string
}

// Resolver locates release pointers on the integration and public histories.
type Resolver struct {
	repositoryManager RepositoryManager
	repositoryPath    string
	integrationBranch string
	publicBranch      string
}

// NewResolver constructs a Resolver from dependencies and options.
func NewResolver(dependencies ResolverDependencies, options ResolverOptions) (*Resolver, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}

	trimmedPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}

	trimmedIntegrationBranch := strings.TrimSpace(options.IntegrationBranch)
	if len(trimmedIntegrationBranch) == 0 {
		return nil, ErrIntegrationBranchRequired
	}

	trimmedPublicBranch := strings.TrimSpace(options.PublicBranch)
	if len(trimmedPublicBranch) == 0 {
		return nil, ErrPublicBranchRequired
	}

	return &Resolver{
		repositoryManager: dependencies.RepositoryManager,
		repositoryPath:    trimmedPath,
		integrationBranch: trimmedIntegrationBranch,
		publicBranch:      trimmedPublicBranch,
	}, nil
}

// ResolveIntegrationRelease returns the release pointer on the integration
// branch. Without a filter the head commit is returned directly; with a filter
// the newest commit whose subject contains the filter as a whole word wins.
func (resolver *Resolver) ResolveIntegrationRelease(executionContext context.Context, labelFilter string) (ReleasePointer, error) {
	trimmedFilter := strings.TrimSpace(labelFilter)
	if len(trimmedFilter) == 0 {
		headCommit, headError := resolver.repositoryManager.HeadCommit(executionContext, resolver.repositoryPath)
		if headError != nil {
			return ReleasePointer{}, fmt.Errorf(headCommitLookupFailureTemplate, headError)
		}
		return ReleasePointer{Hash: headCommit.Hash, Label: headCommit.Subject}, nil
	}

	history, historyError := resolver.repositoryManager.ListHistory(executionContext, resolver.repositoryPath)
	if historyError != nil {
		return ReleasePointer{}, fmt.Errorf(historyLookupFailureTemplate, historyError)
	}

	for _, historyEntry := range history {
		if SubjectContainsWholeWord(historyEntry.Subject, trimmedFilter) {
			return ReleasePointer{Hash: historyEntry.Hash, Label: historyEntry.Subject}, nil
		}
	}

	return ReleasePointer{}, ErrReleaseNotFound
}

// ResolvePublicRelease maps the head commit of the public branch back to its
// originating commit on the integration branch. The two histories carry
// different commit identifiers, so the correlation key is the commit subject.
func (resolver *Resolver) ResolvePublicRelease(executionContext context.Context) (ReleasePointer, error) {
	var publicHeadSubject string
	scopeError := resolver.withBranch(executionContext, resolver.publicBranch, func(scopedContext context.Context) error {
		headCommit, headError := resolver.repositoryManager.HeadCommit(scopedContext, resolver.repositoryPath)
		if headError != nil {
			return fmt.Errorf(headCommitLookupFailureTemplate, headError)
		}
		publicHeadSubject = strings.TrimSpace(headCommit.Subject)
		return nil
	})
	if scopeError != nil {
		return ReleasePointer{}, scopeError
	}

	if len(publicHeadSubject) == 0 {
		return ReleasePointer{}, ErrEmptyPublicHistory
	}

	history, historyError := resolver.repositoryManager.ListHistory(executionContext, resolver.repositoryPath)
	if historyError != nil {
		return ReleasePointer{}, fmt.Errorf(historyLookupFailureTemplate, historyError)
	}

	matchedPointer := ReleasePointer{}
	matchCount := 0
	for _, historyEntry := range history {
		if !SubjectContainsWholeWord(historyEntry.Subject, publicHeadSubject) {
			continue
		}
		matchCount++
		if matchCount == 1 {
			matchedPointer = ReleasePointer{Hash: historyEntry.Hash, Label: historyEntry.Subject}
		}
	}

	switch matchCount {
	case 0:
		return ReleasePointer{}, ErrReleaseNotFound
	case 1:
		return matchedPointer, nil
	default:
		return ReleasePointer{}, ErrAmbiguousRelease
	}
}

// withBranch checks out the requested branch, runs the body, and restores the
// previously checked-out branch on every exit path.
func (resolver *Resolver) withBranch(executionContext context.Context, branchName string, body func(context.Context) error) error {
	priorBranch, branchError := resolver.repositoryManager.GetCurrentBranch(executionContext, resolver.repositoryPath)
	if branchError != nil {
		return fmt.Errorf(currentBranchLookupFailureTemplate, branchError)
	}

	if checkoutError := resolver.repositoryManager.CheckoutBranch(executionContext, resolver.repositoryPath, branchName); checkoutError != nil {
		return fmt.Errorf(branchCheckoutFailureTemplate, branchName, checkoutError)
	}

	bodyError := body(executionContext)

	if restoreError := resolver.repositoryManager.CheckoutBranch(executionContext, resolver.repositoryPath, priorBranch); restoreError != nil {
		if bodyError != nil {
			return bodyError
		}
		return fmt.Errorf(branchRestoreFailureTemplate, priorBranch, restoreError)
	}

	return bodyError
}
