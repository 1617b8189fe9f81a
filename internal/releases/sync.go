package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/websync/internal/execshell"
)

const (
	remoteNameRequiredMessageConstant      = "mirror remote name must be provided"
	mirrorURLRequiredMessageConstant       = "mirror fetch URL must be provided"
	wrongBranchMessageTemplateConstant     = "You must be on %s to sync the webclient"
	remoteReferenceTemplateConstant        = "%s/%s"
	emptyCommitSetIndicatorConstant        = "empty commit set passed"
	integrationPullFailureTemplateConstant = "failed to update integration branch %q: %w"
	publicPullFailureTemplateConstant      = "failed to update public branch %q: %w"
	integrationCheckoutFailureTemplate     = "failed to checkout integration branch %q: %w"
	publicCheckoutFailureTemplateConstant  = "failed to checkout public branch %q: %w"
	cherryPickFailureTemplateConstant      = "cherry-pick of %s..%s stopped; resolve conflicts, run 'git cherry-pick --continue', push %q to %q, then checkout %q: %w"
	pushFailureTemplateConstant            = "failed to push %q to %q: %w"
	restoreFailureTemplateConstant         = "failed to restore integration branch %q after sync: %w"
	remoteBootstrapFailureTemplateConstant = "failed to bootstrap mirror remote %q: %w"
	syncStartedMessageConstant             = "release synchronization starting"
	syncNoOpMessageConstant                = "release pointers are equal; nothing to replay"
	syncEmptyRangeMessageConstant          = "cherry-pick range was empty; treating sync as a no-op"
	syncCompletedMessageConstant           = "release synchronization completed"
	remoteBootstrapMessageConstant         = "mirror remote registered"
	publicReleaseLogFieldNameConstant      = "public_release"
	integrationReleaseLogFieldNameConstant = "integration_release"
	remoteNameLogFieldNameConstant         = "remote_name"
)

var (
	// ErrRemoteNameRequired indicates the mirror remote name option was empty.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
	// ErrMirrorURLRequired indicates the mirror fetch URL option was empty.
	ErrMirrorURLRequired = errors.New(mirrorURLRequiredMessageConstant)
)

// WrongBranchError indicates the workflow was started from the wrong branch.
type WrongBranchError struct {
	CurrentBranch  string
	RequiredBranch string
}

// Error names the branch the operator must check out before syncing.
func (branchError WrongBranchError) Error() string {
	return fmt.Sprintf(wrongBranchMessageTemplateConstant, strings.ToUpper(branchError.RequiredBranch))
}

// SyncDependencies enumerates collaborators required by the SyncService.
type SyncDependencies struct {
	RepositoryManager RepositoryManager
	Logger            *zap.Logger
}

// SyncOptions configure the synchronization workflow.
type SyncOptions struct {
	RepositoryPath    string
	IntegrationBranch string
	PublicBranch      string
	RemoteName        string
	MirrorURL         string
	MirrorPushURL     string
}

// SyncResult captures the observable outcome of a synchronization.
type SyncResult struct {
	PublicRelease      ReleasePointer
	IntegrationRelease ReleasePointer
	CommitsReplayed    bool
}

// SyncService orchestrates the release synchronization workflow.
type SyncService struct {
	repositoryManager RepositoryManager
	logger            *zap.Logger
	options           SyncOptions
}

// NewSyncService constructs a SyncService from dependencies and options.
func NewSyncService(dependencies SyncDependencies, options SyncOptions) (*SyncService, error) {
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sanitizedOptions := SyncOptions{
		RepositoryPath:    strings.TrimSpace(options.RepositoryPath),
		IntegrationBranch: strings.TrimSpace(options.IntegrationBranch),
		PublicBranch:      strings.TrimSpace(options.PublicBranch),
		RemoteName:        strings.TrimSpace(options.RemoteName),
		MirrorURL:         strings.TrimSpace(options.MirrorURL),
		MirrorPushURL:     strings.TrimSpace(options.MirrorPushURL),
	}

	switch {
	case len(sanitizedOptions.RepositoryPath) == 0:
		return nil, ErrRepositoryPathRequired
	case len(sanitizedOptions.IntegrationBranch) == 0:
		return nil, ErrIntegrationBranchRequired
	case len(sanitizedOptions.PublicBranch) == 0:
		return nil, ErrPublicBranchRequired
	case len(sanitizedOptions.RemoteName) == 0:
		return nil, ErrRemoteNameRequired
	case len(sanitizedOptions.MirrorURL) == 0:
		return nil, ErrMirrorURLRequired
	}

	if len(sanitizedOptions.MirrorPushURL) == 0 {
		sanitizedOptions.MirrorPushURL = sanitizedOptions.MirrorURL
	}

	return &SyncService{
		repositoryManager: dependencies.RepositoryManager,
		logger:            logger,
		options:           sanitizedOptions,
	}, nil
}

// EnsureIntegrationBranch fails with WrongBranchError unless the integration
// branch is currently checked out. It must run before any other step.
func (service *SyncService) EnsureIntegrationBranch(executionContext context.Context) error {
	currentBranch, branchError := service.repositoryManager.GetCurrentBranch(executionContext, service.options.RepositoryPath)
	if branchError != nil {
		return fmt.Errorf(currentBranchLookupFailureTemplate, branchError)
	}

	if currentBranch != service.options.IntegrationBranch {
		return WrongBranchError{CurrentBranch: currentBranch, RequiredBranch: service.options.IntegrationBranch}
	}
	return nil
}

// EnsurePublicRemote registers the mirror remote when it is absent. The check
// short-circuits setup, so calling this on every invocation is safe.
func (service *SyncService) EnsurePublicRemote(executionContext context.Context) (bool, error) {
	_, lookupError := service.repositoryManager.GetRemoteURL(executionContext, service.options.RepositoryPath, service.options.RemoteName)
	if lookupError == nil {
		return false, nil
	}

	if bootstrapError := service.bootstrapPublicRemote(executionContext); bootstrapError != nil {
		return false, fmt.Errorf(remoteBootstrapFailureTemplateConstant, service.options.RemoteName, bootstrapError)
	}

	service.logger.Info(remoteBootstrapMessageConstant,
		zap.String(remoteNameLogFieldNameConstant, service.options.RemoteName),
	)
	return true, nil
}

func (service *SyncService) bootstrapPublicRemote(executionContext context.Context) error {
	repositoryPath := service.options.RepositoryPath

	if addError := service.repositoryManager.AddRemote(executionContext, repositoryPath, service.options.RemoteName, service.options.MirrorURL); addError != nil {
		return addError
	}

	if pushURLError := service.repositoryManager.SetRemotePushURL(executionContext, repositoryPath, service.options.RemoteName, service.options.MirrorPushURL); pushURLError != nil {
		return pushURLError
	}

	if fetchError := service.repositoryManager.FetchRemote(executionContext, repositoryPath, service.options.RemoteName); fetchError != nil {
		return fetchError
	}

	trackingStartPoint := fmt.Sprintf(remoteReferenceTemplateConstant, service.options.RemoteName, service.options.PublicBranch)
	if trackingError := service.repositoryManager.CreateTrackingBranch(executionContext, repositoryPath, service.options.PublicBranch, trackingStartPoint); trackingError != nil {
		return trackingError
	}

	// Creating the tracking branch checks it out; release resolution reads
	// whichever branch is current, so the integration branch must come back.
	return service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, service.options.IntegrationBranch)
}

// SyncReleases replays the commit delta between the two release pointers onto
// the public branch, pushes it to the mirror remote, and restores the
// integration branch. Both pointers are validated before any branch mutation.
func (service *SyncService) SyncReleases(executionContext context.Context, publicRelease ReleasePointer, integrationRelease ReleasePointer) (SyncResult, error) {
	if validationError := publicRelease.Validate(); validationError != nil {
		return SyncResult{}, validationError
	}
	if validationError := integrationRelease.Validate(); validationError != nil {
		return SyncResult{}, validationError
	}

	service.logger.Info(syncStartedMessageConstant,
		zap.String(publicReleaseLogFieldNameConstant, publicRelease.Hash),
		zap.String(integrationReleaseLogFieldNameConstant, integrationRelease.Hash),
	)

	result := SyncResult{PublicRelease: publicRelease, IntegrationRelease: integrationRelease}
	repositoryPath := service.options.RepositoryPath

	if publicRelease.Hash == integrationRelease.Hash {
		service.logger.Info(syncNoOpMessageConstant)
		return result, nil
	}

	if checkoutError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, service.options.IntegrationBranch); checkoutError != nil {
		return SyncResult{}, fmt.Errorf(integrationCheckoutFailureTemplate, service.options.IntegrationBranch, checkoutError)
	}
	if pullError := service.repositoryManager.Pull(executionContext, repositoryPath, "", ""); pullError != nil {
		return SyncResult{}, fmt.Errorf(integrationPullFailureTemplateConstant, service.options.IntegrationBranch, pullError)
	}

	if checkoutError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, service.options.PublicBranch); checkoutError != nil {
		return SyncResult{}, fmt.Errorf(publicCheckoutFailureTemplateConstant, service.options.PublicBranch, checkoutError)
	}
	if pullError := service.repositoryManager.Pull(executionContext, repositoryPath, service.options.RemoteName, service.options.PublicBranch); pullError != nil {
		return SyncResult{}, fmt.Errorf(publicPullFailureTemplateConstant, service.options.PublicBranch, pullError)
	}

	cherryPickError := service.repositoryManager.CherryPickRange(executionContext, repositoryPath, publicRelease.Hash, integrationRelease.Hash)
	switch {
	case cherryPickError == nil:
		result.CommitsReplayed = true
	case isEmptyCommitSetError(cherryPickError):
		service.logger.Info(syncEmptyRangeMessageConstant)
	default:
		return SyncResult{}, fmt.Errorf(
			cherryPickFailureTemplateConstant,
			publicRelease.Hash,
			integrationRelease.Hash,
			service.options.PublicBranch,
			service.options.RemoteName,
			service.options.IntegrationBranch,
			cherryPickError,
		)
	}

	if pushError := service.repositoryManager.PushBranch(executionContext, repositoryPath, service.options.RemoteName, service.options.PublicBranch); pushError != nil {
		return SyncResult{}, fmt.Errorf(pushFailureTemplateConstant, service.options.PublicBranch, service.options.RemoteName, pushError)
	}

	if restoreError := service.repositoryManager.CheckoutBranch(executionContext, repositoryPath, service.options.IntegrationBranch); restoreError != nil {
		return SyncResult{}, fmt.Errorf(restoreFailureTemplateConstant, service.options.IntegrationBranch, restoreError)
	}

	service.logger.Info(syncCompletedMessageConstant,
		zap.String(publicReleaseLogFieldNameConstant, publicRelease.Hash),
		zap.String(integrationReleaseLogFieldNameConstant, integrationRelease.Hash),
	)
	return result, nil
}

// isEmptyCommitSetError recognizes git's report of a cherry-pick range that
// contains no commits, which the workflow treats as a successful no-op.
func isEmptyCommitSetError(candidateError error) bool {
	commandFailure := execshell.CommandFailedError{}
	if !errors.As(candidateError, &commandFailure) {
		return false
	}
	combinedOutput := commandFailure.Result.StandardError + "\n" + commandFailure.Result.StandardOutput
	return strings.Contains(strings.ToLower(combinedOutput), emptyCommitSetIndicatorConstant)
}
