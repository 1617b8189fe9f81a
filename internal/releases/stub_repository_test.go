package releases_test

import (
	"context"
	"fmt"

	"github.com/tyemirov/websync/internal/gitrepo"
)

// stubRepositoryManager scripts git operation outcomes and records the order
// in which operations were invoked.
type stubRepositoryManager struct {
	currentBranch       string
	branchErrors        []error
	checkoutErrors      map[string]error
	remoteURLsByName    map[string]string
	headCommitsByBranch map[string]gitrepo.Commit
	history             []gitrepo.Commit
	historyError        error
	pullError           error
	pushError           error
	cherryPickError     error
	fetchError          error
	addRemoteError      error
	recordedOperations  []string
}

func newStubRepositoryManager(currentBranch string) *stubRepositoryManager {
	return &stubRepositoryManager{
		currentBranch:       currentBranch,
		checkoutErrors:      map[string]error{},
		remoteURLsByName:    map[string]string{},
		headCommitsByBranch: map[string]gitrepo.Commit{},
	}
}

func (stub *stubRepositoryManager) record(operationFormat string, operationArguments ...any) {
	stub.recordedOperations = append(stub.recordedOperations, fmt.Sprintf(operationFormat, operationArguments...))
}

func (stub *stubRepositoryManager) GetCurrentBranch(_ context.Context, _ string) (string, error) {
	stub.record("current-branch")
	if len(stub.branchErrors) > 0 {
		nextError := stub.branchErrors[0]
		stub.branchErrors = stub.branchErrors[1:]
		if nextError != nil {
			return "", nextError
		}
	}
	return stub.currentBranch, nil
}

func (stub *stubRepositoryManager) CheckoutBranch(_ context.Context, _ string, branchName string) error {
	stub.record("checkout %s", branchName)
	if checkoutError, found := stub.checkoutErrors[branchName]; found {
		return checkoutError
	}
	stub.currentBranch = branchName
	return nil
}

func (stub *stubRepositoryManager) CreateTrackingBranch(_ context.Context, _ string, branchName string, startPoint string) error {
	stub.record("create-branch %s %s", branchName, startPoint)
	stub.currentBranch = branchName
	return nil
}

func (stub *stubRepositoryManager) GetRemoteURL(_ context.Context, _ string, remoteName string) (string, error) {
	stub.record("remote-url %s", remoteName)
	remoteURL, found := stub.remoteURLsByName[remoteName]
	if !found {
		return "", fmt.Errorf("remote %q not configured", remoteName)
	}
	return remoteURL, nil
}

func (stub *stubRepositoryManager) AddRemote(_ context.Context, _ string, remoteName string, remoteURL string) error {
	stub.record("add-remote %s %s", remoteName, remoteURL)
	if stub.addRemoteError != nil {
		return stub.addRemoteError
	}
	stub.remoteURLsByName[remoteName] = remoteURL
	return nil
}

func (stub *stubRepositoryManager) SetRemotePushURL(_ context.Context, _ string, remoteName string, pushURL string) error {
	stub.record("set-push-url %s %s", remoteName, pushURL)
	return nil
}

func (stub *stubRepositoryManager) FetchRemote(_ context.Context, _ string, remoteName string) error {
	stub.record("fetch %s", remoteName)
	return stub.fetchError
}

func (stub *stubRepositoryManager) Pull(_ context.Context, _ string, remoteName string, branchName string) error {
	if len(remoteName) == 0 && len(branchName) == 0 {
		stub.record("pull")
	} else {
		stub.record("pull %s %s", remoteName, branchName)
	}
	return stub.pullError
}

func (stub *stubRepositoryManager) PushBranch(_ context.Context, _ string, remoteName string, branchName string) error {
	stub.record("push %s %s", remoteName, branchName)
	return stub.pushError
}

func (stub *stubRepositoryManager) HeadCommit(_ context.Context, _ string) (gitrepo.Commit, error) {
	stub.record("head-commit")
	return stub.headCommitsByBranch[stub.currentBranch], nil
}

func (stub *stubRepositoryManager) ListHistory(_ context.Context, _ string) ([]gitrepo.Commit, error) {
	stub.record("list-history")
	if stub.historyError != nil {
		return nil, stub.historyError
	}
	return stub.history, nil
}

func (stub *stubRepositoryManager) CherryPickRange(_ context.Context, _ string, startHash string, endHash string) error {
	stub.record("cherry-pick %s..%s", startHash, endHash)
	return stub.cherryPickError
}
