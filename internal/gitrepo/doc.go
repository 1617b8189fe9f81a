// Package gitrepo coordinates typed Git operations through execshell.
//
// RepositoryManager exposes the branch, remote, history, and replay
// operations the release synchronization workflow depends on. Command
// output is stripped of terminal color codes before parsing.
package gitrepo
