// Package releases implements the webclient release synchronization workflow.
//
// Release pointers identify cherry-pick boundaries on the integration branch
// and the public mirror branch. The two histories are rewritten independently,
// so pointers are correlated by commit message text rather than commit
// identity. The Resolver locates pointers, and the SyncService replays the
// commit delta between them onto the public branch and pushes it to the
// mirror remote.
package releases
