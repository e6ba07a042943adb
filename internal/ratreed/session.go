package ratreed

import (
	"context"

	"github.com/danmuck/ratree/internal/edit"
)

// session is the per-connection dispatch baton. A transaction is opened
// implicitly by the first edit op against the repository's current
// head (spec §3, "Transaction: created implicitly by the first edit
// operation"); one session drives exactly one transaction, matching
// the dispatch loop's single-threaded-per-connection model (spec §5).
type session struct {
	repo edit.RepositoryOracle
	caps edit.Capabilities
	txn  *edit.Transaction
}

func newSession(repo edit.RepositoryOracle, caps edit.Capabilities) *session {
	return &session{repo: repo, caps: caps}
}

// transaction returns the session's open transaction, opening one
// against the repository's current head and root node-branch on first
// use.
func (s *session) transaction(ctx context.Context) (*edit.Transaction, error) {
	if s.txn != nil {
		return s.txn, nil
	}
	head, err := s.repo.Head(ctx)
	if err != nil {
		return nil, err
	}
	rootNbid, err := s.repo.ResolvePeg(ctx, edit.PegPath{Rev: head, RelPath: ""})
	if err != nil {
		return nil, err
	}
	s.txn = edit.NewTransaction(s.repo, s.caps, head, rootNbid)
	return s.txn, nil
}
