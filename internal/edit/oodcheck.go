package edit

import "context"

// sinceRevCheck is a deferred rebase obligation: nbid must be unchanged
// since sinceRev, as of the moment the transaction actually commits, not
// as of the moment the op was issued (spec §8 scenario 6: two concurrent
// alters against the same base are only reconciled "at commit").
type sinceRevCheck struct {
	nbid     string
	sinceRev int64
}

// recordSinceRev queues nbid/sinceRev for verification in
// verifyPendingSinceRevs, called from Complete.
func (t *Transaction) recordSinceRev(nbid string, sinceRev int64) {
	if sinceRev == CurrentTxn {
		return
	}
	t.pendingChecks = append(t.pendingChecks, sinceRevCheck{nbid: nbid, sinceRev: sinceRev})
}

// verifyPendingSinceRevs enforces spec §4.3.3's rebase rule shared by
// mv/alter and rm/delete: each recorded node-branch's own name, parent
// and content must be unchanged, against the repository's actual state
// at commit time, since the op's stated base revision. Any such change
// is rejected as out of date, whatever Capabilities.PermissiveRebase
// says; no effect-equality (null merge) check is made.
func (t *Transaction) verifyPendingSinceRevs(ctx context.Context) error {
	for _, check := range t.pendingChecks {
		changed, err := t.repo.ChangedSince(ctx, check.nbid, check.sinceRev)
		if err != nil {
			return err
		}
		if changed {
			return outOfDateErr(check.nbid, "changed since stated base revision")
		}
	}
	return nil
}
