package edit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/ratree/internal/edit"
	"github.com/danmuck/ratree/internal/edit/memrepo"
)

// scenario 4 (spec §8): path-style create-and-populate. mk a file under
// the txn root, put its content, complete, and expect the content
// committed in the new revision to carry the checksum computed on put.
func TestPathStyleCreateAndPopulate(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	txn := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())

	nbid, err := txn.Mk(ctx, edit.KindFile, edit.PegPath{Rev: 0, RelPath: ""}, "a")
	if err != nil {
		t.Fatalf("mk: %v", err)
	}

	content := edit.Content{Kind: edit.KindFile, Stream: strings.NewReader("hello")}
	if err := txn.Put(ctx, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "a"}, content); err != nil {
		t.Fatalf("put: %v", err)
	}

	rev, err := txn.Complete(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if rev != 1 {
		t.Fatalf("expected revision 1, got %d", rev)
	}

	committed, err := repo.ContentOf(ctx, nbid, rev)
	if err != nil {
		t.Fatalf("content lookup: %v", err)
	}
	if !committed.HasChecksum {
		t.Fatalf("expected checksum to be computed on put")
	}
}

// scenario 4 continued: put against a node-branch not in the current
// transaction fails precondition [5].
func TestPutRequiresTargetInTxn(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	txn := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())

	err := txn.Put(ctx, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "missing"}, edit.Content{Kind: edit.KindFile})
	if err == nil {
		t.Fatalf("expected precondition violation")
	}
}

// scenario 5 (spec §8): id-style move via alter. A node-branch created
// in one edit is renamed/reparented by a later edit's alter call.
func TestIdStyleAlterMove(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")

	txn1 := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	_, err := txn1.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "p")
	if err != nil {
		t.Fatalf("mk parent: %v", err)
	}
	parentB, err := txn1.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "q")
	if err != nil {
		t.Fatalf("mk other parent: %v", err)
	}
	nodeX, err := txn1.Mk(ctx, edit.KindFile, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "p"}, "a")
	if err != nil {
		t.Fatalf("mk x: %v", err)
	}
	if err := txn1.Put(ctx, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "p/a"}, edit.Content{Kind: edit.KindFile, Stream: strings.NewReader("x")}); err != nil {
		t.Fatalf("put x: %v", err)
	}
	rev5, err := txn1.Complete(ctx)
	if err != nil {
		t.Fatalf("complete base: %v", err)
	}

	txn2 := edit.NewTransaction(repo, edit.DefaultCapabilities(), rev5, repo.RootNbid())
	if err := txn2.Alter(ctx, rev5, nodeX, parentB, "b", edit.Content{}); err != nil {
		t.Fatalf("alter: %v", err)
	}
	rev6, err := txn2.Complete(ctx)
	if err != nil {
		t.Fatalf("complete move: %v", err)
	}

	newParent, newName, err := repo.Locate(ctx, nodeX, rev6)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if newParent != parentB || newName != "b" {
		t.Fatalf("expected node moved to (%s, b), got (%s, %s)", parentB, newParent, newName)
	}
}

// scenario 6 (spec §8): two concurrent alters against the same base
// revision on the same node-branch; the second to commit sees the
// node-branch changed since its stated base and gets ErrOutOfDate.
func TestIdStyleAlterOutOfDateConflict(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")

	setup := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	nodeX, err := setup.Mk(ctx, edit.KindFile, edit.PegPath{Rev: 0, RelPath: ""}, "a")
	if err != nil {
		t.Fatalf("mk: %v", err)
	}
	baseRev, err := setup.Complete(ctx)
	if err != nil {
		t.Fatalf("complete setup: %v", err)
	}

	txnA := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	if err := txnA.Alter(ctx, baseRev, nodeX, "", "renamed-by-a", edit.Content{}); err != nil {
		t.Fatalf("alter a: %v", err)
	}
	if _, err := txnA.Complete(ctx); err != nil {
		t.Fatalf("complete a: %v", err)
	}

	txnB := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	if err := txnB.Alter(ctx, baseRev, nodeX, "", "renamed-by-b", edit.Content{}); err != nil {
		t.Fatalf("alter b: %v", err)
	}
	if _, err := txnB.Complete(ctx); err == nil {
		t.Fatalf("expected out-of-date conflict on second commit")
	}
}

func TestOpsRejectedAfterTerminal(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	txn := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	if err := txn.Abort(ctx); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if _, err := txn.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "a"); err == nil {
		t.Fatalf("expected ErrTerminated")
	}
}

func TestCpRequiresCapabilityForTxnSourcedCopy(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	caps := edit.DefaultCapabilities()
	caps.TxnSourcedCopy = false
	txn := edit.NewTransaction(repo, caps, 0, repo.RootNbid())

	if _, err := txn.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "src"); err != nil {
		t.Fatalf("mk src: %v", err)
	}
	_, err := txn.Cp(ctx, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "src"}, edit.PegPath{Rev: 0, RelPath: ""}, "dst")
	if err == nil {
		t.Fatalf("expected capability rejection for txn-sourced copy")
	}
}

// alter must reject reparenting a node-branch underneath its own
// descendant: X alter'd with new_parent = Y, where Y is a child of X,
// would make upsertNode's relpathOf walk recurse forever across the
// cycle it just introduced (spec §4.3.2: "no cycles").
func TestAlterRejectsCycle(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")

	setup := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	nodeX, err := setup.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "x")
	if err != nil {
		t.Fatalf("mk x: %v", err)
	}
	nodeY, err := setup.Mk(ctx, edit.KindDir, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "x"}, "y")
	if err != nil {
		t.Fatalf("mk y: %v", err)
	}
	baseRev, err := setup.Complete(ctx)
	if err != nil {
		t.Fatalf("complete setup: %v", err)
	}

	txn := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	err = txn.Alter(ctx, baseRev, nodeX, nodeY, "", edit.Content{})
	if err == nil {
		t.Fatalf("expected cycle rejection, got nil error")
	}
	if !errors.Is(err, edit.ErrPreconditionViolated) {
		t.Fatalf("expected ErrPreconditionViolated, got %v", err)
	}
}

// the path-addressed equivalent: mv'ing a directory underneath its own
// child must be rejected the same way alter is.
func TestMvRejectsCycle(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	txn := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())

	if _, err := txn.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "x"); err != nil {
		t.Fatalf("mk x: %v", err)
	}
	if _, err := txn.Mk(ctx, edit.KindDir, edit.PegPath{Rev: edit.CurrentTxn, RelPath: "x"}, "y"); err != nil {
		t.Fatalf("mk y: %v", err)
	}
	baseRev, err := txn.Complete(ctx)
	if err != nil {
		t.Fatalf("complete setup: %v", err)
	}

	txn2 := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	_, err = txn2.Mv(ctx, edit.PegPath{Rev: baseRev, RelPath: "x"}, edit.PegPath{Rev: baseRev, RelPath: "x/y"}, "x")
	if err == nil {
		t.Fatalf("expected cycle rejection, got nil error")
	}
	if !errors.Is(err, edit.ErrPreconditionViolated) {
		t.Fatalf("expected ErrPreconditionViolated, got %v", err)
	}
}

// path-style analogue of scenario 6: two path-addressed mv's racing
// against the same peg must not both commit cleanly.
func TestMvPathStyleOutOfDateConflict(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")

	setup := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	if _, err := setup.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "a"); err != nil {
		t.Fatalf("mk a: %v", err)
	}
	baseRev, err := setup.Complete(ctx)
	if err != nil {
		t.Fatalf("complete setup: %v", err)
	}

	txnA := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	if _, err := txnA.Mv(ctx, edit.PegPath{Rev: baseRev, RelPath: "a"}, edit.PegPath{Rev: baseRev, RelPath: ""}, "renamed-by-a"); err != nil {
		t.Fatalf("mv a: %v", err)
	}
	if _, err := txnA.Complete(ctx); err != nil {
		t.Fatalf("complete a: %v", err)
	}

	txnB := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	if _, err := txnB.Mv(ctx, edit.PegPath{Rev: baseRev, RelPath: "a"}, edit.PegPath{Rev: baseRev, RelPath: ""}, "renamed-by-b"); err != nil {
		t.Fatalf("mv b: %v", err)
	}
	if _, err := txnB.Complete(ctx); err == nil {
		t.Fatalf("expected out-of-date conflict on second commit")
	}
}

// rm and put get the same rebase treatment: a put issued against a peg
// that has since moved out from under the sender must not commit
// silently over the other change.
func TestPutPathStyleOutOfDateConflict(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")

	setup := edit.NewTransaction(repo, edit.DefaultCapabilities(), 0, repo.RootNbid())
	if _, err := setup.Mk(ctx, edit.KindFile, edit.PegPath{Rev: 0, RelPath: ""}, "a"); err != nil {
		t.Fatalf("mk a: %v", err)
	}
	baseRev, err := setup.Complete(ctx)
	if err != nil {
		t.Fatalf("complete setup: %v", err)
	}

	mover := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	if _, err := mover.Mv(ctx, edit.PegPath{Rev: baseRev, RelPath: "a"}, edit.PegPath{Rev: baseRev, RelPath: ""}, "moved"); err != nil {
		t.Fatalf("mv: %v", err)
	}
	if _, err := mover.Complete(ctx); err != nil {
		t.Fatalf("complete mover: %v", err)
	}

	putter := edit.NewTransaction(repo, edit.DefaultCapabilities(), baseRev, repo.RootNbid())
	err = putter.Put(ctx, edit.PegPath{Rev: baseRev, RelPath: "a"}, edit.Content{Kind: edit.KindFile, Stream: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := putter.Complete(ctx); err == nil {
		t.Fatalf("expected out-of-date conflict: node-branch moved since base revision")
	}
}

func TestMkRejectedWithoutPathAddressedCapability(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	caps := edit.DefaultCapabilities()
	caps.PathAddressed = false
	txn := edit.NewTransaction(repo, caps, 0, repo.RootNbid())

	_, err := txn.Mk(ctx, edit.KindDir, edit.PegPath{Rev: 0, RelPath: ""}, "a")
	if err == nil {
		t.Fatalf("expected capability rejection for path-addressed op")
	}
	if !errors.Is(err, edit.ErrNotCapable) {
		t.Fatalf("expected ErrNotCapable, got %v", err)
	}
}

func TestAddRejectedWithoutIdAddressedCapability(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New("root")
	caps := edit.DefaultCapabilities()
	caps.IdAddressed = false
	txn := edit.NewTransaction(repo, caps, 0, repo.RootNbid())

	err := txn.Add(ctx, "local-1", edit.KindDir, repo.RootNbid(), "a", edit.Content{})
	if err == nil {
		t.Fatalf("expected capability rejection for id-addressed op")
	}
	if !errors.Is(err, edit.ErrNotCapable) {
		t.Fatalf("expected ErrNotCapable, got %v", err)
	}
}
