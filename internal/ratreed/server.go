package ratreed

import (
	"context"
	"errors"
	"net"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/danmuck/ratree/internal/config"
	"github.com/danmuck/ratree/internal/dispatch"
	"github.com/danmuck/ratree/internal/edit"
	"github.com/danmuck/ratree/internal/edit/memrepo"
	"github.com/danmuck/ratree/internal/logging"
	"github.com/danmuck/ratree/internal/wire"
)

// Server is ratreed's TCP endpoint: one wire.Conn plus dispatch.Loop
// per accepted connection, each driving its own tree-edit session
// against a shared edit.RepositoryOracle. Lifecycle grounded on the
// teacher's mirage.Service.Run/listen/Serve/handleConn split
// (internal/mirage/service.go), stripped of TLS and registration
// handshakes the spec's transport/auth Non-goals exclude.
type Server struct {
	cfg  config.Config
	repo edit.RepositoryOracle
	caps edit.Capabilities

	table   *dispatch.Table
	metrics *dispatch.Metrics

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
}

// New builds a Server bound to cfg. repo is the backing
// edit.RepositoryOracle; pass nil to get a fresh in-memory memrepo.Repo
// rooted at a freshly minted node-branch id, suitable for a
// demonstration deployment with no durable store.
func New(cfg config.Config, repo edit.RepositoryOracle) *Server {
	if repo == nil {
		repo = memrepo.New(uuid.NewString())
	}
	metrics := dispatch.NewMetrics()
	metrics.Register()
	return &Server{
		cfg:     cfg,
		repo:    repo,
		caps:    edit.Capabilities{PathAddressed: true, IdAddressed: true, TxnSourcedCopy: cfg.Edit.TxnSourcedCopy, PermissiveRebase: cfg.RebasePolicy == config.RebasePermissive},
		table:   NewTable(),
		metrics: metrics,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Run listens on cfg.Addr and serves connections until SIGINT/SIGTERM.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	logging.Infof("ratreed.Server.Run listening addr=%q", ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled or Accept
// fails for a reason other than the listener closing.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()
	go func() {
		<-ctx.Done()
		s.closeAllConns()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.trackConn(conn)
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	defer s.untrackConn(conn)
	remote := conn.RemoteAddr().String()
	logging.Debugf("ratreed.handleConn connected remote=%q", remote)

	wc := wire.NewConn(conn, conn, s.cfg.Wire.ToLimits())
	loop := &dispatch.Loop{Table: s.table, Metrics: s.metrics, PassThroughErrors: s.cfg.PassThroughErrors}
	sess := newSession(s.repo, s.caps)

	if err := loop.Run(ctx, wc, sess); err != nil {
		logging.Debugf("ratreed.handleConn remote=%q closed err=%v", remote, err)
		return
	}
	logging.Debugf("ratreed.handleConn remote=%q closed", remote)
}

func (s *Server) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
