package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"

	"log/slog"

	"lumen/internal/daemon"
	"lumen/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Lumen", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logging.NewComponentLogger(logger, "ipc"),
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

// Status returns combined daemon and engine state.
func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	st, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Running = st.Running
	resp.PID = st.PID
	resp.LockPath = st.LockPath
	resp.Engine = st.Engine
	return nil
}

// Stop requests process shutdown. The response is written before the
// hosting process tears the socket down, so callers see an acknowledgment.
func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("stop requested via IPC")
	s.daemon.RequestShutdown()
	resp.Stopped = true
	return nil
}

// Scenes lists the declared scene table.
func (s *service) Scenes(_ ScenesRequest, resp *ScenesResponse) error {
	st, err := s.daemon.Engine().Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Scenes = st.Scenes
	return nil
}

// Next advances to the following scene with wrap-around.
func (s *service) Next(_ NextRequest, resp *NavigateResponse) error {
	index, err := s.daemon.Engine().Next(s.ctx)
	if err != nil {
		return err
	}
	resp.Index = index
	return nil
}

// Previous steps back to the preceding scene with wrap-around.
func (s *service) Previous(_ PreviousRequest, resp *NavigateResponse) error {
	index, err := s.daemon.Engine().Previous(s.ctx)
	if err != nil {
		return err
	}
	resp.Index = index
	return nil
}

// Load switches directly to a scene by index.
func (s *service) Load(req LoadRequest, resp *LoadResponse) error {
	if err := s.daemon.Engine().Load(s.ctx, req.Index); err != nil {
		return err
	}
	resp.Index = req.Index
	return nil
}

// RunScript re-executes a scene-declaration script and reconciles the
// result against the live table.
func (s *service) RunScript(req RunScriptRequest, resp *RunScriptResponse) error {
	eng := s.daemon.Engine()
	if strings.TrimSpace(req.Source) != "" {
		rep, err := eng.RunScript(s.ctx, req.Source)
		if err != nil {
			return err
		}
		resp.Summary = rep.Summary()
	} else {
		path := req.Path
		if strings.TrimSpace(path) == "" {
			return errors.New("script path or source required")
		}
		rep, err := eng.RunScriptFile(s.ctx, path)
		if err != nil {
			return err
		}
		resp.Summary = rep.Summary()
	}
	st, err := eng.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Scenes = st.SceneCount
	return nil
}
