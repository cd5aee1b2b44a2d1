package rpc

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/gorilla/websocket"

	"leadlist-tui/pkg/types"
)

// PageSource serves lead pages to remote clients
type PageSource interface {
	FetchPage(ctx context.Context, req types.PageRequest) (types.Page, error)
}

// Server exposes a PageSource as a JSON-RPC service, one jrpc2 server per
// websocket connection
type Server struct {
	name     string
	source   PageSource
	total    func() *int
	upgrader websocket.Upgrader
}

// NewServer creates a server named name over source. total may be nil.
func NewServer(name string, source PageSource, total func() *int) *Server {
	return &Server{
		name:   name,
		source: source,
		total:  total,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and serves JSON-RPC until the peer leaves
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	log.Debug("client connected", "remote", r.RemoteAddr)

	srv := jrpc2.NewServer(s.methods(), nil).Start(NewWebSocketStream(conn))
	if err := srv.Wait(); err != nil {
		log.Debug("client disconnected", "remote", r.RemoteAddr, "err", err)
	}
}

func (s *Server) methods() handler.Map {
	return handler.Map{
		types.MethodFetchPage: handler.New(s.fetchPage),
		types.MethodPing:      handler.New(s.ping),
	}
}

func (s *Server) fetchPage(ctx context.Context, req types.PageRequest) (types.Page, error) {
	return s.source.FetchPage(ctx, req)
}

func (s *Server) ping(ctx context.Context) (types.PingResult, error) {
	result := types.PingResult{Node: s.name}
	if s.total != nil {
		result.Total = s.total()
	}
	return result, nil
}
