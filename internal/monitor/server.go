// Package monitor implements a stand-in receiver that listens for input
// frames and logs what a console would decode from them.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/Alia5/InputRedirect/internal/log"
)

type Server struct {
	listenAddr string
	logger     *slog.Logger
	rawLogger  log.RawLogger
	ready      chan struct{}
	parser     *Parser

	mu     sync.Mutex
	conn   *net.UDPConn
	closed bool
}

func New(listenAddr string, logger *slog.Logger, rawLogger log.RawLogger) *Server {
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Server{
		listenAddr: listenAddr,
		logger:     logger,
		rawLogger:  rawLogger,
		ready:      make(chan struct{}),
		parser:     NewParser(logger),
	}
}

// Ready is closed once the socket is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address. Only valid after Ready.
func (s *Server) Addr() net.Addr { return s.conn.LocalAddr() }

// Parser returns the frame parser fed by the server.
func (s *Server) Parser() *Parser { return s.parser }

func (s *Server) ListenAndServe() error {
	addr, err := net.ResolveUDPAddr("udp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", s.listenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()
	close(s.ready)
	s.logger.Info("Monitor listening", "addr", conn.LocalAddr())

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || strings.Contains(strings.ToLower(err.Error()), "use of closed network connection") {
				s.logger.Info("Monitor stopped", "frames", s.parser.Frames())
				return nil
			}
			s.logger.Debug("Read error", "error", err)
			continue
		}
		s.rawLogger.Log(log.RX, peer.String(), buf[:n])
		s.parser.Parse(peer.String(), buf[:n])
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
