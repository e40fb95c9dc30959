package redirect

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Alia5/InputRedirect/device/n3ds"
	"github.com/Alia5/InputRedirect/internal/log"
)

var (
	// ErrBind is returned when the outbound socket cannot be bound.
	ErrBind = errors.New("bind udp socket")
	// ErrNoTarget is returned by an unconditional send without a target.
	ErrNoTarget = errors.New("no target configured")
)

// Policy decides whether a Send call transmits.
type Policy string

const (
	// PolicyThrottled transmits only with a target set and at least the
	// throttle interval elapsed since the last transmitted frame.
	PolicyThrottled Policy = "throttled"
	// PolicyUnconditional always encodes and transmits.
	PolicyUnconditional Policy = "unconditional"
)

// DefaultThrottleInterval is used when SenderConfig.ThrottleInterval is not positive.
const DefaultThrottleInterval = 50 * time.Millisecond

// SenderConfig configures a Sender.
type SenderConfig struct {
	Target           string
	Port             int
	ThrottleInterval time.Duration
	Encoder          n3ds.Encoder
	// LocalAddr is the bind address. Empty binds an ephemeral port on all interfaces.
	LocalAddr string
}

// Sender owns the outbound datagram socket.
// Transport failures are logged and absorbed; a Sender stays usable after them.
type Sender struct {
	conn      *net.UDPConn
	port      int
	interval  time.Duration
	encoder   n3ds.Encoder
	logger    *slog.Logger
	rawLogger log.RawLogger

	target   string
	addr     *net.UDPAddr
	addrFor  string
	lastSent time.Time
	sent     uint64
	failing  bool

	now func() time.Time
}

// NewSender binds the outbound socket.
func NewSender(cfg SenderConfig, logger *slog.Logger, rawLogger log.RawLogger) (*Sender, error) {
	laddr := &net.UDPAddr{}
	if cfg.LocalAddr != "" {
		a, err := net.ResolveUDPAddr("udp", cfg.LocalAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBind, cfg.LocalAddr, err)
		}
		laddr = a
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBind, err)
	}
	if err := setLowDelay(conn); err != nil {
		logger.Debug("Failed to mark socket low-delay", "error", err)
	}

	port := cfg.Port
	if port == 0 {
		port = n3ds.DefaultPort
	}
	interval := cfg.ThrottleInterval
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Sender{
		conn:      conn,
		port:      port,
		interval:  interval,
		encoder:   cfg.Encoder,
		logger:    logger,
		rawLogger: rawLogger,
		target:    strings.TrimSpace(cfg.Target),
		now:       time.Now,
	}, nil
}

// LocalAddr returns the bound local address.
func (s *Sender) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Target returns the current destination host.
func (s *Sender) Target() string { return s.target }

// SetTarget changes the destination host. The socket is not re-bound.
func (s *Sender) SetTarget(host string) {
	s.target = strings.TrimSpace(host)
}

// Sent returns the number of datagrams written so far.
func (s *Sender) Sent() uint64 { return s.sent }

// Send encodes st and transmits it if p allows.
// It reports whether a datagram was written.
func (s *Sender) Send(st *n3ds.InputState, p Policy) bool {
	if p == PolicyThrottled {
		if s.target == "" {
			return false
		}
		if !s.lastSent.IsZero() && s.now().Sub(s.lastSent) < s.interval {
			return false
		}
	}

	frame := s.encoder.Encode(st)
	if err := s.write(frame[:]); err != nil {
		s.fail(err)
		return false
	}
	s.lastSent = s.now()
	s.sent++
	if s.failing {
		s.failing = false
		s.logger.Info("Target reachable", "target", s.target)
	}
	return true
}

func (s *Sender) write(frame []byte) error {
	if s.target == "" {
		return ErrNoTarget
	}
	if s.addr == nil || s.addrFor != s.target {
		addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(s.target, strconv.Itoa(s.port)))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", s.target, err)
		}
		s.addr = addr
		s.addrFor = s.target
	}
	if _, err := s.conn.WriteToUDP(frame, s.addr); err != nil {
		return fmt.Errorf("write to %s: %w", s.addr, err)
	}
	s.rawLogger.Log(log.TX, s.addr.String(), frame)
	return nil
}

// fail logs the first failure of a streak at Warn and the rest at Debug.
func (s *Sender) fail(err error) {
	if s.failing {
		s.logger.Debug("Send failed", "target", s.target, "error", err)
		return
	}
	s.failing = true
	s.logger.Warn("Send failed, will keep retrying", "target", s.target, "error", err)
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
