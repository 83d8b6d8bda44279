package beestore

import (
	"fmt"
	"net"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sys/unix"
)

const maxEpollEvents = 128

// Reactor is the single-threaded readiness-based event loop: one
// non-blocking listening socket, one epoll instance, and a connection
// registry keyed by fd. Nothing here blocks except the epoll_wait call
// itself; command execution (Store.Dispatch) never touches I/O, so the
// single OS thread running Run never stalls on behalf of one connection
// while others wait.
type Reactor struct {
	epfd     int
	listenFd int
	conns    map[int]*Connection
	store    *Store
	logger   log.Logger

	// wakeR/wakeW are a self-pipe registered for read-readiness: writing
	// one byte to wakeW unblocks an in-progress epoll_wait so Stop can
	// return promptly without a polling timeout.
	wakeR, wakeW int
	stopping     bool
}

// NewReactor creates a non-blocking listening socket bound to addr with
// SO_REUSEADDR set, registers it for read readiness, and returns a Reactor
// ready to Run.
func NewReactor(addr string, store *Store, logger log.Logger) (*Reactor, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("beestore: resolving listen address: %w", err)
	}

	listenFd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("beestore: socket: %w", err)
	}
	if err := unix.SetsockoptInt(listenFd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("beestore: setsockopt SO_REUSEADDR: %w", err)
	}

	var sa unix.SockaddrInet4
	sa.Port = tcpAddr.Port
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	if err := unix.Bind(listenFd, &sa); err != nil {
		return nil, fmt.Errorf("beestore: bind: %w", err)
	}
	if err := unix.Listen(listenFd, unix.SOMAXCONN); err != nil {
		return nil, fmt.Errorf("beestore: listen: %w", err)
	}
	if err := unix.SetNonblock(listenFd, true); err != nil {
		return nil, fmt.Errorf("beestore: set listener non-blocking: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, fmt.Errorf("beestore: epoll_create1: %w", err)
	}

	r := &Reactor{
		epfd:     epfd,
		listenFd: listenFd,
		conns:    make(map[int]*Connection),
		store:    store,
		logger:   logger,
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, listenFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(listenFd),
	}); err != nil {
		return nil, fmt.Errorf("beestore: registering listener: %w", err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("beestore: self-pipe: %w", err)
	}
	r.wakeR, r.wakeW = pipeFds[0], pipeFds[1]
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, r.wakeR, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(r.wakeR),
	}); err != nil {
		return nil, fmt.Errorf("beestore: registering wake pipe: %w", err)
	}

	return r, nil
}

// Addr returns the address the listening socket is bound to.
func (r *Reactor) Addr() (*unix.SockaddrInet4, error) {
	sa, err := unix.Getsockname(r.listenFd)
	if err != nil {
		return nil, err
	}
	v, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return nil, fmt.Errorf("beestore: unexpected listener sockaddr type %T", sa)
	}
	return v, nil
}

// Stop unblocks a running Run call and causes it to return.
func (r *Reactor) Stop() {
	r.stopping = true
	_, _ = unix.Write(r.wakeW, []byte{0})
}

// Run blocks forever on the readiness primitive, dispatching accept
// events and connection state-machine steps, until Stop is called.
func (r *Reactor) Run() error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("beestore: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case r.listenFd:
				r.acceptAll()
			case r.wakeR:
				if r.stopping {
					return nil
				}
			default:
				r.stepConnection(fd, events[i].Events)
			}
		}
	}
}

// acceptAll accepts as many connections as the kernel will return, looping
// until EAGAIN.
func (r *Reactor) acceptAll() {
	for {
		fd, _, err := unix.Accept4(r.listenFd, unix.SOCK_NONBLOCK)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			if err == unix.EINTR {
				continue
			}
			level.Warn(r.logger).Log("msg", "accept failed", "err", err)
			return
		}

		conn := newConnection(fd, r.store)
		r.conns[fd] = conn
		level.Debug(r.logger).Log("msg", "accepted connection", "fd", fd, "conn", conn.id)
		if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
			Events: interestMask(conn),
			Fd:     int32(fd),
		}); err != nil {
			level.Warn(r.logger).Log("msg", "registering accepted connection failed", "err", err)
			_ = unix.Close(fd)
			delete(r.conns, fd)
		}
	}
}

// stepConnection invokes the owning Connection's state-machine step for a
// ready fd, then re-registers its interest mask or tears it down if it
// transitioned to CLOSED.
func (r *Reactor) stepConnection(fd int, readyEvents uint32) {
	conn, ok := r.conns[fd]
	if !ok {
		return
	}

	if readyEvents&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		conn.OnReadable()
	}
	if !conn.Closed() && readyEvents&unix.EPOLLOUT != 0 {
		conn.OnWritable()
	}

	if conn.Closed() {
		_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
		_ = unix.Close(fd)
		delete(r.conns, fd)
		level.Debug(r.logger).Log("msg", "connection closed", "fd", fd, "conn", conn.id)
		return
	}

	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: interestMask(conn),
		Fd:     int32(fd),
	})
}

func interestMask(c *Connection) uint32 {
	var mask uint32
	if c.wantRead {
		mask |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if c.wantWrite {
		mask |= unix.EPOLLOUT
	}
	return mask
}
