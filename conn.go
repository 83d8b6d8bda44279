package beestore

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// connState is one of the three states a Connection can be in.
type connState int8

const (
	stateReceiving connState = iota
	stateSending
	stateClosed
)

// bufCapacity bounds each direction's buffer at 4 + 4096 bytes: the
// length prefix plus the largest message either side may send.
const bufCapacity = lengthPrefix + maxMessageSize

// Connection is the per-fd request/response state machine. Its read buffer
// is never referenced after a frame is parsed out of it and the remaining
// bytes are shifted to the front; reply bytes are always explicit copies
// into writeBuf.
type Connection struct {
	fd    int
	id    uuid.UUID
	state connState

	readBuf    [bufCapacity]byte
	readBufLen int

	writeBuf     []byte
	writeBufSent int

	wantRead, wantWrite bool

	store *Store
}

func newConnection(fd int, store *Store) *Connection {
	c := &Connection{
		fd:    fd,
		id:    uuid.New(),
		state: stateReceiving,
		store: store,
	}
	c.recomputeInterest()
	return c
}

func (c *Connection) recomputeInterest() {
	switch c.state {
	case stateReceiving:
		c.wantRead, c.wantWrite = true, false
	case stateSending:
		c.wantRead, c.wantWrite = false, true
	default:
		c.wantRead, c.wantWrite = false, false
	}
}

// OnReadable is invoked by the reactor when the fd reports read readiness.
// It drains the socket until EAGAIN, and after every successful read
// drains every complete frame currently buffered before returning, so
// several requests arriving in one readiness wake-up are all answered
// before the reactor moves on.
func (c *Connection) OnReadable() {
	for {
		if c.readBufLen == len(c.readBuf) {
			// read buffer full with no parseable frame; oversize declared
			// length would already have tripped tryParseFrame below, so
			// this only happens if the peer never completes a frame.
			c.close()
			return
		}
		n, err := unix.Read(c.fd, c.readBuf[c.readBufLen:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				break
			}
			c.close()
			return
		}
		if n == 0 {
			c.close()
			return
		}
		c.readBufLen += n

		if !c.frameLoop() {
			return
		}
	}

	if len(c.writeBuf) > c.writeBufSent {
		c.state = stateSending
		c.recomputeInterest()
		c.trySend()
	}
}

// frameLoop extracts and executes every complete request currently held in
// readBuf, appending each framed reply to writeBuf. It returns false if the
// connection was closed (a framing fault), in which case the caller must
// not continue using c.
func (c *Connection) frameLoop() bool {
	for {
		argv, consumed, ok, err := tryParseFrame(c.readBuf[:c.readBufLen])
		if err != nil {
			c.close()
			return false
		}
		if !ok {
			return true
		}

		reply := c.store.Dispatch(argv)
		c.writeBuf = appendFramedReply(c.writeBuf, reply)

		remaining := c.readBufLen - consumed
		copy(c.readBuf[:remaining], c.readBuf[consumed:c.readBufLen])
		c.readBufLen = remaining
	}
}

// OnWritable is invoked by the reactor when the fd reports write
// readiness; it resumes draining writeBuf from where it left off.
func (c *Connection) OnWritable() {
	c.trySend()
}

func (c *Connection) trySend() {
	for c.writeBufSent < len(c.writeBuf) {
		n, err := unix.Write(c.fd, c.writeBuf[c.writeBufSent:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			c.close()
			return
		}
		c.writeBufSent += n
	}

	c.writeBuf = c.writeBuf[:0]
	c.writeBufSent = 0
	c.state = stateReceiving
	c.recomputeInterest()
}

func (c *Connection) close() {
	c.state = stateClosed
	c.recomputeInterest()
}

// Closed reports whether the connection has transitioned to CLOSED; the
// reactor deregisters and closes the fd once this is true.
func (c *Connection) Closed() bool { return c.state == stateClosed }
