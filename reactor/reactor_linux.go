//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor with an eventfd for wake-ups.
type linuxReactor struct {
	epfd   int
	wakefd int
	raw    []unix.EpollEvent // reused by Wait, single caller
	closed atomic.Bool
}

// NewReactor constructs an epoll reactor able to return up to maxEvents
// notifications per Wait.
func NewReactor(maxEvents int) (EventReactor, error) {
	if maxEvents <= 0 {
		return nil, fmt.Errorf("reactor: invalid max events %d", maxEvents)
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, fmt.Errorf("eventfd create: %w", err)
	}
	r := &linuxReactor{
		epfd:   epfd,
		wakefd: wakefd,
		raw:    make([]unix.EpollEvent, maxEvents),
	}
	if err := r.Add(wakefd, LevelTriggered); err != nil {
		return nil, multierr.Append(err, r.Close())
	}
	return r, nil
}

func interest(mode Mode) uint32 {
	switch mode {
	case OneShot:
		return unix.EPOLLIN | unix.EPOLLONESHOT
	case Parked:
		return unix.EPOLLONESHOT
	default:
		return unix.EPOLLIN
	}
}

// Add adds file descriptor to epoll.
func (r *linuxReactor) Add(fd int, mode Mode) error {
	ev := unix.EpollEvent{Events: interest(mode), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

// Rearm re-enables a one-shot descriptor.
func (r *linuxReactor) Rearm(fd int) error {
	ev := unix.EpollEvent{Events: interest(OneShot), Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

// Remove removes a file descriptor from the epoll watch list.
func (r *linuxReactor) Remove(fd int) error {
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

// Wait blocks indefinitely for events. Interrupted waits are retried.
func (r *linuxReactor) Wait(events []Event) (int, error) {
	raw := r.raw
	if len(events) < len(raw) {
		raw = raw[:len(events)]
	}
	var n int
	for {
		var err error
		n, err = unix.EpollWait(r.epfd, raw, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("epoll wait: %w", err)
		}
		break
	}

	for i := 0; i < n; i++ {
		ev := raw[i]
		fd := int(ev.Fd)
		var flags Flags
		if ev.Events&unix.EPOLLIN != 0 {
			flags |= FlagReadable
		}
		if ev.Events&unix.EPOLLHUP != 0 {
			flags |= FlagHangup
		}
		if ev.Events&unix.EPOLLERR != 0 {
			flags |= FlagError
		}
		if fd == r.wakefd {
			r.drainWake()
			flags = FlagWakeup
		}
		events[i] = Event{Fd: fd, Flags: flags}
	}
	return n, nil
}

// Wake makes the current or next Wait return a FlagWakeup event.
func (r *linuxReactor) Wake() error {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(r.wakefd, one[:]); err != nil && err != unix.EAGAIN {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

func (r *linuxReactor) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(r.wakefd, buf[:])
}

// Close closes the epoll instance and the wake-up descriptor.
func (r *linuxReactor) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	return multierr.Combine(
		unix.Close(r.wakefd),
		unix.Close(r.epfd),
	)
}
