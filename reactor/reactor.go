// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer interface.

package reactor

// Mode selects how a descriptor is armed.
type Mode int

const (
	// LevelTriggered reports the descriptor on every wait while it is readable.
	LevelTriggered Mode = iota
	// OneShot reports the descriptor once, then disarms it until Rearm.
	OneShot
	// Parked registers the descriptor with no read interest. Only hang-up and
	// error conditions can surface until the first Rearm.
	Parked
)

// Flags describe why a descriptor was reported.
type Flags uint8

const (
	FlagReadable Flags = 1 << iota
	FlagHangup
	FlagError
	// FlagWakeup marks the internal wake-up descriptor.
	FlagWakeup
)

// Event is one readiness notification returned by Wait.
type Event struct {
	Fd    int
	Flags Flags
}

// Readable reports whether the descriptor has data or a pending accept.
func (e Event) Readable() bool { return e.Flags&FlagReadable != 0 }

// Hangup reports whether the kernel signalled a hang-up.
func (e Event) Hangup() bool { return e.Flags&FlagHangup != 0 }

// Woken reports whether this event came from Wake.
func (e Event) Woken() bool { return e.Flags&FlagWakeup != 0 }

// Stale reports a notification with nothing to read: a hang-up or error on a
// descriptor whose read interest is not armed, typically one that is owned by
// a worker or already torn down by our own close. Such events are skipped;
// the condition resurfaces as readable once the descriptor is re-armed.
func (e Event) Stale() bool { return !e.Readable() && !e.Woken() }

// EventReactor defines the multiplexer operations used by the server.
type EventReactor interface {
	// Add registers fd for read readiness according to mode.
	Add(fd int, mode Mode) error

	// Rearm arms a OneShot or Parked descriptor for one read notification.
	Rearm(fd int) error

	// Remove drops fd from the interest set.
	Remove(fd int) error

	// Wait blocks until at least one descriptor is ready and fills events.
	// It returns the number of events written.
	Wait(events []Event) (int, error)

	// Wake interrupts a blocked Wait; the woken call reports a FlagWakeup event.
	Wake() error

	// Close releases the multiplexer.
	Close() error
}
