// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer behind the TCP server:
// an epoll instance with level-triggered and one-shot registrations and an
// eventfd used to interrupt an indefinite wait. Only Linux is implemented.
package reactor
