//go:build linux

package scheduler

import "golang.org/x/sys/unix"

// CurrentThreadID returns the OS thread id of the caller. The result is only
// stable for goroutines locked to their thread.
func CurrentThreadID() int {
	return unix.Gettid()
}
