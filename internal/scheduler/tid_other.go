//go:build !linux

package scheduler

// CurrentThreadID returns 0 on platforms without a cheap thread id;
// IsProcessingThread then always reports false.
func CurrentThreadID() int {
	return 0
}
