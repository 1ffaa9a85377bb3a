//go:build unix

// Package pagesize hints InputBuffer growth sizes at the OS page size so
// that ring-buffer reallocations stay syscall/mmap friendly instead of
// landing on arbitrary byte counts.
package pagesize

import "golang.org/x/sys/unix"

// Get returns the OS page size, or a conservative default if the platform
// call is unavailable.
func Get() int {
	if n := unix.Getpagesize(); n > 0 {
		return n
	}
	return 4096
}
