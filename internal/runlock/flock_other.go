//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package runlock

import "os"

// Platforms without flock run unlocked.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
