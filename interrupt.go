package main

import (
	"context"
	"os"

	"golang.org/x/term"
)

// watchSkipKey reads single bytes from stdin while it is a real
// terminal and sends on out whenever the user presses 's', letting the
// caller end the current pass early without touching file contents.
// It returns immediately, doing nothing, when stdin is not a TTY.
func watchSkipKey(ctx context.Context, out chan<- struct{}) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return
	}

	go func() {
		<-ctx.Done()
		_ = term.Restore(fd, oldState)
	}()

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			if buf[0] == 's' {
				select {
				case out <- struct{}{}:
				default:
				}
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
}
