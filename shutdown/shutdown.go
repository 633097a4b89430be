// Package shutdown delivers termination signals on a channel, with the
// signal set varying per platform.
package shutdown

import (
	"os"
	"os/signal"
)

// Chan returns a channel that receives the platform's termination
// signals.
func Chan() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	return ch
}
