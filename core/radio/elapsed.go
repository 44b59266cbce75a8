package radio

import (
	"context"
	"fmt"
	"time"
)

// FormatElapsedTime renders a play-time counter as m:ss. Minutes are not
// capped at 60: 3661 seconds formats as "61:01".
func FormatElapsedTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// RunElapsedTimer drives the elapsed-play display off a one-second ticker
// until the context is cancelled. Cancellation is immediate: the ticker stops
// and no further update is scheduled.
func RunElapsedTimer(ctx context.Context, session *Session, display Display) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			display.Elapsed(FormatElapsedTime(session.TickElapsed()))
		}
	}
}
