package usecase

import "github.com/rocketscienceinc/tictactoe-rl/internal/entity"

// progressRelay hands progress from the training loop to a consumer on its
// own goroutine. Publish never blocks: an undelivered value is replaced by
// the newer one.
type progressRelay struct {
	ch   chan entity.Progress
	done chan struct{}
}

func newProgressRelay(consume func(entity.Progress)) *progressRelay {
	relay := &progressRelay{
		ch:   make(chan entity.Progress, 1),
		done: make(chan struct{}),
	}

	go func() {
		defer close(relay.done)
		for p := range relay.ch {
			consume(p)
		}
	}()

	return relay
}

// Publish must only be called from one goroutine.
func (that *progressRelay) Publish(p entity.Progress) {
	for {
		select {
		case that.ch <- p:
			return
		default:
		}

		select {
		case <-that.ch:
		default:
		}
	}
}

// Close - delivers what is pending and waits for the consumer to finish.
func (that *progressRelay) Close() {
	close(that.ch)
	<-that.done
}
