package catalog

import "sync"

// TrackChange is published whenever the download pipeline mutates a track.
type TrackChange struct {
	SourceID string
	State    DownloadState
	Progress float64
}

const subscriberBuffer = 16

// Broadcaster fans out track changes to subscribers. Publishing never blocks:
// a subscriber that falls behind misses updates instead of stalling the
// download pipeline. The UI layer only cares about the latest state anyway.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan TrackChange]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan TrackChange]struct{})}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Broadcaster) Subscribe() chan TrackChange {
	ch := make(chan TrackChange, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan TrackChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers the change to every subscriber that has buffer space.
func (b *Broadcaster) Publish(change TrackChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

// Close drops all subscribers and closes their channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
