package notify

import (
	"testing"

	"github.com/mmcdole/boxoffice/internal/domain"
)

func TestSubscribeFiltersEvents(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe(domain.EventPosterUpdated)
	defer sub.Close()

	b.Post(domain.EventFavoritesChanged)
	b.Post(domain.EventPosterUpdated)

	select {
	case e := <-sub.C:
		if e != domain.EventPosterUpdated {
			t.Fatalf("got %q, want poster-updated", e)
		}
	default:
		t.Fatal("expected an event")
	}

	select {
	case e := <-sub.C:
		t.Fatalf("unexpected extra event %q", e)
	default:
	}
}

func TestSubscribeAllAndClose(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe()

	b.Post(domain.EventSelectionChanged)
	if e := <-sub.C; e != domain.EventSelectionChanged {
		t.Fatalf("got %q", e)
	}

	sub.Close()
	sub.Close()
	if _, ok := <-sub.C; ok {
		t.Fatal("channel should be closed")
	}

	// Posting after close must not panic
	b.Post(domain.EventSelectionChanged)
}

func TestPostNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := NewBus()
	sub := b.Subscribe()
	defer sub.Close()

	for i := 0; i < defaultBuffer*3; i++ {
		b.Post(domain.EventBusyChanged)
	}
	if len(sub.C) != defaultBuffer {
		t.Fatalf("buffer holds %d events, want %d", len(sub.C), defaultBuffer)
	}
}

func TestListen(t *testing.T) {
	b := NewBus()
	var got []domain.Event
	stop := b.Listen(func(e domain.Event) { got = append(got, e) }, domain.EventProviderUpdated)

	b.Post(domain.EventProviderUpdated)
	b.Post(domain.EventRatingsUpdated)
	stop()
	b.Post(domain.EventProviderUpdated)

	if len(got) != 1 || got[0] != domain.EventProviderUpdated {
		t.Fatalf("got %v", got)
	}
}
