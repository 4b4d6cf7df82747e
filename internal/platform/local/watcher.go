package local

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/adamavenir/tern/internal/db"
	"github.com/adamavenir/tern/internal/logging"
	"github.com/adamavenir/tern/internal/platform"
	"github.com/adamavenir/tern/internal/types"
	"github.com/fsnotify/fsnotify"
)

// Subscribe tails the workspace journal from its current end. Every write
// made through any Adapter on this workspace, in this process or another,
// becomes one event.
func (a *Adapter) Subscribe(ctx context.Context) (platform.Subscription, error) {
	if err := os.MkdirAll(a.project.Dir(), 0o755); err != nil {
		return platform.Subscription{}, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return platform.Subscription{}, err
	}
	// Watch the directory; the journal may not exist yet and may be replaced.
	if err := watcher.Add(a.project.Dir()); err != nil {
		_ = watcher.Close()
		return platform.Subscription{}, err
	}

	var offset int64
	if info, err := os.Stat(a.project.JournalPath()); err == nil {
		offset = info.Size()
	}

	w := &journalWatcher{
		adapter:  a,
		watcher:  watcher,
		offset:   offset,
		created:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		updated:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		deleted:  make(chan types.MessageEvent, platform.SubscriptionBuffer),
		channels: make(chan struct{}, 1),
	}
	go w.loop(ctx)

	return platform.Subscription{
		Created:  w.created,
		Updated:  w.updated,
		Deleted:  w.deleted,
		Channels: w.channels,
	}, nil
}

type journalWatcher struct {
	adapter *Adapter
	watcher *fsnotify.Watcher
	offset  int64

	created  chan types.MessageEvent
	updated  chan types.MessageEvent
	deleted  chan types.MessageEvent
	channels chan struct{}
}

func (w *journalWatcher) loop(ctx context.Context) {
	defer func() {
		_ = w.watcher.Close()
		close(w.created)
		close(w.updated)
		close(w.deleted)
		close(w.channels)
	}()

	poll := time.NewTicker(w.adapter.PollInterval)
	defer poll.Stop()

	var debounce *time.Timer
	var fire <-chan time.Time
	journal := filepath.Base(w.adapter.project.JournalPath())

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != journal {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce == nil {
					debounce = time.NewTimer(w.adapter.Debounce)
				} else {
					debounce.Reset(w.adapter.Debounce)
				}
				fire = debounce.C
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher", "journal watcher error: %v", err)
		case <-fire:
			fire = nil
			if !w.drain(ctx) {
				return
			}
		case <-poll.C:
			if !w.drain(ctx) {
				return
			}
		}
	}
}

// drain publishes every record appended since the last read. It returns
// false if ctx ended while publishing.
func (w *journalWatcher) drain(ctx context.Context) bool {
	records, next, err := db.ReadJournalFrom(w.adapter.project.JournalPath(), w.offset)
	if err != nil {
		logging.Error("watcher", err, "read journal")
		return true
	}
	w.offset = next
	for _, record := range records {
		if !w.publish(ctx, record) {
			return false
		}
	}
	return true
}

func (w *journalWatcher) publish(ctx context.Context, record db.JournalRecord) bool {
	key := w.adapter.key(record.ChannelID)
	var out chan types.MessageEvent
	event := types.MessageEvent{ChannelKey: key, MessageID: record.MessageID}

	switch record.Type {
	case db.RecordChannel, db.RecordFollow:
		select {
		case w.channels <- struct{}{}:
		default:
		}
		return true
	case db.RecordMessage:
		out, event.Kind = w.created, types.EventCreated
	case db.RecordMessageUpdate, db.RecordReaction:
		out, event.Kind = w.updated, types.EventUpdated
	case db.RecordMessageDelete:
		out, event.Kind = w.deleted, types.EventDeleted
	default:
		return true
	}
	if record.Message != nil && event.Kind != types.EventDeleted {
		msg := *record.Message
		msg.ChannelKey = key
		event.Message = msg
		if event.MessageID == "" {
			event.MessageID = msg.ID
		}
	}

	logging.Debug("watcher", "%s %s in %s", event.Kind, event.MessageID, key)
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
