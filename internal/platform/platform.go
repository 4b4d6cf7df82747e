package platform

import (
	"context"
	"errors"

	"github.com/adamavenir/tern/internal/types"
)

var (
	// ErrUnknownPlatform is returned when no adapter serves a channel's platform.
	ErrUnknownPlatform = errors.New("unknown platform")
	// ErrUnknownChannel is returned when a channel does not exist on its platform.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrUnknownMessage is returned when a message id does not resolve.
	ErrUnknownMessage = errors.New("unknown message")
)

// Listing is a channel list together with its sectioned display rows.
type Listing struct {
	Channels     []types.Channel
	DisplayItems []types.DisplayItem
}

// ChannelProvider lists channels and changes directory state.
type ChannelProvider interface {
	ListChannels(ctx context.Context) (Listing, error)
	ToggleSection(ctx context.Context, name string) (Listing, error)
	Follow(ctx context.Context, ch types.Channel) (Listing, error)
	Unfollow(ctx context.Context, ch types.Channel) (Listing, error)
}

// OlderPage is the result of paging back in history. Messages are the older
// messages only, oldest first; NewCount is len(Messages).
type OlderPage struct {
	Messages []types.Message
	NewCount int
	HasMore  bool
}

// SendOptions describe a message to post.
type SendOptions struct {
	Channel     types.Channel
	Body        string
	ReplyTo     string
	Attachments []types.Attachment
}

// MessageProvider reads and writes messages. Message ids are the ids the
// provider returned; channels are identified by the Channel value.
type MessageProvider interface {
	LoadMessages(ctx context.Context, ch types.Channel, limit int) ([]types.Message, bool, error)
	LoadOlderMessages(ctx context.Context, ch types.Channel, beforeID string, limit int) (OlderPage, error)
	SendMessage(ctx context.Context, opts SendOptions) (types.Message, error)
	EditMessage(ctx context.Context, ch types.Channel, messageID, body string) (types.Message, error)
	DeleteMessage(ctx context.Context, ch types.Channel, messageID string) error
	AddReaction(ctx context.Context, ch types.Channel, messageID, emoji string) (types.Message, error)
}

// Subscription carries pushed changes. Channels is signalled when the
// channel list itself changed and should be re-listed. All channels are
// closed when the subscribing context ends.
type Subscription struct {
	Created  <-chan types.MessageEvent
	Updated  <-chan types.MessageEvent
	Deleted  <-chan types.MessageEvent
	Channels <-chan struct{}
}

// EventSource pushes message events.
type EventSource interface {
	Subscribe(ctx context.Context) (Subscription, error)
}

// Cache stores the last known messages of channels, per platform.
type Cache interface {
	GetCachedMessages(platform, channelID string) ([]types.Message, bool, error)
	UpsertCachedMessage(platform, channelID string, message types.Message) error
	DeleteCachedMessage(platform, channelID, messageID string) error
	ReplaceCachedMessages(platform, channelID string, messages []types.Message) error
}

// Adapter is one connected platform. Channels it returns need not have
// Platform set; the Mux stamps it with Name.
type Adapter interface {
	Name() string
	Channels(ctx context.Context) ([]types.Channel, error)
	SetFollowing(ctx context.Context, channelID string, following bool) error
	MessageProvider
	EventSource
}

// SubscriptionBuffer is the capacity of each subscription channel.
const SubscriptionBuffer = 256
