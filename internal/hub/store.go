package hub

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/doc82/bruce-messenger-fun/internal/domain"
)

// The default channel seeded at startup. Its identifier is fixed so clients
// can rely on it across restarts; it has no owner.
var (
	DefaultChannelID   = uuid.MustParse("65fe9132-a31f-11eb-bcbc-0242ac130002")
	DefaultChannelName = "holonet"
)

// ChannelStore holds the ordered collection of channels. Exactly one channel
// exists today; a multi-channel store must keep "first channel is default".
// Like the registry, it is owned exclusively by the Hub and mutated only
// from the dispatcher.
type ChannelStore struct {
	mu       sync.RWMutex
	pageSize int
	channels []*domain.Channel
}

// NewChannelStore creates a store seeded with the default channel. maxPageSize
// caps how many messages a single Paginate or Recent call returns.
func NewChannelStore(maxPageSize int) *ChannelStore {
	return &ChannelStore{
		pageSize: maxPageSize,
		channels: []*domain.Channel{
			domain.NewChannel(DefaultChannelID, DefaultChannelName, uuid.Nil),
		},
	}
}

// Default returns the identity of the default channel: the first one.
func (s *ChannelStore) Default() domain.ChannelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channels[0].Summary()
}

// Summaries returns the identities of all channels, in store order.
func (s *ChannelStore) Summaries() []domain.ChannelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.channels, func(c *domain.Channel, _ int) domain.ChannelSummary {
		return c.Summary()
	})
}

// Append adds a message to the identified channel's log, restoring the
// time-ordering invariant.
func (s *ChannelStore) Append(channelID uuid.UUID, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, err := s.find(channelID)
	if err != nil {
		return err
	}
	channel.Append(msg)
	return nil
}

// Paginate returns up to limit messages from the channel starting at offset,
// clamped to the store's page-size cap.
func (s *ChannelStore) Paginate(channelID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, err := s.find(channelID)
	if err != nil {
		return nil, err
	}
	if limit > s.pageSize {
		limit = s.pageSize
	}
	return channel.Paginate(offset, limit), nil
}

// Recent returns the channel's newest messages, newest first, up to the
// store's page-size cap.
func (s *ChannelStore) Recent(channelID uuid.UUID) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, err := s.find(channelID)
	if err != nil {
		return nil, err
	}
	return channel.Recent(s.pageSize), nil
}

// MessageCount reports how many messages the channel holds.
func (s *ChannelStore) MessageCount(channelID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, err := s.find(channelID)
	if err != nil {
		return 0, err
	}
	return len(channel.Messages), nil
}

// find must be called with the lock held.
func (s *ChannelStore) find(channelID uuid.UUID) (*domain.Channel, error) {
	for _, c := range s.channels {
		if c.ID == channelID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown channel %s", channelID)
}
