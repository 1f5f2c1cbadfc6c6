package topics

import (
	"context"
	"sort"
	"sync"

	"github.com/VTGare/Agenda/slices"
	"github.com/VTGare/Agenda/store"
)

// memStore is an in-memory store.Store used by the lifecycle and tally tests.
type memStore struct {
	mu     sync.Mutex
	guilds map[int64]*store.Guild
	topics []*store.Topic
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		guilds: make(map[int64]*store.Guild),
		nextID: 1,
	}
}

func (m *memStore) Init(context.Context) error  { return nil }
func (m *memStore) Close(context.Context) error { return nil }

func (m *memStore) seedGuild(guildID, channelID int64, roleIDs ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.guilds[guildID] = &store.Guild{
		ID:              guildID,
		OutputChannelID: channelID,
		AllowedRoleIDs:  roleIDs,
	}
}

func (m *memStore) Guild(_ context.Context, guildID int64) (*store.Guild, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return nil, store.ErrGuildNotFound
	}

	cp := *guild
	cp.AllowedRoleIDs = append([]int64(nil), guild.AllowedRoleIDs...)
	return &cp, nil
}

func (m *memStore) EnsureGuild(_ context.Context, guildID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.guilds[guildID]; !ok {
		m.guilds[guildID] = &store.Guild{ID: guildID}
	}
	return nil
}

func (m *memStore) SetOutputChannel(_ context.Context, guildID, channelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if guild, ok := m.guilds[guildID]; ok {
		guild.OutputChannelID = channelID
	}
	return nil
}

func (m *memStore) ClearOutputChannel(_ context.Context, guildID int64) error {
	return m.SetOutputChannel(nil, guildID, 0)
}

func (m *memStore) AddAllowedRole(_ context.Context, guildID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild, ok := m.guilds[guildID]
	if !ok || slices.Contains(guild.AllowedRoleIDs, roleID) {
		return nil
	}

	guild.AllowedRoleIDs = append(guild.AllowedRoleIDs, roleID)
	return nil
}

func (m *memStore) RemoveAllowedRole(_ context.Context, guildID, roleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	guild, ok := m.guilds[guildID]
	if !ok {
		return nil
	}

	kept := guild.AllowedRoleIDs[:0]
	for _, id := range guild.AllowedRoleIDs {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	guild.AllowedRoleIDs = kept
	return nil
}

func (m *memStore) CreateTopic(_ context.Context, topic *store.Topic) (*store.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.topics {
		if existing.MessageID == topic.MessageID {
			return nil, store.ErrInternal
		}
	}

	created := *topic
	created.ID = m.nextID
	created.PriorityLevel = 1
	m.nextID++

	m.topics = append(m.topics, &created)

	cp := created
	return &cp, nil
}

func (m *memStore) Topic(_ context.Context, id int64) (*store.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topic, ok := slices.Find(m.topics, func(t *store.Topic) bool { return t.ID == id })
	if !ok {
		return nil, store.ErrTopicNotFound
	}

	cp := *topic
	return &cp, nil
}

func (m *memStore) TopicByMessage(_ context.Context, messageID int64) (*store.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	topic, ok := slices.Find(m.topics, func(t *store.Topic) bool { return t.MessageID == messageID })
	if !ok {
		return nil, store.ErrTopicNotFound
	}

	cp := *topic
	return &cp, nil
}

func (m *memStore) OpenTopics(_ context.Context, guildID int64) ([]*store.Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var open []*store.Topic
	for _, topic := range m.topics {
		if topic.GuildID == guildID {
			cp := *topic
			open = append(open, &cp)
		}
	}

	// Stable sort keeps insertion order for equal priorities.
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].PriorityLevel > open[j].PriorityLevel
	})

	return open, nil
}

func (m *memStore) UpdatePriority(_ context.Context, messageID int64, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if topic, ok := slices.Find(m.topics, func(t *store.Topic) bool { return t.MessageID == messageID }); ok {
		topic.PriorityLevel = count
	}
	return nil
}

func (m *memStore) DeleteTopic(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, topic := range m.topics {
		if topic.ID == id {
			m.topics = append(m.topics[:i], m.topics[i+1:]...)
			return nil
		}
	}
	return store.ErrTopicNotFound
}
