package store

import "context"

type TopicStore interface {
	CreateTopic(ctx context.Context, topic *Topic) (*Topic, error)
	Topic(ctx context.Context, id int64) (*Topic, error)
	TopicByMessage(ctx context.Context, messageID int64) (*Topic, error)
	OpenTopics(ctx context.Context, guildID int64) ([]*Topic, error)
	UpdatePriority(ctx context.Context, messageID int64, count int) error
	DeleteTopic(ctx context.Context, id int64) error
}

// Topic is an open suggestion tracked in the todo table. The row exists only
// while the topic is open; closing deletes it and the edited message in the
// output channel becomes the only record.
type Topic struct {
	ID            int64  `db:"id"`
	GuildID       int64  `db:"guild_id"`
	Title         string `db:"title"`
	Body          string `db:"message"`
	PriorityLevel int    `db:"priority_level"`
	MessageID     int64  `db:"message_id"`
	MessageLink   string `db:"message_link"`
}
