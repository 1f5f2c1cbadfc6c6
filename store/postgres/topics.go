package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/VTGare/Agenda/ctxzap"
	"github.com/VTGare/Agenda/store"
	"github.com/georgysavva/scany/v2/pgxscan"
)

type topicStore struct {
	db Querier
}

var topicColumns = []string{
	"id",
	"guild_id",
	"title",
	"message",
	"priority_level",
	"message_id",
	"message_link",
}

func (ts *topicStore) CreateTopic(ctx context.Context, topic *store.Topic) (*store.Topic, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Insert("todo").
		Columns("guild_id", "title", "message", "priority_level", "message_id", "message_link").
		Values(topic.GuildID, topic.Title, topic.Body, 1, topic.MessageID, topic.MessageLink).
		Suffix("RETURNING " + strings.Join(topicColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, store.ErrInternal
	}

	var created store.Topic
	if err := pgxscan.Get(ctx, ts.db, &created, query, args...); err != nil {
		log.With("guild_id", topic.GuildID, "message_id", topic.MessageID, "error", err).
			Error("failed to insert a topic")
		return nil, store.ErrInternal
	}

	return &created, nil
}

func (ts *topicStore) Topic(ctx context.Context, id int64) (*store.Topic, error) {
	return ts.selectTopic(ctx, sq.Eq{"id": id})
}

func (ts *topicStore) TopicByMessage(ctx context.Context, messageID int64) (*store.Topic, error) {
	return ts.selectTopic(ctx, sq.Eq{"message_id": messageID})
}

func (ts *topicStore) selectTopic(ctx context.Context, pred sq.Eq) (*store.Topic, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Select(topicColumns...).
		From("todo").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, store.ErrInternal
	}

	var topic store.Topic
	if err := pgxscan.Get(ctx, ts.db, &topic, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, store.ErrTopicNotFound
		}

		log.With("predicate", pred, "error", err).
			Error("failed to select a topic")
		return nil, store.ErrInternal
	}

	return &topic, nil
}

// OpenTopics returns the guild's open topics ordered by priority; ties keep
// submission order.
func (ts *topicStore) OpenTopics(ctx context.Context, guildID int64) ([]*store.Topic, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Select(topicColumns...).
		From("todo").
		Where(sq.Eq{"guild_id": guildID}).
		OrderBy("priority_level DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, store.ErrInternal
	}

	var topics []*store.Topic
	if err := pgxscan.Select(ctx, ts.db, &topics, query, args...); err != nil {
		log.With("guild_id", guildID, "error", err).
			Error("failed to select open topics")
		return nil, store.ErrInternal
	}

	return topics, nil
}

// UpdatePriority is a no-op when no topic matches the message: reaction
// events may race with a topic's closure.
func (ts *topicStore) UpdatePriority(ctx context.Context, messageID int64, count int) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Update("todo").
		Set("priority_level", count).
		Where(sq.Eq{"message_id": messageID}).
		ToSql()
	if err != nil {
		return store.ErrInternal
	}

	if _, err := ts.db.Exec(ctx, query, args...); err != nil {
		log.With("message_id", messageID, "error", err).
			Error("failed to update a topic's priority")
		return store.ErrInternal
	}

	return nil
}

func (ts *topicStore) DeleteTopic(ctx context.Context, id int64) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Delete("todo").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return store.ErrInternal
	}

	tag, err := ts.db.Exec(ctx, query, args...)
	if err != nil {
		log.With("id", id, "error", err).
			Error("failed to delete a topic")
		return store.ErrInternal
	}

	if tag.RowsAffected() == 0 {
		return store.ErrTopicNotFound
	}

	return nil
}
