package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/VTGare/Agenda/ctxzap"
	"github.com/VTGare/Agenda/store"
	"github.com/georgysavva/scany/v2/pgxscan"
)

type guildStore struct {
	db Querier
}

var guildColumns = []string{
	"guild_id",
	"COALESCE(output_channel_id, 0) AS output_channel_id",
	"COALESCE(allowed_role_ids, '{}') AS allowed_role_ids",
}

func (gs *guildStore) Guild(ctx context.Context, guildID int64) (*store.Guild, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Select(guildColumns...).
		From("settings").
		Where(sq.Eq{"guild_id": guildID}).
		ToSql()
	if err != nil {
		return nil, store.ErrInternal
	}

	var guild store.Guild
	if err := pgxscan.Get(ctx, gs.db, &guild, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, store.ErrGuildNotFound
		}

		log.With("guild_id", guildID, "error", err).
			Error("failed to select a guild")
		return nil, store.ErrInternal
	}

	return &guild, nil
}

func (gs *guildStore) EnsureGuild(ctx context.Context, guildID int64) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := psql.
		Insert("settings").
		Columns("guild_id").
		Values(guildID).
		Suffix("ON CONFLICT (guild_id) DO NOTHING").
		ToSql()
	if err != nil {
		return store.ErrInternal
	}

	if _, err := gs.db.Exec(ctx, query, args...); err != nil {
		log.With("guild_id", guildID, "error", err).
			Error("failed to insert a guild")
		return store.ErrInternal
	}

	return nil
}

func (gs *guildStore) SetOutputChannel(ctx context.Context, guildID, channelID int64) error {
	return gs.updateSettings(ctx, guildID, psql.
		Update("settings").
		Set("output_channel_id", channelID).
		Where(sq.Eq{"guild_id": guildID}),
	)
}

func (gs *guildStore) ClearOutputChannel(ctx context.Context, guildID int64) error {
	return gs.updateSettings(ctx, guildID, psql.
		Update("settings").
		Set("output_channel_id", nil).
		Where(sq.Eq{"guild_id": guildID}),
	)
}

// AddAllowedRole has set semantics: appending a role that is already present
// is a no-op thanks to the membership guard in the WHERE clause.
func (gs *guildStore) AddAllowedRole(ctx context.Context, guildID, roleID int64) error {
	return gs.updateSettings(ctx, guildID, psql.
		Update("settings").
		Set("allowed_role_ids", sq.Expr("array_append(COALESCE(allowed_role_ids, '{}'), ?::BIGINT)", roleID)).
		Where(sq.Eq{"guild_id": guildID}).
		Where(sq.Expr("NOT (?::BIGINT = ANY(COALESCE(allowed_role_ids, '{}')))", roleID)),
	)
}

func (gs *guildStore) RemoveAllowedRole(ctx context.Context, guildID, roleID int64) error {
	return gs.updateSettings(ctx, guildID, psql.
		Update("settings").
		Set("allowed_role_ids", sq.Expr("array_remove(allowed_role_ids, ?::BIGINT)", roleID)).
		Where(sq.Eq{"guild_id": guildID}),
	)
}

func (gs *guildStore) updateSettings(ctx context.Context, guildID int64, builder sq.UpdateBuilder) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	query, args, err := builder.ToSql()
	if err != nil {
		return store.ErrInternal
	}

	if _, err := gs.db.Exec(ctx, query, args...); err != nil {
		log.With("guild_id", guildID, "error", err).
			Error("failed to update guild settings")
		return store.ErrInternal
	}

	return nil
}
