package store

import (
	"context"

	"github.com/VTGare/Agenda/slices"
)

type GuildStore interface {
	Guild(ctx context.Context, guildID int64) (*Guild, error)
	EnsureGuild(ctx context.Context, guildID int64) error
	SetOutputChannel(ctx context.Context, guildID, channelID int64) error
	ClearOutputChannel(ctx context.Context, guildID int64) error
	AddAllowedRole(ctx context.Context, guildID, roleID int64) error
	RemoveAllowedRole(ctx context.Context, guildID, roleID int64) error
}

// Guild is the configuration row of a single guild. A zero OutputChannelID
// means no output channel is configured; an empty AllowedRoleIDs set means
// anyone may submit.
type Guild struct {
	ID              int64   `db:"guild_id"`
	OutputChannelID int64   `db:"output_channel_id"`
	AllowedRoleIDs  []int64 `db:"allowed_role_ids"`
}

func (g *Guild) HasOutputChannel() bool {
	return g.OutputChannelID != 0
}

func (g *Guild) RoleAllowed(roleID int64) bool {
	return slices.Contains(g.AllowedRoleIDs, roleID)
}
