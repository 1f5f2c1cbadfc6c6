package postgres

import (
	"context"
	"testing"

	"github.com/VTGare/Agenda/store"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuildStore(t *testing.T) (*guildStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &guildStore{db: mock}, mock
}

var guildRowColumns = []string{"guild_id", "output_channel_id", "allowed_role_ids"}

func TestGuild(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectQuery(`SELECT .+ FROM settings WHERE guild_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(guildRowColumns).
			AddRow(int64(1), int64(100), []int64{5, 7}))

	guild, err := gs.Guild(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), guild.ID)
	assert.Equal(t, int64(100), guild.OutputChannelID)
	assert.Equal(t, []int64{5, 7}, guild.AllowedRoleIDs)
	assert.True(t, guild.HasOutputChannel())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuildNotFound(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectQuery(`SELECT .+ FROM settings WHERE guild_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(guildRowColumns))

	_, err := gs.Guild(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrGuildNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuildQueryError(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectQuery(`SELECT .+ FROM settings`).
		WithArgs(int64(1)).
		WillReturnError(assert.AnError)

	_, err := gs.Guild(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrInternal)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureGuild(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`INSERT INTO settings \(guild_id\) VALUES \(\$1\) ON CONFLICT \(guild_id\) DO NOTHING`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, gs.EnsureGuild(context.Background(), 1))

	// A second call hits the conflict clause and changes nothing.
	mock.ExpectExec(`INSERT INTO settings \(guild_id\)`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, gs.EnsureGuild(context.Background(), 1))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOutputChannel(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`UPDATE settings SET output_channel_id = \$1 WHERE guild_id = \$2`).
		WithArgs(int64(100), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, gs.SetOutputChannel(context.Background(), 1, 100))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearOutputChannel(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`UPDATE settings SET output_channel_id = \$1 WHERE guild_id = \$2`).
		WithArgs(nil, int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, gs.ClearOutputChannel(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAllowedRole(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`UPDATE settings SET allowed_role_ids = array_append`).
		WithArgs(int64(5), int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, gs.AddAllowedRole(context.Background(), 1, 5))

	// The membership guard turns a duplicate append into a no-op.
	mock.ExpectExec(`UPDATE settings SET allowed_role_ids = array_append`).
		WithArgs(int64(5), int64(1), int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, gs.AddAllowedRole(context.Background(), 1, 5))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveAllowedRole(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`UPDATE settings SET allowed_role_ids = array_remove`).
		WithArgs(int64(5), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, gs.RemoveAllowedRole(context.Background(), 1, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettingsExecError(t *testing.T) {
	gs, mock := newGuildStore(t)

	mock.ExpectExec(`UPDATE settings`).
		WithArgs(int64(100), int64(1)).
		WillReturnError(assert.AnError)

	assert.ErrorIs(t, gs.SetOutputChannel(context.Background(), 1, 100), store.ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
