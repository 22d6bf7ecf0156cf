package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/WinLedger_Go/internal/leaderboard"
)

func TestHandleGetLeaderboard(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		_, err := s.ledger.RegisterWin(ctx, "g1", fmt.Sprintf("m%02d", i), int64(i))
		require.NoError(t, err)
	}
	h := HandleGetLeaderboard(s.board)
	pattern := "/guilds/{guild}/leaderboard"

	t.Run("first page by points", func(t *testing.T) {
		w := serve(h, http.MethodGet, pattern, "/guilds/g1/leaderboard", nil)

		require.Equal(t, http.StatusOK, w.Code)
		page := decode[leaderboard.Page](t, w)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, 12, page.EntryCount)
		require.Len(t, page.Entries, 10)
		assert.Equal(t, "m12", page.Entries[0].MemberID)
	})

	t.Run("page past the end is clamped", func(t *testing.T) {
		w := serve(h, http.MethodGet, pattern, "/guilds/g1/leaderboard?page=9&days=7", nil)

		require.Equal(t, http.StatusOK, w.Code)
		page := decode[leaderboard.Page](t, w)
		assert.Equal(t, 2, page.Page)
		assert.Len(t, page.Entries, 2)
	})

	t.Run("wins ties order by member id", func(t *testing.T) {
		w := serve(h, http.MethodGet, pattern, "/guilds/g1/leaderboard?metric=wins&page_size=3", nil)

		require.Equal(t, http.StatusOK, w.Code)
		page := decode[leaderboard.Page](t, w)
		require.Len(t, page.Entries, 3)
		assert.Equal(t, "m01", page.Entries[0].MemberID)
		assert.Equal(t, 4, page.TotalPages)
	})

	t.Run("invalid metric", func(t *testing.T) {
		w := serve(h, http.MethodGet, pattern, "/guilds/g1/leaderboard?metric=xp", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrMsgInvalidMetricError, decode[ErrorResponse](t, w).Error)
	})

	t.Run("invalid page", func(t *testing.T) {
		w := serve(h, http.MethodGet, pattern, "/guilds/g1/leaderboard?page=two", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleGetGuildTotals(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.ledger.RegisterWin(ctx, "g1", "m1", 10)
	require.NoError(t, err)
	_, err = s.ledger.RegisterWin(ctx, "g1", "m2", 5)
	require.NoError(t, err)
	_, err = s.ledger.RegisterWin(ctx, "g2", "m1", 100)
	require.NoError(t, err)

	w := serve(HandleGetGuildTotals(s.ledger), http.MethodGet, "/guilds/{guild}/totals", "/guilds/g1/totals", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[TotalsResponse](t, w)
	assert.Equal(t, "g1", resp.GuildID)
	assert.Equal(t, int64(15), resp.Points)
	assert.Equal(t, int64(2), resp.Wins)
}
