// Package leaderboard answers rank and ranking queries over the counter store.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/osse101/WinLedger_Go/internal/domain"
	"github.com/osse101/WinLedger_Go/internal/logger"
	"github.com/osse101/WinLedger_Go/internal/metrics"
	"github.com/osse101/WinLedger_Go/internal/repository"
)

// Page is one leaderboard page together with the paging totals
type Page struct {
	Entries    []domain.LeaderboardEntry `json:"entries"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	TotalPages int                       `json:"total_pages"`
	EntryCount int                       `json:"entry_count"`
}

// Service defines the interface for leaderboard queries
type Service interface {
	// GetRank returns 1 + the number of members with a strictly greater value.
	// Members without counters are ranked with a value of 0.
	GetRank(ctx context.Context, guildID, memberID string, metric domain.Metric, window domain.Window) (int, error)
	// GetLeaderboardPage returns entries ordered by value descending, then
	// member id ascending. Pages outside the range yield an empty slice.
	GetLeaderboardPage(ctx context.Context, guildID string, metric domain.Metric, window domain.Window, page, pageSize int) ([]domain.LeaderboardEntry, error)
	GetEntryCount(ctx context.Context, guildID string, window domain.Window) (int, error)
	// GetPage clamps page into range and returns it with the paging totals
	GetPage(ctx context.Context, guildID string, metric domain.Metric, window domain.Window, page, pageSize int) (*Page, error)
}

type service struct {
	repo    repository.Rankings
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a leaderboard service. A non-positive timeout uses DefaultQueryTimeout.
func NewService(repo repository.Rankings, timeout time.Duration) Service {
	return newService(repo, timeout, time.Now)
}

func newService(repo repository.Rankings, timeout time.Duration, now func() time.Time) *service {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &service{repo: repo, timeout: timeout, now: now}
}

// TotalPages returns the number of pages needed for count entries
func TotalPages(count, pageSize int) int {
	pageSize = normalizePageSize(pageSize)
	if count <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage moves page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func normalizePageSize(pageSize int) int {
	if pageSize <= 0 {
		return domain.DefaultPageSize
	}
	if pageSize > MaxPageSize {
		return MaxPageSize
	}
	return pageSize
}

// since maps a window to the store convention: zero means all-time
func (s *service) since(window domain.Window) time.Time {
	if window.IsAllTime() {
		return time.Time{}
	}
	return window.Since(s.now())
}

// run executes fn under the query timeout and records its latency
func (s *service) run(ctx context.Context, query string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		metrics.QueryTimeouts.WithLabelValues(query).Inc()
		log.Warn(LogMsgQueryTimedOut, "query", query, "timeout", s.timeout)
		return fmt.Errorf("%w: %s after %s", domain.ErrQueryTimeout, query, s.timeout)
	}
	log.Error(LogMsgQueryFailed, "query", query, "error", err)
	return err
}

func validate(guildID string, metric domain.Metric, window domain.Window) error {
	if guildID == "" {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if !metric.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMetric, metric)
	}
	return window.Validate()
}

func (s *service) GetRank(ctx context.Context, guildID, memberID string, metric domain.Metric, window domain.Window) (int, error) {
	if err := validate(guildID, metric, window); err != nil {
		return 0, err
	}
	if memberID == "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgMemberRequired)
	}

	var greater int
	err := s.run(ctx, QueryRank, func(ctx context.Context) error {
		var err error
		greater, err = s.repo.CountGreater(ctx, guildID, memberID, metric, s.since(window))
		return err
	})
	if err != nil {
		return 0, err
	}
	return greater + 1, nil
}

func (s *service) GetLeaderboardPage(ctx context.Context, guildID string, metric domain.Metric, window domain.Window, page, pageSize int) ([]domain.LeaderboardEntry, error) {
	if err := validate(guildID, metric, window); err != nil {
		return nil, err
	}
	pageSize = normalizePageSize(pageSize)
	// Pages whose offset does not fit in an int cannot hold entries
	if page < 1 || page-1 > math.MaxInt/pageSize {
		return []domain.LeaderboardEntry{}, nil
	}

	var entries []domain.LeaderboardEntry
	err := s.run(ctx, QueryLeaderboard, func(ctx context.Context) error {
		var err error
		entries, err = s.repo.GetLeaderboard(ctx, guildID, metric, s.since(window), pageSize, (page-1)*pageSize)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *service) GetEntryCount(ctx context.Context, guildID string, window domain.Window) (int, error) {
	if guildID == "" {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgGuildRequired)
	}
	if err := window.Validate(); err != nil {
		return 0, err
	}

	var count int
	err := s.run(ctx, QueryEntryCount, func(ctx context.Context) error {
		var err error
		count, err = s.repo.CountEntries(ctx, guildID, s.since(window))
		return err
	})
	return count, err
}

func (s *service) GetPage(ctx context.Context, guildID string, metric domain.Metric, window domain.Window, page, pageSize int) (*Page, error) {
	count, err := s.GetEntryCount(ctx, guildID, window)
	if err != nil {
		return nil, err
	}
	pageSize = normalizePageSize(pageSize)
	total := TotalPages(count, pageSize)
	page = ClampPage(page, total)

	entries, err := s.GetLeaderboardPage(ctx, guildID, metric, window, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &Page{
		Entries:    entries,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total,
		EntryCount: count,
	}, nil
}
