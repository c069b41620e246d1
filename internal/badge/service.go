package badge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendhq/tend/internal/logger"
)

// Badge is an earned achievement.
type Badge struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
}

// Progress tracks the counters badges are awarded from.
type Progress struct {
	UserID        string  `json:"user_id"`
	TasksCredited int     `json:"tasks_credited"`
	TotalXPEarned int     `json:"total_xp_earned"`
	Redemptions   int     `json:"redemptions"`
	StreakDays    int     `json:"streak_days"`
	Badges        []Badge `json:"badges"`

	lastCreditDay time.Time
}

// Service tracks badge progress from ledger events. It is a passive
// observer: it holds derived counters only and the ledger never waits on it.
type Service interface {
	RecordCredit(ctx context.Context, userID string, amount int, at time.Time)
	RecordRedemption(ctx context.Context, userID string)
	GetProgress(ctx context.Context, userID string) *Progress
}

type service struct {
	mu       sync.Mutex
	progress map[string]*Progress
	loc      *time.Location
}

// NewService creates a badge service. loc defines the calendar day used for
// streak tracking; nil means the process-local zone.
func NewService(loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{
		progress: make(map[string]*Progress),
		loc:      loc,
	}
}

func (s *service) get(userID string) *Progress {
	p, ok := s.progress[userID]
	if !ok {
		p = &Progress{UserID: userID}
		s.progress[userID] = p
	}
	return p
}

func (s *service) RecordCredit(ctx context.Context, userID string, amount int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.get(userID)
	p.TasksCredited++
	p.TotalXPEarned += amount

	local := at.In(s.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	switch {
	case p.lastCreditDay.IsZero():
		p.StreakDays = 1
	case day.Equal(p.lastCreditDay):
		// Same day, streak unchanged.
	case day.Equal(p.lastCreditDay.AddDate(0, 0, 1)):
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.lastCreditDay = day

	s.award(ctx, p, at)
}

func (s *service) RecordRedemption(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.get(userID)
	p.Redemptions++
	s.award(ctx, p, time.Now())
}

func (s *service) GetProgress(ctx context.Context, userID string) *Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.get(userID)
	cp := *p
	cp.Badges = append([]Badge(nil), p.Badges...)
	sort.SliceStable(cp.Badges, func(i, j int) bool {
		return cp.Badges[i].EarnedAt.Before(cp.Badges[j].EarnedAt)
	})
	return &cp
}

func (s *service) award(ctx context.Context, p *Progress, at time.Time) {
	for _, def := range definitions {
		if !def.earned(p) {
			continue
		}
		if hasBadge(p, def.Key) {
			continue
		}
		p.Badges = append(p.Badges, Badge{Key: def.Key, Name: def.Name, EarnedAt: at})
		logger.FromContext(ctx).Info("Badge earned",
			"user_id", p.UserID, "badge", def.Key)
	}
}

func hasBadge(p *Progress, key string) bool {
	for _, b := range p.Badges {
		if b.Key == key {
			return true
		}
	}
	return false
}
