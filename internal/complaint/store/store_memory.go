package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civiceye/internal/complaint/models"
	"civiceye/pkg/platform/sentinel"
)

// InMemoryStore keeps complaints in a mutex-guarded map. All reads hand out
// deep copies so callers can never mutate stored state, and AppendTransition
// runs under the write lock, matching the single-document atomicity the
// interface demands.
type InMemoryStore struct {
	mu         sync.RWMutex
	complaints map[string]models.Complaint
	byTicket   map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		complaints: make(map[string]models.Complaint),
		byTicket:   make(map[string]string),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, c models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byTicket[c.TicketID]; taken {
		return sentinel.ErrConflict
	}
	s.complaints[c.ID] = c.Clone()
	s.byTicket[c.TicketID] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.complaints[id]; ok {
		return c.Clone(), nil
	}
	return models.Complaint{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByTicketID(_ context.Context, ticketID string) (models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byTicket[ticketID]; ok {
		return s.complaints[id].Clone(), nil
	}
	return models.Complaint{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) TicketIDExists(_ context.Context, ticketID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, taken := s.byTicket[ticketID]
	return taken, nil
}

func (s *InMemoryStore) ListBySubmitter(_ context.Context, submitterID string) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Complaint
	for _, c := range s.complaints {
		if !c.IsAnonymous && c.SubmittedBy == submitterID {
			out = append(out, c.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]models.Complaint, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Complaint
	for _, c := range s.complaints {
		if matchesFilter(c, filter) {
			matched = append(matched, c.Clone())
		}
	}
	sortNewestFirst(matched)

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemoryStore) AppendTransition(_ context.Context, loc Locator, change models.StatusChange, remark *models.Remark) (models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := loc.InternalID
	if id == "" {
		var ok bool
		id, ok = s.byTicket[loc.TicketID]
		if !ok {
			return models.Complaint{}, sentinel.ErrNotFound
		}
	}
	c, ok := s.complaints[id]
	if !ok {
		return models.Complaint{}, sentinel.ErrNotFound
	}

	c.Status = change.Status
	c.StatusHistory = append(c.StatusHistory, change)
	if remark != nil {
		c.Remarks = append(c.Remarks, *remark)
	}
	c.UpdatedAt = change.Timestamp
	s.complaints[id] = c

	return c.Clone(), nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, typ models.Type, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.complaints {
		if typ != "" && c.Type != typ {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		count++
	}
	return count, nil
}

func (s *InMemoryStore) DailyTrend(_ context.Context, typ models.Type, since time.Time) ([]models.DailyTrendItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make(map[string]int)
	for _, c := range s.complaints {
		if typ != "" && c.Type != typ {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		buckets[c.CreatedAt.Local().Format("2006-01-02")]++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]models.DailyTrendItem, 0, len(days))
	for _, day := range days {
		out = append(out, models.DailyTrendItem{Date: day, Count: buckets[day]})
	}
	return out, nil
}

func matchesFilter(c models.Complaint, filter models.ListFilter) bool {
	if filter.Type != "" && c.Type != filter.Type {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if c.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" &&
		!strings.Contains(strings.ToUpper(c.TicketID), strings.ToUpper(filter.Search)) {
		return false
	}
	return true
}

func sortNewestFirst(cs []models.Complaint) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].TicketID > cs[j].TicketID
		}
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}
