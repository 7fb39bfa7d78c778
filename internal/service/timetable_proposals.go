package service

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

type timetableProposal struct {
	ID          string
	TermID      string
	Result      *timetable.Result
	Catalog     *catalog
	Tolerance   float64
	RequestedAt time.Time
}

// proposalStore keeps generated timetables in memory until they are saved or expire.
type proposalStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, item := range s.items {
		if now.Sub(item.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[proposal.ID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if s.now().Sub(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *proposalStore) expiresAt(proposal timetableProposal) time.Time {
	return proposal.RequestedAt.Add(s.ttl)
}
