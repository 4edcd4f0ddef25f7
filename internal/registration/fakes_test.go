package registration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"zignasa/internal/config"
	"zignasa/internal/handoff"
	"zignasa/internal/logger"
	"zignasa/internal/messaging"
	"zignasa/internal/metrics"
	"zignasa/internal/payments"
	"zignasa/internal/team"
	"zignasa/internal/track"
)

const webDevLink = "https://rzp.io/l/zignasa-webdev"

type fakeStore struct {
	mu            sync.Mutex
	nextID        int64
	teams         map[int64]*team.Team
	registrations []team.Registration

	createTeamCalls int
	failedIDs       []int64

	createTeamErr  error
	failRegistrant string
	raceOnCreate   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{teams: make(map[int64]*team.Team)}
}

func (s *fakeStore) TeamNameExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.teams {
		if strings.EqualFold(t.TeamName, strings.TrimSpace(name)) && t.PaymentStatus != team.StatusFailed {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateTeam(ctx context.Context, t *team.Team) (*team.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.createTeamCalls++
	if s.createTeamErr != nil {
		return nil, s.createTeamErr
	}
	if s.raceOnCreate {
		return nil, team.ErrTeamNameTaken
	}
	s.nextID++
	created := *t
	created.ID = s.nextID
	s.teams[created.ID] = &created
	return &created, nil
}

func (s *fakeStore) CreateRegistration(ctx context.Context, reg *team.Registration) (*team.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failRegistrant != "" && reg.Name == s.failRegistrant {
		return nil, errors.New("insert failed")
	}
	if _, ok := s.teams[reg.TeamID]; !ok {
		return nil, errors.New("foreign key violation")
	}
	s.registrations = append(s.registrations, *reg)
	return reg, nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.teams[id]
	if !ok {
		return team.ErrTeamNotFound
	}
	t.PaymentStatus = team.StatusFailed
	s.failedIDs = append(s.failedIDs, id)
	return nil
}

func (s *fakeStore) registrationsFor(teamID int64) []team.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []team.Registration
	for _, r := range s.registrations {
		if r.TeamID == teamID {
			out = append(out, r)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type failingHandoffs struct{ handoff.Store }

func (failingHandoffs) Put(ctx context.Context, h *handoff.Handoff, ttl time.Duration) error {
	return errors.New("redis unavailable")
}

type fixture struct {
	store        *fakeStore
	handoffs     *handoff.MemoryStore
	signer       *handoff.Signer
	publisher    *recordingPublisher
	catalog      *track.Catalog
	orchestrator *Orchestrator
}

func newFixture() *fixture {
	catalog, err := track.NewCatalog([]config.TrackConfig{
		{Name: "Web Dev", MaxTeamSize: 5, FeePerMemberPaise: 20000, PaymentLink: webDevLink},
		{Name: "Agentic AI", MaxTeamSize: 5, FeePerMemberPaise: 25000, PaymentLink: "https://rzp.io/l/zignasa-ai"},
		{Name: "UI/UX", MaxTeamSize: 3, FeePerMemberPaise: 15000},
	})
	if err != nil {
		panic(err)
	}

	f := &fixture{
		store:     newFakeStore(),
		handoffs:  handoff.NewMemoryStore(),
		signer:    handoff.NewSigner("test-secret", 30*time.Minute),
		publisher: &recordingPublisher{},
		catalog:   catalog,
	}
	f.orchestrator = NewOrchestrator(f.store, catalog, payments.NewLinks("key-secret"), f.handoffs, f.signer, f.publisher, logger.Discard(), metrics.NewMock())
	return f
}

func byteBandits() Form {
	return Form{
		TeamName: "Byte Bandits",
		Track:    "Web Dev",
		TeamSize: 3,
		Members: []team.Member{
			{Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210", College: "KL University", RollNumber: "2100030001"},
			{Name: "Ravi Kumar", Email: "ravi@example.com", Phone: "9876543211", College: "KL University", RollNumber: "2100030002"},
			{Name: "Meera Das", Email: "meera@example.com", Phone: "9876543212", College: "KL University", RollNumber: "2100030003"},
		},
	}
}
