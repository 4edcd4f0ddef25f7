// Package registration turns a submitted registration form into a Pending
// team with its members and sends the submitter on to payment.
//
// Submit runs as a saga: the team row is created first, then one
// registration per member concurrently. If any member row or the payment
// link lookup fails, the team is marked Failed so its name is released.
// Nothing is retried.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zignasa/internal/handoff"
	"zignasa/internal/messaging"
	"zignasa/internal/metrics"
	"zignasa/internal/payments"
	"zignasa/internal/team"
	"zignasa/internal/track"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Store is the part of the team repository Submit needs.
type Store interface {
	TeamNameExists(ctx context.Context, name string) (bool, error)
	CreateTeam(ctx context.Context, t *team.Team) (*team.Team, error)
	CreateRegistration(ctx context.Context, reg *team.Registration) (*team.Registration, error)
	MarkFailed(ctx context.Context, id int64) error
}

// Redirect is where a successful submission sends the browser.
type Redirect struct {
	URL           string
	TeamID        int64
	AmountInPaise int64
	// HandoffToken is empty when the handoff could not be saved.
	HandoffToken string
}

type Orchestrator struct {
	teams     Store
	catalog   *track.Catalog
	gateway   payments.Gateway
	handoffs  handoff.Store
	signer    *handoff.Signer
	publisher messaging.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewOrchestrator(
	teams Store,
	catalog *track.Catalog,
	gateway payments.Gateway,
	handoffs handoff.Store,
	signer *handoff.Signer,
	publisher messaging.Publisher,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	return &Orchestrator{
		teams:     teams,
		catalog:   catalog,
		gateway:   gateway,
		handoffs:  handoffs,
		signer:    signer,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

func (o *Orchestrator) Submit(ctx context.Context, f Form) (*Redirect, error) {
	redirect, err := o.submit(ctx, f)
	if err != nil {
		kind := KindOf(err)
		o.metrics.RecordSubmissionFailed(ctx, string(kind))
		o.logger.WarnContext(ctx, "registration rejected", "kind", kind, "team_name", f.TeamName, "error", err)
		return nil, err
	}
	return redirect, nil
}

func (o *Orchestrator) submit(ctx context.Context, f Form) (*Redirect, error) {
	settings, members, err := o.validateForm(f)
	if err != nil {
		return nil, err
	}
	teamName := strings.TrimSpace(f.TeamName)

	exists, err := o.teams.TeamNameExists(ctx, teamName)
	if err != nil {
		return nil, persistenceErr("Could not check the team name. Please try again.", err)
	}
	if exists {
		return nil, validationErr("Team name already taken", team.ErrTeamNameTaken)
	}

	created, err := o.teams.CreateTeam(ctx, &team.Team{
		TeamName:      teamName,
		Domain:        settings.Track,
		PaymentStatus: team.StatusPending,
		TeamSize:      len(members),
	})
	if errors.Is(err, team.ErrTeamNameTaken) {
		return nil, validationErr("Team name already taken", err)
	}
	if err != nil {
		return nil, persistenceErr("Could not create the team. Please try again.", err)
	}
	if created == nil || created.ID == 0 {
		return nil, persistenceErr("Could not create the team. Please try again.", errors.New("no team row returned"))
	}

	if err := o.createRegistrations(ctx, created.ID, members); err != nil {
		o.compensate(ctx, created.ID)
		return nil, persistenceErr("Could not register team members. Please try again.", err)
	}

	amount := settings.Amount(len(members))
	h := handoff.New(created.ID, created.TeamName, settings.Track.String(), amount, members)
	token := o.saveHandoff(ctx, h)

	url, err := o.gateway.CheckoutURL(ctx, payments.Checkout{Track: settings, TeamID: created.ID, AmountInPaise: amount})
	if err != nil {
		o.compensate(ctx, created.ID)
		if token != "" {
			if delErr := o.handoffs.Delete(ctx, h.ID); delErr != nil {
				o.logger.WarnContext(ctx, "failed to drop handoff", "team_id", created.ID, "error", delErr)
			}
		}
		return nil, configurationErr(fmt.Sprintf("Payment is not available for %s yet. Please contact the organisers.", settings.Track), err)
	}

	o.metrics.RecordTeamRegistered(ctx, settings.Track.String(), len(members))
	o.publish(ctx, messaging.Event{
		Type:          messaging.EventRegistrationSubmitted,
		TeamID:        created.ID,
		TeamName:      created.TeamName,
		Domain:        settings.Track.String(),
		MemberCount:   len(members),
		AmountInPaise: amount,
		OccurredAt:    time.Now().UTC(),
	})

	o.logger.InfoContext(ctx, "team registered", "team_id", created.ID, "track", settings.Track, "members", len(members), "gateway", o.gateway.Name())

	return &Redirect{
		URL:           url,
		TeamID:        created.ID,
		AmountInPaise: amount,
		HandoffToken:  token,
	}, nil
}

func (o *Orchestrator) validateForm(f Form) (track.Settings, []team.Member, error) {
	t, err := track.Parse(f.Track)
	if err != nil {
		return track.Settings{}, nil, validationErr("Unknown track", err)
	}
	settings, err := o.catalog.Lookup(t)
	if err != nil {
		return track.Settings{}, nil, validationErr("Unknown track", err)
	}

	if strings.TrimSpace(f.TeamName) == "" {
		return track.Settings{}, nil, validationErr("Team name is required", nil)
	}
	if f.TeamSize < 1 || f.TeamSize > settings.MaxTeamSize {
		return track.Settings{}, nil, validationErr(fmt.Sprintf("Team size must be between 1 and %d", settings.MaxTeamSize), nil)
	}

	members := activeMembers(f.Members, f.TeamSize)
	if len(members) == 0 {
		return track.Settings{}, nil, validationErr("At least one team member is required", nil)
	}

	for i := range members {
		if err := o.validate.Struct(&members[i]); err != nil {
			return track.Settings{}, nil, validationErr(memberMessage(i, err), err)
		}
	}
	return settings, members, nil
}

// createRegistrations inserts all members concurrently and waits for every
// insert to settle. A failed insert does not cancel its siblings.
func (o *Orchestrator) createRegistrations(ctx context.Context, teamID int64, members []team.Member) error {
	var g errgroup.Group
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			if _, err := o.teams.CreateRegistration(ctx, m.Registration(teamID, i)); err != nil {
				return fmt.Errorf("member %d: %w", i+1, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// compensate marks the team Failed. It runs even if the request was cancelled.
func (o *Orchestrator) compensate(ctx context.Context, teamID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := o.teams.MarkFailed(ctx, teamID); err != nil {
		o.logger.ErrorContext(ctx, "failed to mark team failed", "team_id", teamID, "error", err)
		return
	}
	o.logger.InfoContext(ctx, "team marked failed", "team_id", teamID)
}

// saveHandoff returns the cookie token, or "" if the handoff could not be
// stored. Payment goes ahead either way.
func (o *Orchestrator) saveHandoff(ctx context.Context, h *handoff.Handoff) string {
	if err := o.handoffs.Put(ctx, h, o.signer.TTL()); err != nil {
		o.logger.WarnContext(ctx, "failed to save handoff", "team_id", h.TeamID, "error", err)
		return ""
	}
	token, err := o.signer.Issue(h)
	if err != nil {
		o.logger.WarnContext(ctx, "failed to sign handoff token", "team_id", h.TeamID, "error", err)
		return ""
	}
	return token
}

func (o *Orchestrator) publish(ctx context.Context, event messaging.Event) {
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "team_id", event.TeamID, "error", err)
	}
}

// TeamNameExists backs the availability check of the form page.
func (o *Orchestrator) TeamNameExists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	return o.teams.TeamNameExists(ctx, name)
}

func memberMessage(i int, err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("Member %d: %s is %s", i+1, fieldLabel(verrs[0].Field()), problem(verrs[0].Tag()))
	}
	return fmt.Sprintf("Member %d has invalid details", i+1)
}

func fieldLabel(field string) string {
	switch field {
	case "RollNumber":
		return "roll number"
	default:
		return strings.ToLower(field)
	}
}

func problem(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "not a valid email address"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "invalid"
	}
}
