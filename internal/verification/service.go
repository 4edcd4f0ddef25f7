package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"zignasa/internal/messaging"
	"zignasa/internal/metrics"
	"zignasa/internal/payments"
	"zignasa/internal/team"
	"zignasa/internal/track"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidRequest   = errors.New("invalid verification request")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrTeamClosed       = errors.New("team registration is closed")
	ErrPaymentMismatch  = errors.New("payment does not belong to team")
)

// TeamStore is the part of the team repository verification needs.
type TeamStore interface {
	GetTeam(ctx context.Context, id int64) (*team.Team, error)
	ListRegistrations(ctx context.Context, teamID int64) ([]team.Registration, error)
	CreateRegistration(ctx context.Context, reg *team.Registration) (*team.Registration, error)
	MarkCompleted(ctx context.Context, id int64, orderID, paymentID string, amountInPaise int64) error
}

type Service struct {
	teams     TeamStore
	catalog   *track.Catalog
	gateway   payments.Gateway
	publisher messaging.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewService(teams TeamStore, catalog *track.Catalog, gateway payments.Gateway, publisher messaging.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		teams:     teams,
		catalog:   catalog,
		gateway:   gateway,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

// Verify checks the payment signature and completes the team. For a team
// that is already Completed it returns the stored data together with
// team.ErrAlreadyCompleted.
func (s *Service) Verify(ctx context.Context, req Request) (*Data, error) {
	if err := s.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, ErrInvalidSignature
	}

	t, err := s.teams.GetTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	switch t.PaymentStatus {
	case team.StatusCompleted:
		return s.alreadyCompleted(ctx, t, req)
	case team.StatusFailed, team.StatusRefunded:
		return nil, fmt.Errorf("%w: team %d is %s", ErrTeamClosed, t.ID, t.PaymentStatus)
	}
	if t.RazorpayOrderID != nil && *t.RazorpayOrderID != req.RazorpayOrderID {
		return nil, fmt.Errorf("%w: team %d was checked out with another order", ErrPaymentMismatch, t.ID)
	}

	if err := s.ensureRegistrations(ctx, t.ID, req.Members); err != nil {
		return nil, err
	}

	amount := s.amountFor(t)
	err = s.teams.MarkCompleted(ctx, t.ID, req.RazorpayOrderID, req.RazorpayPaymentID, amount)
	if errors.Is(err, team.ErrAlreadyCompleted) {
		return s.completedElsewhere(ctx, t.ID, req)
	}
	if errors.Is(err, team.ErrPaymentUsed) {
		return nil, fmt.Errorf("%w: %v", ErrPaymentMismatch, err)
	}
	if errors.Is(err, team.ErrInvalidTransition) {
		return nil, fmt.Errorf("%w: %v", ErrTeamClosed, err)
	}
	if err != nil {
		return nil, err
	}

	t, err = s.teams.GetTeam(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	data, err := s.dataFor(ctx, t)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentVerified(ctx, t.Domain.String())
	if err := s.publisher.Publish(ctx, messaging.Event{
		Type:          messaging.EventPaymentVerified,
		TeamID:        t.ID,
		TeamName:      t.TeamName,
		Domain:        t.Domain.String(),
		MemberCount:   data.MemberCount,
		AmountInPaise: amount,
		OrderID:       req.RazorpayOrderID,
		PaymentID:     req.RazorpayPaymentID,
		OccurredAt:    time.Now().UTC(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", messaging.EventPaymentVerified, "team_id", t.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "payment verified", "team_id", t.ID, "payment_id", req.RazorpayPaymentID, "amount_in_paise", amount)
	return data, nil
}

// completedElsewhere handles a concurrent verification that won the update.
func (s *Service) completedElsewhere(ctx context.Context, teamID int64, req Request) (*Data, error) {
	t, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.alreadyCompleted(ctx, t, req)
}

// alreadyCompleted reports a completed team only to the payment that
// completed it.
func (s *Service) alreadyCompleted(ctx context.Context, t *team.Team, req Request) (*Data, error) {
	if t.RazorpayPaymentID == nil || *t.RazorpayPaymentID != req.RazorpayPaymentID {
		return nil, fmt.Errorf("%w: team %d was completed by another payment", ErrPaymentMismatch, t.ID)
	}
	data, err := s.dataFor(ctx, t)
	if err != nil {
		return nil, err
	}
	return data, team.ErrAlreadyCompleted
}

// ensureRegistrations stores the submitted members if the team has none,
// which happens when the form's member inserts were lost.
func (s *Service) ensureRegistrations(ctx context.Context, teamID int64, members []team.Member) error {
	if len(members) == 0 {
		return nil
	}
	regs, err := s.teams.ListRegistrations(ctx, teamID)
	if err != nil {
		return err
	}
	if len(regs) > 0 {
		return nil
	}
	for i, m := range members {
		if _, err := s.teams.CreateRegistration(ctx, m.Trimmed().Registration(teamID, i)); err != nil {
			return fmt.Errorf("store member %d: %w", i+1, err)
		}
	}
	s.logger.InfoContext(ctx, "stored members from verification request", "team_id", teamID, "members", len(members))
	return nil
}

// amountFor prices the team from the track fee, falling back to the amount
// recorded when checkout was opened.
func (s *Service) amountFor(t *team.Team) int64 {
	if settings, err := s.catalog.Lookup(t.Domain); err == nil {
		if amount := settings.Amount(t.TeamSize); amount > 0 {
			return amount
		}
	}
	if t.AmountInPaise != nil {
		return *t.AmountInPaise
	}
	return 0
}

func (s *Service) dataFor(ctx context.Context, t *team.Team) (*Data, error) {
	regs, err := s.teams.ListRegistrations(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	count := len(regs)
	if count == 0 {
		count = t.TeamSize
	}

	data := &Data{
		TeamID:      t.ID,
		TeamName:    t.TeamName,
		Domain:      t.Domain.String(),
		MemberCount: count,
	}
	if t.RazorpayPaymentID != nil {
		data.PaymentID = *t.RazorpayPaymentID
	}
	if t.RazorpayOrderID != nil {
		data.OrderID = *t.RazorpayOrderID
	}
	if t.AmountInPaise != nil {
		data.Amount = *t.AmountInPaise
	}
	return data, nil
}

// Outcome maps a Verify result to the endpoint's status code and body.
func Outcome(data *Data, err error) (int, Response) {
	switch {
	case err == nil:
		return http.StatusOK, Response{Success: true, Message: "Payment verified successfully", Data: data}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, Response{Message: "Invalid verification request"}
	case errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest, Response{Message: "Invalid payment signature"}
	case errors.Is(err, ErrPaymentMismatch):
		return http.StatusBadRequest, Response{Message: "Payment does not match this team"}
	case errors.Is(err, team.ErrTeamNotFound):
		return http.StatusNotFound, Response{Message: "Team not found"}
	case errors.Is(err, team.ErrAlreadyCompleted):
		return http.StatusConflict, Response{Message: "Payment already verified", Data: data}
	case errors.Is(err, ErrTeamClosed):
		return http.StatusGone, Response{Message: "Team registration is closed"}
	default:
		return http.StatusInternalServerError, Response{Message: "Payment verification failed"}
	}
}
