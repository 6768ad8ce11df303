package prediction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"churnportal/internal/app/policies"
	"churnportal/internal/domain/auth"
	"churnportal/internal/domain/employee"
)

// Messages shown in place of a result when the API cannot be reached or fails.
const (
	SingleFailure = "Error: Unable to connect to server"
	BatchFailure  = "Error while contacting batch prediction API. Please check backend /predict-batch."
)

var errAPIMissing = errors.New("prediction: api client required")

// Service turns page input into prediction API calls. It never returns an
// error: failures come back as the display sentinel of the endpoint.
type Service struct {
	API    policies.PredictionPort
	Audit  policies.AuditPort
	Logger *slog.Logger
	// Timeout bounds a single API call. Zero means no bound.
	Timeout time.Duration
	Now     func() time.Time
}

// Predict rescales the record from scale and asks the API for a verdict.
func (s *Service) Predict(ctx context.Context, record employee.Record, scale employee.Scale) employee.Prediction {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	started := s.now()
	payload := record.Normalized(scale)

	var (
		result employee.Prediction
		cause  error
	)
	if s.API == nil {
		cause = errAPIMissing
	} else {
		label, err := s.API.Predict(ctx, payload)
		cause = err
		if err == nil {
			result = employee.Prediction{Label: label}
		}
	}
	if cause != nil {
		s.logError("single prediction failed", cause)
		result = employee.Prediction{Error: SingleFailure}
	}

	event := s.event(ctx, policies.KindSingle, scale, 1, started, cause)
	event.Label = result.Label
	s.publish(ctx, event)
	return result
}

// PredictBatch sends the whole batch in exactly one request.
func (s *Service) PredictBatch(ctx context.Context, batch employee.Batch, scale employee.Scale) employee.BatchOutcome {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	started := s.now()
	records := batch.Normalized(scale).Records()

	var (
		outcome employee.BatchOutcome
		cause   error
	)
	switch {
	case s.API == nil:
		cause = errAPIMissing
	case batch.Len() == 0:
		cause = employee.ErrEmptyBatch
	default:
		resp, err := s.API.PredictBatch(ctx, records)
		cause = err
		if err == nil {
			outcome = toOutcome(resp)
		}
	}
	if cause != nil {
		s.logError("batch prediction failed", cause)
		outcome = employee.BatchOutcome{Summary: employee.BatchSummary{Error: BatchFailure}}
	} else if err := outcome.Summary.Check(); err != nil && s.Logger != nil {
		s.Logger.Warn("batch summary inconsistent",
			"total", outcome.Summary.TotalEmployees,
			"will_stay", outcome.Summary.WillStay,
			"will_leave", outcome.Summary.WillLeave)
	}

	event := s.event(ctx, policies.KindBatch, scale, len(records), started, cause)
	if cause == nil {
		summary := outcome.Summary
		event.Summary = &summary
	}
	s.publish(ctx, event)
	return outcome
}

func toOutcome(resp policies.BatchResponse) employee.BatchOutcome {
	predictions := make([]employee.Prediction, 0, len(resp.Predictions))
	for _, label := range resp.Predictions {
		predictions = append(predictions, employee.Prediction{Label: label})
	}
	return employee.BatchOutcome{Summary: resp.Summary, Predictions: predictions}
}

// callContext detaches the call from the caller's cancellation so a closed
// browser tab does not abort a prediction halfway.
func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.Timeout > 0 {
		return context.WithTimeout(ctx, s.Timeout)
	}
	return ctx, func() {}
}

func (s *Service) event(ctx context.Context, kind policies.PredictionKind, scale employee.Scale, records int, started time.Time, cause error) policies.PredictionEvent {
	event := policies.PredictionEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Username:   auth.UsernameFromContext(ctx),
		Scale:      scale,
		Records:    records,
		Failed:     cause != nil,
		DurationMS: s.now().Sub(started).Milliseconds(),
		OccurredAt: s.now().UTC(),
	}
	if cause != nil {
		event.Cause = cause.Error()
	}
	return event
}

func (s *Service) publish(ctx context.Context, event policies.PredictionEvent) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.PublishPrediction(ctx, event); err != nil && s.Logger != nil {
		s.Logger.Warn("prediction audit publish failed", "event_id", event.ID, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) logError(msg string, err error) {
	if s.Logger == nil || err == nil {
		return
	}
	s.Logger.Error(msg, "error", err)
}
