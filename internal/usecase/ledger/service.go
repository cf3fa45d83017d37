package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/metrics"
	"github.com/simaogato/wealthflow-ledger/internal/tracing"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/engine"
)

// Engine is the pure computation the service delegates every recompute to
type Engine interface {
	Rebuild(account *domain.Account) (*domain.Account, error)
	Summarize(account *domain.Account, horizon int, now time.Time) *domain.Summary
}

// CreateAccountInput represents the input for opening a new ledger
type CreateAccountInput struct {
	InvestorID        string
	InitialInvestment decimal.Decimal
	MonthlyReturnRate decimal.Decimal
	MonthlyAdditions  decimal.Decimal
}

// RecordInput represents a monthly update submitted for one period
type RecordInput struct {
	Period           domain.Period
	PercentageGrowth decimal.Decimal
	DepositAmount    decimal.Decimal
	DepositDate      *time.Time
	WithdrawalAmount decimal.Decimal
	WithdrawalDate   *time.Time
}

// SettingsInput represents the projection configuration of an account
type SettingsInput struct {
	MonthlyReturnRate decimal.Decimal
	MonthlyAdditions  decimal.Decimal
}

// LedgerService handles ledger reads and the read-recompute-write cycle of every mutation
type LedgerService struct {
	Repo   domain.LedgerRepository
	Engine Engine

	logger           zerolog.Logger
	maxAttempts      int
	projectionMonths int
	maxHorizon       int
	now              func() time.Time
	tracer           trace.Tracer
}

// Option configures the service
type Option func(*LedgerService)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *LedgerService) {
		s.logger = logger
	}
}

// WithMaxAttempts sets how many read-recompute-write attempts a mutation gets on conflicts
func WithMaxAttempts(n int) Option {
	return func(s *LedgerService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithProjectionMonths sets the default projection horizon
func WithProjectionMonths(n int) Option {
	return func(s *LedgerService) {
		if n > 0 {
			s.projectionMonths = n
		}
	}
}

// WithMaxProjectionMonths sets the largest horizon GetSummary accepts
func WithMaxProjectionMonths(n int) Option {
	return func(s *LedgerService) {
		if n > 0 {
			s.maxHorizon = n
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new LedgerService instance
func NewLedgerService(repo domain.LedgerRepository, eng Engine, opts ...Option) *LedgerService {
	s := &LedgerService{
		Repo:             repo,
		Engine:           eng,
		logger:           zerolog.Nop(),
		maxAttempts:      3,
		projectionMonths: engine.DefaultProjectionMonths,
		maxHorizon:       engine.MaxProjectionMonths,
		now:              time.Now,
		tracer:           otel.Tracer(tracing.TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount opens an empty ledger holding only the initial investment
func (s *LedgerService) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreateAccount")
	defer span.End()

	now := s.now().UTC()
	account := &domain.Account{
		ID:                uuid.New(),
		InvestorID:        input.InvestorID,
		InitialInvestment: input.InitialInvestment,
		MonthlyReturnRate: input.MonthlyReturnRate,
		MonthlyAdditions:  input.MonthlyAdditions,
		Records:           []domain.MonthlyRecord{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := account.Validate(); err != nil {
		return nil, s.fail(span, "create", err)
	}

	rebuilt, err := s.Engine.Rebuild(account)
	if err != nil {
		return nil, s.fail(span, "create", err)
	}

	if err := s.Repo.Create(ctx, rebuilt); err != nil {
		return nil, s.fail(span, "create", err)
	}

	span.SetAttributes(attribute.String("account.id", rebuilt.ID.String()))
	metrics.LedgerMutations.WithLabelValues("create", metrics.StatusOK).Inc()
	s.logger.Info().
		Str("account_id", rebuilt.ID.String()).
		Str("investor_id", rebuilt.InvestorID).
		Str("initial_investment", rebuilt.InitialInvestment.String()).
		Msg("ledger account created")

	return rebuilt, nil
}

// GetAccount retrieves the recomputed ledger of an account
func (s *LedgerService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.GetAccount", trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()

	account, err := s.Repo.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves every ledger, or only those owned by investorID when it is not empty
func (s *LedgerService) ListAccounts(ctx context.Context, investorID string) ([]*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.ListAccounts")
	defer span.End()

	accounts, err := s.Repo.List(ctx, investorID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpsertRecord appends a new month or replaces the existing record for the same period,
// then recomputes the whole ledger
func (s *LedgerService) UpsertRecord(ctx context.Context, id uuid.UUID, input RecordInput) (*domain.Account, error) {
	record := domain.MonthlyRecord{
		Month:            input.Period.Month,
		Year:             input.Period.Year,
		PercentageGrowth: input.PercentageGrowth,
		DepositAmount:    input.DepositAmount,
		DepositDate:      input.DepositDate,
		WithdrawalAmount: input.WithdrawalAmount,
		WithdrawalDate:   input.WithdrawalDate,
	}

	// Reject bad input before touching storage
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, "upsert_record", id, func(account *domain.Account, now time.Time) error {
		record.UpdatedAt = now
		if i := account.FindRecord(input.Period); i >= 0 {
			account.Records[i] = record
			return nil
		}
		account.Records = append(account.Records, record)
		return nil
	})
}

// DeleteRecord removes the record for period and recomputes every remaining month
func (s *LedgerService) DeleteRecord(ctx context.Context, id uuid.UUID, period domain.Period) (*domain.Account, error) {
	return s.mutate(ctx, "delete_record", id, func(account *domain.Account, _ time.Time) error {
		i := account.FindRecord(period)
		if i < 0 {
			return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, period)
		}
		account.Records = append(account.Records[:i], account.Records[i+1:]...)
		return nil
	})
}

// UpdateSettings changes the projection rate and recurring addition of an account
func (s *LedgerService) UpdateSettings(ctx context.Context, id uuid.UUID, input SettingsInput) (*domain.Account, error) {
	return s.mutate(ctx, "update_settings", id, func(account *domain.Account, _ time.Time) error {
		account.MonthlyReturnRate = input.MonthlyReturnRate
		account.MonthlyAdditions = input.MonthlyAdditions
		return account.Validate()
	})
}

// GetSummary aggregates the ledger and projects horizon months forward.
// A horizon of zero or less uses the configured default.
func (s *LedgerService) GetSummary(ctx context.Context, id uuid.UUID, horizon int) (*domain.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.GetSummary", trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()

	if horizon > s.maxHorizon {
		err := domain.NewValidationError("horizon", "must be at most %d months, got %d", s.maxHorizon, horizon)
		span.RecordError(err)
		return nil, err
	}

	account, err := s.Repo.Load(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if horizon <= 0 {
		horizon = s.projectionMonths
	}

	return s.Engine.Summarize(account, horizon, s.now()), nil
}

// mutate runs the read-recompute-write cycle, retrying from a fresh read when
// another writer saved the same account first.
// Logic per attempt:
//  1. Load the full ledger document
//  2. Apply the caller's edit to a copy
//  3. Rebuild every record through the engine
//  4. Compare-and-set save; on ErrWriteConflict start over
func (s *LedgerService) mutate(ctx context.Context, op string, id uuid.UUID, edit func(*domain.Account, time.Time) error) (*domain.Account, error) {
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(span, op, err)
		}

		loaded, err := s.Repo.Load(ctx, id)
		if err != nil {
			return nil, s.fail(span, op, err)
		}

		now := s.now().UTC()
		working := loaded.Clone()
		if err := edit(working, now); err != nil {
			return nil, s.fail(span, op, err)
		}

		rebuilt, err := s.Engine.Rebuild(working)
		if err != nil {
			return nil, s.fail(span, op, err)
		}
		rebuilt.UpdatedAt = now
		metrics.RecomputedRecords.Observe(float64(len(rebuilt.Records)))

		err = s.Repo.Save(ctx, rebuilt)
		if errors.Is(err, domain.ErrWriteConflict) {
			metrics.WriteConflicts.WithLabelValues(op).Inc()
			s.logger.Warn().
				Str("account_id", id.String()).
				Str("operation", op).
				Int("attempt", attempt).
				Msg("ledger write conflict, retrying from a fresh read")
			continue
		}
		if err != nil {
			return nil, s.fail(span, op, err)
		}

		span.SetAttributes(attribute.Int("ledger.attempts", attempt), attribute.Int("ledger.records", len(rebuilt.Records)))
		metrics.LedgerMutations.WithLabelValues(op, metrics.StatusOK).Inc()
		s.logger.Debug().
			Str("account_id", id.String()).
			Str("operation", op).
			Int("attempt", attempt).
			Int("records", len(rebuilt.Records)).
			Int64("version", rebuilt.Version).
			Msg("ledger recomputed and saved")

		return rebuilt, nil
	}

	return nil, s.fail(span, op, fmt.Errorf("%w: gave up after %d attempts", domain.ErrWriteConflict, s.maxAttempts))
}

func (s *LedgerService) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	metrics.LedgerMutations.WithLabelValues(op, metrics.StatusError).Inc()
	return err
}
