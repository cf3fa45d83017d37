package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/ledger"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/policy"
)

const dateLayout = "2006-01-02"

// Server implements the LedgerService gRPC server
type Server struct {
	Ledger policy.Ledger
}

// NewServer creates a new gRPC server instance.
// ledgerService is normally a policy.Guard so every call is authorized.
func NewServer(ledgerService policy.Ledger) *Server {
	return &Server{Ledger: ledgerService}
}

// CreateAccount handles the CreateAccount RPC
func (s *Server) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*AccountResponse, error) {
	initial, err := parseDecimal("initial_investment", req.InitialInvestment)
	if err != nil {
		return nil, err
	}
	rate, err := parseOptionalDecimal("monthly_return_rate", req.MonthlyReturnRate)
	if err != nil {
		return nil, err
	}
	additions, err := parseOptionalDecimal("monthly_additions", req.MonthlyAdditions)
	if err != nil {
		return nil, err
	}

	account, err := s.Ledger.CreateAccount(ctx, ledger.CreateAccountInput{
		InvestorID:        req.InvestorId,
		InitialInvestment: initial,
		MonthlyReturnRate: rate,
		MonthlyAdditions:  additions,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountResponse{Account: toAccountMessage(account)}, nil
}

// GetAccount handles the GetAccount RPC
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountResponse, error) {
	id, err := parseAccountID(req.AccountId)
	if err != nil {
		return nil, err
	}

	account, err := s.Ledger.GetAccount(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountResponse{Account: toAccountMessage(account)}, nil
}

// ListAccounts handles the ListAccounts RPC
func (s *Server) ListAccounts(ctx context.Context, req *ListAccountsRequest) (*ListAccountsResponse, error) {
	accounts, err := s.Ledger.ListAccounts(ctx, req.InvestorId)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListAccountsResponse{Accounts: make([]*Account, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountMessage(a))
	}
	return resp, nil
}

// UpsertRecord handles the UpsertRecord RPC
func (s *Server) UpsertRecord(ctx context.Context, req *UpsertRecordRequest) (*AccountResponse, error) {
	id, err := parseAccountID(req.AccountId)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Month, req.Year)
	if err != nil {
		return nil, err
	}
	pct, err := parseDecimal("percentage_growth", req.PercentageGrowth)
	if err != nil {
		return nil, err
	}
	deposit, err := parseOptionalDecimal("deposit_amount", req.DepositAmount)
	if err != nil {
		return nil, err
	}
	withdrawal, err := parseOptionalDecimal("withdrawal_amount", req.WithdrawalAmount)
	if err != nil {
		return nil, err
	}
	depositDate, err := parseDate("deposit_date", req.DepositDate)
	if err != nil {
		return nil, err
	}
	withdrawalDate, err := parseDate("withdrawal_date", req.WithdrawalDate)
	if err != nil {
		return nil, err
	}

	account, err := s.Ledger.UpsertRecord(ctx, id, ledger.RecordInput{
		Period:           period,
		PercentageGrowth: pct,
		DepositAmount:    deposit,
		DepositDate:      depositDate,
		WithdrawalAmount: withdrawal,
		WithdrawalDate:   withdrawalDate,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountResponse{Account: toAccountMessage(account)}, nil
}

// DeleteRecord handles the DeleteRecord RPC
func (s *Server) DeleteRecord(ctx context.Context, req *DeleteRecordRequest) (*AccountResponse, error) {
	id, err := parseAccountID(req.AccountId)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Month, req.Year)
	if err != nil {
		return nil, err
	}

	account, err := s.Ledger.DeleteRecord(ctx, id, period)
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountResponse{Account: toAccountMessage(account)}, nil
}

// UpdateSettings handles the UpdateSettings RPC
func (s *Server) UpdateSettings(ctx context.Context, req *UpdateSettingsRequest) (*AccountResponse, error) {
	id, err := parseAccountID(req.AccountId)
	if err != nil {
		return nil, err
	}
	rate, err := parseDecimal("monthly_return_rate", req.MonthlyReturnRate)
	if err != nil {
		return nil, err
	}
	additions, err := parseOptionalDecimal("monthly_additions", req.MonthlyAdditions)
	if err != nil {
		return nil, err
	}

	account, err := s.Ledger.UpdateSettings(ctx, id, ledger.SettingsInput{
		MonthlyReturnRate: rate,
		MonthlyAdditions:  additions,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &AccountResponse{Account: toAccountMessage(account)}, nil
}

// GetSummary handles the GetSummary RPC
func (s *Server) GetSummary(ctx context.Context, req *GetSummaryRequest) (*GetSummaryResponse, error) {
	id, err := parseAccountID(req.AccountId)
	if err != nil {
		return nil, err
	}

	summary, err := s.Ledger.GetSummary(ctx, id, int(req.Horizon))
	if err != nil {
		return nil, mapError(err)
	}

	resp := &GetSummaryResponse{
		CurrentBalance:      summary.CurrentBalance.String(),
		TotalDeposits:       summary.TotalDeposits.String(),
		TotalWithdrawals:    summary.TotalWithdrawals.String(),
		TotalGain:           summary.TotalGain.String(),
		TotalPercentageGain: summary.TotalPercentageGain.String(),
		DepositCount:        int32(summary.DepositCount),
		AverageMonthlyInput: summary.AverageMonthlyInput.String(),
		Projection:          make([]*ProjectionPoint, 0, len(summary.Projection)),
	}
	for _, p := range summary.Projection {
		resp.Projection = append(resp.Projection, &ProjectionPoint{
			Month:   string(p.Period.Month),
			Year:    int32(p.Period.Year),
			Balance: p.Balance.String(),
		})
	}
	return resp, nil
}

func parseAccountID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid account_id format: %v", err)
	}
	return id, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return d, nil
}

func parseOptionalDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(field, s)
}

func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s format, expected YYYY-MM-DD: %v", field, err)
	}
	return &t, nil
}

func parsePeriod(month string, year int32) (domain.Period, error) {
	m, err := domain.ParseMonth(month)
	if err != nil {
		return domain.Period{}, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	if year <= 0 {
		return domain.Period{}, status.Errorf(codes.InvalidArgument, "year must be positive")
	}
	return domain.Period{Year: int(year), Month: m}, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toAccountMessage(a *domain.Account) *Account {
	msg := &Account{
		Id:                a.ID.String(),
		InvestorId:        a.InvestorID,
		InitialInvestment: a.InitialInvestment.String(),
		MonthlyReturnRate: a.MonthlyReturnRate.String(),
		MonthlyAdditions:  a.MonthlyAdditions.String(),
		CurrentBalance:    a.CurrentBalance.String(),
		TotalDeposits:     a.TotalDeposits.String(),
		TotalWithdrawals:  a.TotalWithdrawals.String(),
		Records:           make([]*Record, 0, len(a.Records)),
		Version:           a.Version,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.Format(time.RFC3339),
	}
	for _, r := range a.Records {
		msg.Records = append(msg.Records, &Record{
			Month:            string(r.Month),
			Year:             int32(r.Year),
			PercentageGrowth: r.PercentageGrowth.String(),
			DepositAmount:    r.DepositAmount.String(),
			DepositDate:      formatDate(r.DepositDate),
			WithdrawalAmount: r.WithdrawalAmount.String(),
			WithdrawalDate:   formatDate(r.WithdrawalDate),
			StartingBalance:  r.StartingBalance.String(),
			GrowthAmount:     r.GrowthAmount.String(),
			DepositGrowth:    r.DepositGrowth.String(),
			WithdrawalGrowth: r.WithdrawalGrowth.String(),
			EndingBalance:    r.EndingBalance.String(),
			UpdatedAt:        formatTimestamp(r.UpdatedAt),
		})
	}
	return msg
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrDuplicatePeriod):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrAccountExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRecordNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrWriteConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}
