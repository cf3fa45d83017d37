//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	grpcadapter "github.com/simaogato/wealthflow-ledger/internal/adapter/grpc"
	"github.com/simaogato/wealthflow-ledger/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthflow-ledger/internal/auth"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/engine"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/ledger"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/policy"
)

var (
	db         *postgres.DB
	repo       domain.LedgerRepository
	grpcClient *grpcadapter.Client
	issuer     *auth.Issuer
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Start or reuse a database
	dbConnStr, cleanup, err := getDBConnectionString(ctx)
	if err != nil {
		panic(fmt.Sprintf("Failed to start database: %v", err))
	}

	db, err = postgres.NewDB(ctx, dbConnStr, postgres.Options{MaxOpenConns: 20, ConnectRetry: 30 * time.Second, Logger: zerolog.Nop()})
	if err != nil {
		cleanup()
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	if err := db.Migrate(ctx); err != nil {
		cleanup()
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
	repo = postgres.NewLedgerRepository(db)

	// 2. Start an in-process gRPC server on a real listener
	service := ledger.NewLedgerService(repo, engine.New(), ledger.WithMaxAttempts(50))
	issuer = auth.NewIssuer("integration-secret", "wealthflow-ledger", time.Hour)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpcadapter.RateLimitInterceptor(rate.NewLimiter(rate.Inf, 0)),
		grpcadapter.AuthInterceptor(issuer),
	))
	grpcadapter.RegisterLedgerServiceServer(grpcServer, grpcadapter.NewServer(policy.NewGuard(service, zerolog.Nop())))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		cleanup()
		panic(fmt.Sprintf("Failed to listen: %v", err))
	}
	go func() {
		_ = grpcServer.Serve(lis)
	}()

	grpcConn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		cleanup()
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewClient(grpcConn)

	// Run tests
	code := m.Run()

	grpcConn.Close()
	grpcServer.Stop()
	db.Close()
	cleanup()
	os.Exit(code)
}

// getDBConnectionString returns LEDGER_TEST_DB_CONN_STR when set, otherwise
// starts a throwaway PostgreSQL container
func getDBConnectionString(ctx context.Context) (string, func(), error) {
	if dsn := os.Getenv("LEDGER_TEST_DB_CONN_STR"); dsn != "" {
		return dsn, func() {}, nil
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "ledger",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}
	cleanup := func() { container.Terminate(context.Background()) }

	host, err := container.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("get postgres host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("get postgres port: %w", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=ledger sslmode=disable", host, mappedPort.Port())
	return dsn, cleanup, nil
}

func as(t *testing.T, subject string, role policy.Role) context.Context {
	t.Helper()
	token, err := issuer.Issue(policy.Principal{Subject: subject, Role: role})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestE2E_RecomputeScenario(t *testing.T) {
	admin := as(t, "ops", policy.RoleAdmin)
	investor := "investor-" + uuid.NewString()

	created, err := grpcClient.CreateAccount(admin, &grpcadapter.CreateAccountRequest{
		InvestorId:        investor,
		InitialInvestment: "10000",
		MonthlyReturnRate: "0.01",
	})
	require.NoError(t, err)
	id := created.Account.Id

	// Deposit of 1000 on June 16 with 2% growth: remaining 15 of 30 days
	_, err = grpcClient.UpsertRecord(admin, &grpcadapter.UpsertRecordRequest{
		AccountId: id, Month: "June", Year: 2024, PercentageGrowth: "2",
		DepositAmount: "1000", DepositDate: "2024-06-16",
	})
	require.NoError(t, err)

	// Withdrawal of 500 on July 11 with 1% growth: remaining 20 of 31 days
	resp, err := grpcClient.UpsertRecord(admin, &grpcadapter.UpsertRecordRequest{
		AccountId: id, Month: "July", Year: 2024, PercentageGrowth: "1",
		WithdrawalAmount: "500", WithdrawalDate: "2024-07-11",
	})
	require.NoError(t, err)
	require.Len(t, resp.Account.Records, 2)

	june := resp.Account.Records[0]
	assert.True(t, mustDecimal(t, june.EndingBalance).Equal(decimal.NewFromInt(11210)))

	july := resp.Account.Records[1]
	assert.True(t, mustDecimal(t, july.StartingBalance).Equal(decimal.NewFromInt(11210)))
	// 500 * 1% * 20/31
	expectedLoss := decimal.NewFromInt(100).Div(decimal.NewFromInt(31))
	assert.True(t, mustDecimal(t, july.WithdrawalGrowth).Sub(expectedLoss).Abs().LessThan(decimal.New(1, -9)))

	// Editing June cascades into July
	resp, err = grpcClient.UpsertRecord(admin, &grpcadapter.UpsertRecordRequest{
		AccountId: id, Month: "June", Year: 2024, PercentageGrowth: "0",
	})
	require.NoError(t, err)
	require.Len(t, resp.Account.Records, 2)
	assert.True(t, mustDecimal(t, resp.Account.Records[1].StartingBalance).Equal(decimal.NewFromInt(10000)))

	// The stored document matches what the server returned
	stored, err := repo.Load(context.Background(), uuid.MustParse(id))
	require.NoError(t, err)
	assert.Equal(t, resp.Account.Version, stored.Version)
	assert.Equal(t, resp.Account.CurrentBalance, stored.CurrentBalance.String())

	// The investor can read the summary but not change anything
	reader := as(t, investor, policy.RoleInvestor)
	summary, err := grpcClient.GetSummary(reader, &grpcadapter.GetSummaryRequest{AccountId: id})
	require.NoError(t, err)
	assert.Len(t, summary.Projection, engine.DefaultProjectionMonths)
	assert.Equal(t, "August", summary.Projection[0].Month)

	_, err = grpcClient.DeleteRecord(reader, &grpcadapter.DeleteRecordRequest{AccountId: id, Month: "July", Year: 2024})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestE2E_ConcurrentWritersAllLand(t *testing.T) {
	admin := as(t, "ops", policy.RoleAdmin)

	created, err := grpcClient.CreateAccount(admin, &grpcadapter.CreateAccountRequest{
		InvestorId:        "investor-" + uuid.NewString(),
		InitialInvestment: "1000",
	})
	require.NoError(t, err)
	id := created.Account.Id

	months := []string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"}

	var wg sync.WaitGroup
	errs := make(chan error, len(months))
	for _, m := range months {
		wg.Add(1)
		go func(month string) {
			defer wg.Done()
			_, err := grpcClient.UpsertRecord(admin, &grpcadapter.UpsertRecordRequest{
				AccountId: id, Month: month, Year: 2023, PercentageGrowth: "1",
			})
			errs <- err
		}(m)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := grpcClient.GetAccount(admin, &grpcadapter.GetAccountRequest{AccountId: id})
	require.NoError(t, err)
	require.Len(t, got.Account.Records, 12, "every concurrent write must survive")
	assert.Equal(t, "January", got.Account.Records[0].Month)
	assert.Equal(t, "December", got.Account.Records[11].Month)
	assert.Equal(t, int64(13), got.Account.Version)

	// 1000 * 1.01^12
	expected := decimal.NewFromInt(1000).Mul(decimal.RequireFromString("1.01").Pow(decimal.NewFromInt(12)))
	assert.True(t, mustDecimal(t, got.Account.CurrentBalance).Sub(expected).Abs().LessThan(decimal.New(1, -9)))
}

func TestRepository_SaveConflict(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	account := &domain.Account{
		ID:                uuid.New(),
		InvestorID:        "investor-" + uuid.NewString(),
		InitialInvestment: decimal.NewFromInt(100),
		Records:           []domain.MonthlyRecord{},
		CurrentBalance:    decimal.NewFromInt(100),
		TotalDeposits:     decimal.NewFromInt(100),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, repo.Create(ctx, account))

	first, err := repo.Load(ctx, account.ID)
	require.NoError(t, err)
	second, err := repo.Load(ctx, account.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, domain.ErrWriteConflict)

	missing := first.Clone()
	missing.ID = uuid.New()
	assert.ErrorIs(t, repo.Save(ctx, missing), domain.ErrAccountNotFound)

	list, err := repo.List(ctx, account.InvestorID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, account.ID, list[0].ID)
}
