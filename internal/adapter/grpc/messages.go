package grpc

// Wire messages of ledger.v1.LedgerService.
// Decimals travel as strings, dates as YYYY-MM-DD and timestamps as RFC 3339.

type CreateAccountRequest struct {
	InvestorId        string `json:"investorId"`
	InitialInvestment string `json:"initialInvestment"`
	MonthlyReturnRate string `json:"monthlyReturnRate,omitempty"`
	MonthlyAdditions  string `json:"monthlyAdditions,omitempty"`
}

type GetAccountRequest struct {
	AccountId string `json:"accountId"`
}

type ListAccountsRequest struct {
	InvestorId string `json:"investorId,omitempty"`
}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type UpsertRecordRequest struct {
	AccountId        string `json:"accountId"`
	Month            string `json:"month"`
	Year             int32  `json:"year"`
	PercentageGrowth string `json:"percentageGrowth"`
	DepositAmount    string `json:"depositAmount,omitempty"`
	DepositDate      string `json:"depositDate,omitempty"`
	WithdrawalAmount string `json:"withdrawalAmount,omitempty"`
	WithdrawalDate   string `json:"withdrawalDate,omitempty"`
}

type DeleteRecordRequest struct {
	AccountId string `json:"accountId"`
	Month     string `json:"month"`
	Year      int32  `json:"year"`
}

type UpdateSettingsRequest struct {
	AccountId         string `json:"accountId"`
	MonthlyReturnRate string `json:"monthlyReturnRate"`
	MonthlyAdditions  string `json:"monthlyAdditions"`
}

type AccountResponse struct {
	Account *Account `json:"account"`
}

type GetSummaryRequest struct {
	AccountId string `json:"accountId"`
	Horizon   int32  `json:"horizon,omitempty"`
}

type GetSummaryResponse struct {
	CurrentBalance      string             `json:"currentBalance"`
	TotalDeposits       string             `json:"totalDeposits"`
	TotalWithdrawals    string             `json:"totalWithdrawals"`
	TotalGain           string             `json:"totalGain"`
	TotalPercentageGain string             `json:"totalPercentageGain"`
	DepositCount        int32              `json:"depositCount"`
	AverageMonthlyInput string             `json:"averageMonthlyInput"`
	Projection          []*ProjectionPoint `json:"projection"`
}

type ProjectionPoint struct {
	Month   string `json:"month"`
	Year    int32  `json:"year"`
	Balance string `json:"balance"`
}

type Account struct {
	Id                string    `json:"id"`
	InvestorId        string    `json:"investorId"`
	InitialInvestment string    `json:"initialInvestment"`
	MonthlyReturnRate string    `json:"monthlyReturnRate"`
	MonthlyAdditions  string    `json:"monthlyAdditions"`
	CurrentBalance    string    `json:"currentBalance"`
	TotalDeposits     string    `json:"totalDeposits"`
	TotalWithdrawals  string    `json:"totalWithdrawals"`
	Records           []*Record `json:"records"`
	Version           int64     `json:"version"`
	CreatedAt         string    `json:"createdAt"`
	UpdatedAt         string    `json:"updatedAt"`
}

type Record struct {
	Month            string `json:"month"`
	Year             int32  `json:"year"`
	PercentageGrowth string `json:"percentageGrowth"`
	DepositAmount    string `json:"depositAmount"`
	DepositDate      string `json:"depositDate,omitempty"`
	WithdrawalAmount string `json:"withdrawalAmount"`
	WithdrawalDate   string `json:"withdrawalDate,omitempty"`
	StartingBalance  string `json:"startingBalance"`
	GrowthAmount     string `json:"growthAmount"`
	DepositGrowth    string `json:"depositGrowth"`
	WithdrawalGrowth string `json:"withdrawalGrowth"`
	EndingBalance    string `json:"endingBalance"`
	UpdatedAt        string `json:"updatedAt"`
}
