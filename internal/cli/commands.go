package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-ledger/internal/auth"
	"github.com/simaogato/wealthflow-ledger/internal/config"
	"github.com/simaogato/wealthflow-ledger/internal/domain"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/engine"
	"github.com/simaogato/wealthflow-ledger/internal/usecase/policy"
)

// Register the subcommands.
func Register(c *subcommands.Commander, out io.Writer) {
	c.Register(&rebuildCmd{out: out}, "ledger")
	c.Register(&summaryCmd{out: out}, "ledger")
	c.Register(&tokenCmd{out: out}, "auth")
}

// loadAndRebuild reads path and recomputes every record
func loadAndRebuild(path string) (*LedgerFile, *domain.Account, error) {
	lf, err := ReadLedgerFile(path)
	if err != nil {
		return nil, nil, err
	}
	account, err := lf.Account()
	if err != nil {
		return nil, nil, err
	}
	if err := account.Validate(); err != nil {
		return nil, nil, err
	}
	rebuilt, err := engine.New().Rebuild(account)
	if err != nil {
		return nil, nil, err
	}
	return lf, rebuilt, nil
}

type rebuildCmd struct {
	out    io.Writer
	file   string
	asJSON bool
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "recompute and print the monthly history of a ledger file" }
func (*rebuildCmd) Usage() string {
	return `ledgerctl rebuild -f <ledger.toml> [-json]

  Sorts the records chronologically and recomputes every starting balance,
  growth, prorated deposit and withdrawal effect and ending balance.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "ledger.toml", "Path to the TOML ledger file.")
	f.BoolVar(&c.asJSON, "json", false, "Print the recomputed account as JSON.")
}

func (c *rebuildCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	lf, account, err := loadAndRebuild(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(account); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	cur := lf.currency()
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tStart\tGrowth %\tGrowth\tDeposit\tDep. growth\tWithdrawal\tWdr. growth\tEnd\t")
	for _, r := range account.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Period(),
			formatMoney(r.StartingBalance, cur),
			r.PercentageGrowth.String(),
			formatMoney(r.GrowthAmount, cur),
			formatMoney(r.DepositAmount, cur),
			formatMoney(r.DepositGrowth, cur),
			formatMoney(r.WithdrawalAmount, cur),
			formatMoney(r.WithdrawalGrowth, cur),
			formatMoney(r.EndingBalance, cur),
		)
	}
	fmt.Fprintf(w, "Current balance\t%s\t\t\t\t\t\t\t\t\n", formatMoney(account.CurrentBalance, cur))
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	out    io.Writer
	file   string
	months int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print totals, gain and a balance projection for a ledger file" }
func (*summaryCmd) Usage() string {
	return `ledgerctl summary -f <ledger.toml> [-months <n>]

  Prints the current balance, deposit and withdrawal totals, total gain,
  average monthly input and an n-month projection using the ledger's
  monthly return rate and monthly additions.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "ledger.toml", "Path to the TOML ledger file.")
	f.IntVar(&c.months, "months", engine.DefaultProjectionMonths, "Number of months to project.")
}

func (c *summaryCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.months > engine.MaxProjectionMonths {
		fmt.Fprintf(os.Stderr, "-months must be at most %d\n", engine.MaxProjectionMonths)
		return subcommands.ExitUsageError
	}

	lf, account, err := loadAndRebuild(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	s := engine.New().Summarize(account, c.months, time.Now())
	cur := lf.currency()

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Current balance\t%s\n", formatMoney(s.CurrentBalance, cur))
	fmt.Fprintf(w, "Total deposits\t%s\n", formatMoney(s.TotalDeposits, cur))
	fmt.Fprintf(w, "Total withdrawals\t%s\n", formatMoney(s.TotalWithdrawals, cur))
	fmt.Fprintf(w, "Total gain\t%s\n", formatMoney(s.TotalGain, cur))
	fmt.Fprintf(w, "Total gain %%\t%s%%\n", s.TotalPercentageGain.StringFixed(2))
	fmt.Fprintf(w, "Deposits\t%d\n", s.DepositCount)
	fmt.Fprintf(w, "Average input\t%s\n", formatMoney(s.AverageMonthlyInput, cur))
	fmt.Fprintln(w, "\t")
	fmt.Fprintln(w, "Projection\t")
	for _, p := range s.Projection {
		fmt.Fprintf(w, "%s\t%s\n", p.Period, formatMoney(p.Balance, cur))
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	out     io.Writer
	config  string
	subject string
	role    string
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a signed bearer token for the ledger server" }
func (*tokenCmd) Usage() string {
	return `ledgerctl token -sub <subject> [-role investor|admin] [-config <server.toml>]

  Signs a token with the server's auth settings (TOML config, .env and
  LEDGER_* variables are read the same way the server reads them).
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.config, "config", "", "Optional server TOML config file.")
	f.StringVar(&c.subject, "sub", "", "Token subject: the investor id, or an operator name for admins.")
	f.StringVar(&c.role, "role", string(policy.RoleInvestor), "Token role (investor, admin).")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var paths []string
	if c.config != "" {
		paths = append(paths, c.config)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	role, err := policy.ParseRole(c.role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.GetTokenExpiry())
	token, err := issuer.Issue(policy.Principal{Subject: c.subject, Role: role})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	fmt.Fprintln(c.out, token)
	return subcommands.ExitSuccess
}
