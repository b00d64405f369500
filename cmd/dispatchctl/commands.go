package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/internal/store"
	"dispetcher/backend/pkg/database"
	"dispetcher/backend/pkg/jwt"
	applogger "dispetcher/backend/pkg/logger"
	"dispetcher/backend/pkg/notify"
)

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	sqlDB  *sql.DB
	svc    *service.Service
}

func (a *app) close() {
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	_ = a.logger.Sync()
}

// openApp connects to the database; withServices also wires the services
// directly over the gorm store, bypassing the redis mirror.
func openApp(configPath string, withServices bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, sqlDB: sqlDB}
	if withServices {
		repo := repository.NewRepository(store.NewGormStore(db), cfg.Business.LogLimit)
		a.svc = service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth),
			service.NewMemoryBlacklist(time.Now), notify.NewLogNotifier(logger), logger)
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "dispatchctl",
		Short:         "Maintenance commands for the dispatch backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml)")

	root.AddCommand(
		newMigrateCmd(&configPath),
		newSettleCmd(&configPath),
		newStatsCmd(&configPath),
		newPayrollCmd(&configPath),
		newSyncLocationsCmd(&configPath),
	)
	return root
}

// ── migrate ──

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*configPath, false)
			if err != nil {
				return err
			}
			defer a.close()
			return database.RunMigrations(a.sqlDB, a.logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			a, err := openApp(*configPath, false)
			if err != nil {
				return err
			}
			defer a.close()
			return database.RollbackMigrations(a.sqlDB, steps, a.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

// ── finance ──

func newSettleCmd(configPath *string) *cobra.Command {
	var client string
	var amount float64

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Distribute a client payment over unpaid orders, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if client == "" {
				return fmt.Errorf("--client is required")
			}
			a, err := openApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.svc.Finance.DistributeClientPayment(cmd.Context(), client, amount)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&client, "client", "", "client name")
	cmd.Flags().Float64Var(&amount, "amount", 0, "payment amount")
	return cmd
}

func newStatsCmd(configPath *string) *cobra.Command {
	var r dto.DateRange

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print revenue, payroll and margin for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.svc.Stats.PeriodFinance(cmd.Context(), &r)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	addRangeFlags(cmd, &r)
	return cmd
}

func newPayrollCmd(configPath *string) *cobra.Command {
	var req dto.PayrollRequest
	var out string

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Write the payroll workbook for a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			buf, filename, err := a.svc.Report.PayrollWorkbook(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	addRangeFlags(cmd, &req.DateRange)
	cmd.Flags().StringSliceVar(&req.EmployeeIDs, "employee", nil, "employee ids (default all)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default payroll_<from>_<to>.xlsx)")
	return cmd
}

func newSyncLocationsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-locations",
		Short: "Apply buffered offline GPS fixes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*configPath, true)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.svc.Employee.SyncOfflineLocations(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func addRangeFlags(cmd *cobra.Command, r *dto.DateRange) {
	today := time.Now().Format("2006-01-02")
	cmd.Flags().StringVar(&r.From, "from", today[:8]+"01", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.To, "to", today, "last day, YYYY-MM-DD")
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

