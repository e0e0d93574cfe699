package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/clinicdesk/internal/adapter/http/dto"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/auth"
	"github.com/iho/clinicdesk/internal/infrastructure/config"
	"github.com/iho/clinicdesk/internal/infrastructure/postgres"
)

var errInconsistent = errors.New("shift totals do not match its transactions")

type activeShift struct {
	Shift *dto.ShiftResponse `json:"shift"`
}

func shiftCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Shift operations",
	}

	var cashier string
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var shift dto.ShiftResponse
			if err := opts.client().do(ctx, http.MethodPost, "/shifts/open", nil, dto.OpenShiftRequest{CashierID: cashier}, &shift); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), shift)
		},
	}
	openCmd.Flags().StringVar(&cashier, "cashier", "", "Cashier identifier")
	_ = openCmd.MarkFlagRequired("cashier")

	activeCmd := &cobra.Command{
		Use:   "active",
		Short: "Show the open shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var resp activeShift
			if err := opts.client().do(ctx, http.MethodGet, "/shifts/active", nil, nil, &resp); err != nil {
				return err
			}
			if resp.Shift == nil {
				fprintf(cmd.OutOrStdout(), "No open shift\n")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), resp.Shift)
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close",
		Short: "Close the open shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var shift dto.ShiftResponse
			if err := opts.client().do(ctx, http.MethodPost, "/shifts/close", nil, nil, &shift); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), shift)
		},
	}

	var limit, offset int
	txnsCmd := &cobra.Command{
		Use:   "transactions <shift-id>",
		Short: "List the transactions of a shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))

			var resp dto.ListTransactionsResponse
			path := "/shifts/" + url.PathEscape(args[0]) + "/transactions?" + q.Encode()
			if err := opts.client().do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fprintf(tw, "ID\tMETHOD\tAMOUNT\tCREATED\tDESCRIPTION\n")
			for _, t := range resp.Transactions {
				fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.PaymentMethod, t.AmountDisplay.StringFixed(2),
					t.CreatedAt.Format(time.RFC3339), truncate(t.Description, 40))
			}
			return tw.Flush()
		},
	}
	txnsCmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	txnsCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(openCmd, activeCmd, closeCmd, txnsCmd)
	return cmd
}

func payCmd(opts *cliOptions) *cobra.Command {
	var (
		req                           dto.PostTransactionRequest
		patient, doctor, key          string
		cashPart, cardPart, transPart int64
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Post a payment to the open shift (amounts in minor units)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			req.PaymentMethod = strings.ToUpper(req.PaymentMethod)
			req.CashAmount, req.CardAmount, req.TransferAmount = cashPart, cardPart, transPart
			if patient != "" {
				req.PatientID = &patient
			}
			if doctor != "" {
				req.DoctorID = &doctor
			}
			if key != "" {
				req.IdempotencyKey = &key
			}

			var txn dto.TransactionResponse
			if err := opts.client().do(ctx, http.MethodPost, "/transactions", nil, req, &txn); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txn)
		},
	}

	cmd.Flags().Int64Var(&req.Amount, "amount", 0, "Amount in minor units; negative for an expense")
	cmd.Flags().StringVar(&req.PaymentMethod, "method", string(domain.PaymentMethodCash), "CASH, CARD, TRANSFER or MIXED")
	cmd.Flags().Int64Var(&cashPart, "cash", 0, "Cash component of a MIXED payment")
	cmd.Flags().Int64Var(&cardPart, "card", 0, "Card component of a MIXED payment")
	cmd.Flags().Int64Var(&transPart, "transfer", 0, "Transfer component of a MIXED payment")
	cmd.Flags().StringVar(&patient, "patient", "", "Patient identifier")
	cmd.Flags().StringVar(&doctor, "doctor", "", "Doctor identifier")
	cmd.Flags().StringVar(&req.Description, "description", "", "Free-form description")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key, unique within the shift")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func transactionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transaction <id>",
		Short: "Show a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var txn dto.TransactionResponse
			if err := opts.client().do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(args[0]), nil, nil, &txn); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txn)
		},
	}
}

func refundCmd(opts *cliOptions) *cobra.Command {
	var reason, key string

	cmd := &cobra.Command{
		Use:   "refund <transaction-id>",
		Short: "Refund a transaction into the open shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var headers map[string]string
			if key != "" {
				headers = map[string]string{"Idempotency-Key": key}
			}

			var txn dto.TransactionResponse
			path := "/refund/" + url.PathEscape(args[0])
			if err := opts.client().do(ctx, http.MethodPost, path, headers, dto.RefundRequest{Reason: reason}, &txn); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), txn)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the payment is refunded")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency-Key header for safe retries")
	_ = cmd.MarkFlagRequired("reason")

	return cmd
}

func reportCmd(opts *cliOptions) *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:       "report <x|z>",
		Short:     "Print the X report of the open shift or the Z report of the last closed one",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"x", "z", "X", "Z"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			kind := strings.ToUpper(args[0])
			if kind != "X" && kind != "Z" {
				return fmt.Errorf("unknown report type %q, want x or z", args[0])
			}

			if pdfPath != "" {
				raw, _, err := opts.client().raw(ctx, http.MethodGet, "/reports/"+kind+"?format=pdf", nil, nil)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pdfPath, raw, 0o644); err != nil {
					return fmt.Errorf("write pdf: %w", err)
				}
				fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", pdfPath, len(raw))
				return nil
			}

			var report dto.ReportResponse
			if err := opts.client().do(ctx, http.MethodGet, "/reports/"+kind, nil, nil, &report); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Write the printable report to this file")

	return cmd
}

func verifyCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [shift-id]",
		Short: "Recompute shift totals from transactions; defaults to the open shift",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			client := opts.client()
			out := cmd.OutOrStdout()

			shiftID := ""
			if len(args) == 1 {
				shiftID = args[0]
			} else {
				var resp activeShift
				if err := client.do(ctx, http.MethodGet, "/shifts/active", nil, nil, &resp); err != nil {
					return err
				}
				if resp.Shift == nil {
					return errors.New("no open shift to verify")
				}
				shiftID = resp.Shift.ID
			}

			var result dto.VerifyResponse
			err := client.do(ctx, http.MethodGet, "/shifts/"+url.PathEscape(shiftID)+"/verify", nil, nil, &result)

			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Code == "consistency_error" {
				fprintf(out, "Consistency check FAILED for shift %s\n", shiftID)
				if err := printJSON(out, apiErr.Details); err != nil {
					return err
				}
				return errInconsistent
			}
			if err != nil {
				return err
			}

			fprintf(out, "Consistency check PASSED for shift %s\n", result.ShiftID)
			fprintf(out, "Cash: %d  Card: %d  Transfer: %d\n", result.Stored.Cash, result.Stored.Card, result.Stored.Transfer)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	resolve := func() (string, string, error) {
		if databaseURL != "" && path != "" {
			return databaseURL, path, nil
		}
		cfg, err := config.Load()
		if err != nil {
			return "", "", err
		}
		if databaseURL == "" {
			databaseURL = cfg.DatabaseURL
		}
		if path == "" {
			path = cfg.MigrationsPath
		}
		return databaseURL, path, nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL; defaults to DATABASE_URL")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory; defaults to MIGRATIONS_PATH")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				dbURL, dir, err := resolve()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrations(dbURL, dir); err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Migrations applied\n")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				dbURL, dir, err := resolve()
				if err != nil {
					return err
				}
				if err := postgres.RunMigrationsDown(dbURL, dir); err != nil {
					return err
				}
				fprintf(cmd.OutOrStdout(), "Migrations rolled back\n")
				return nil
			},
		},
	)

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID, name, role, secret string
		ttl                        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(strings.ToLower(role))
			if !r.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("a signing secret is required: pass --secret or set JWT_SECRET")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{ID: userID, Name: name, Role: r})
			if err != nil {
				return err
			}
			fprintf(cmd.OutOrStdout(), "%s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User identifier")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCashier), "admin, owner or cashier")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret; defaults to JWT_SECRET")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
