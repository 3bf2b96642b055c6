package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
	retries int
}

func (o *options) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout, o.retries)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledgerlock-cli",
		Short:         "Ledgerlock CLI tool",
		Long:          `A command line interface for interacting with the ledgerlock API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the ledgerlock API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().IntVar(&opts.retries, "retries", 3, "Retries when an account is busy (HTTP 409)")

	rootCmd.AddCommand(
		accountCmd(opts),
		depositCmd(opts),
		withdrawCmd(opts),
		sendCmd(opts),
		ledgerCmd(opts),
	)

	return rootCmd
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var startingBalance string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().mutate(cmd.Context(), "/api/v1/accounts", map[string]string{
				"starting_balance": startingBalance,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), body)
		},
	}
	createCmd.Flags().StringVar(&startingBalance, "starting-balance", "0", "Opening balance")

	getCmd := &cobra.Command{
		Use:   "get ACCOUNT_ID",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0]))
		},
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))
			return getAndPrint(cmd, opts, "/api/v1/accounts?"+query.Encode())
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	balanceCmd := &cobra.Command{
		Use:   "balance ACCOUNT_ID",
		Short: "Show the derived balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := opts.client().get(cmd.Context(), "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance")
			if err != nil {
				return err
			}

			var resp struct {
				Balance string `json:"balance"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Balance)
			return nil
		},
	}

	var since string
	activitiesCmd := &cobra.Command{
		Use:   "activities ACCOUNT_ID",
		Short: "List the activities of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/activities"
			if since != "" {
				if _, err := time.Parse(time.RFC3339, since); err != nil {
					return fmt.Errorf("--since must be RFC 3339: %w", err)
				}
				path += "?since=" + url.QueryEscape(since)
			}
			return getAndPrint(cmd, opts, path)
		},
	}
	activitiesCmd.Flags().StringVar(&since, "since", "", "Only activities at or after this RFC 3339 time")

	cmd.AddCommand(createCmd, getCmd, listCmd, balanceCmd, activitiesCmd)
	return cmd
}

func depositCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit ACCOUNT_ID AMOUNT",
		Short: "Deposit money into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndPrint(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0])+"/deposit", map[string]string{
				"amount": args[1],
			})
		},
	}
}

func withdrawCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw ACCOUNT_ID AMOUNT",
		Short: "Withdraw money from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndPrint(cmd, opts, "/api/v1/accounts/"+url.PathEscape(args[0])+"/withdraw", map[string]string{
				"amount": args[1],
			})
		},
	}
}

func sendCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "send SOURCE_ACCOUNT_ID TARGET_ACCOUNT_ID AMOUNT",
		Short: "Send money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndPrint(cmd, opts, "/api/v1/transfers", map[string]string{
				"source_account_id": args[0],
				"target_account_id": args[1],
				"amount":            args[2],
			})
		},
	}
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkConsistency(cmd, opts)
		},
	}

	cmd.AddCommand(consistencyCmd)
	return cmd
}

func checkConsistency(cmd *cobra.Command, opts *options) error {
	out := cmd.OutOrStdout()

	body, err := opts.client().get(cmd.Context(), "/api/v1/ledger/consistency")
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			fmt.Fprintf(out, "Consistency check FAILED\nResponse: %s\n", apiErr.Body)
			return errors.New("ledger is inconsistent")
		}
		return err
	}

	var result struct {
		Status        string `json:"status"`
		Consistent    bool   `json:"consistent"`
		Accounts      int64  `json:"accounts"`
		ExpectedTotal string `json:"expected_total"`
		DerivedTotal  string `json:"derived_total"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintf(out, "Consistency check PASSED\n")
	fmt.Fprintf(out, "Consistent: %v\n", result.Consistent)
	fmt.Fprintf(out, "Status: %s\n", result.Status)
	fmt.Fprintf(out, "Accounts: %d\n", result.Accounts)
	fmt.Fprintf(out, "Total: %s\n", result.DerivedTotal)
	return nil
}

func getAndPrint(cmd *cobra.Command, opts *options, path string) error {
	body, err := opts.client().get(cmd.Context(), path)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), body)
}

func mutateAndPrint(cmd *cobra.Command, opts *options, path string, payload any) error {
	body, err := opts.client().mutate(cmd.Context(), path, payload)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), body)
}

// printJSON re-indents a JSON response body.
func printJSON(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
