package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var userIDFlag string

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Maintain refresh tokens",
}

var tokensPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.tokens.DeleteExpiredTokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to prune tokens: %w", err)
		}

		logger.Info("expired refresh tokens pruned",
			slog.String("token_store", cfg.Tokens.Store),
			slog.Int("deleted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired refresh tokens\n", n)
		return nil
	},
}

var tokensListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the refresh tokens of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(userIDFlag)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		tokens, err := st.tokens.GetUserTokens(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list tokens: %w", err)
		}

		now := time.Now()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEXPIRES\tSTATUS")
		for _, t := range tokens {
			status := "active"
			if t.Expired(now) {
				status = "expired"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.ExpirationDate.Format(time.RFC3339), status)
		}
		return tw.Flush()
	},
}

var tokensRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke every refresh token of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := uuid.Parse(userIDFlag)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}

		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.tokens.DeleteUserTokens(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to revoke tokens: %w", err)
		}

		logger.Info("refresh tokens revoked", slog.String("user_id", userID.String()), slog.Int("deleted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Revoked %d refresh tokens\n", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{tokensListCmd, tokensRevokeCmd} {
		c.Flags().StringVar(&userIDFlag, "user", "", "User ID (required)")
		_ = c.MarkFlagRequired("user")
	}

	tokensCmd.AddCommand(tokensPruneCmd, tokensListCmd, tokensRevokeCmd)
}
