package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/FamilySync/Services-Authentication/internal/server/service"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

var (
	emailFlag    string
	usernameFlag string
	passwordFlag string
	stdinFlag    bool
	noPassword   bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user with the default claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return errors.New("--email flag is required")
		}
		if usernameFlag == "" {
			return errors.New("--username flag is required")
		}

		password := passwordFlag
		if password == "" && !noPassword {
			var err error
			password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), stdinFlag)
			if err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Create never issues tokens
		svc := service.NewIdentityService(logger, st.identity, st.tokens, nil, nil)
		user, err := svc.Create(ctx, api.CreateUserRequest{
			Username: usernameFlag,
			Email:    emailFlag,
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s) with ID %s\n", user.Username, user.Email, user.ID)
		return nil
	},
}

// readPassword reads one line from in when fromStdin is set, and otherwise
// prompts on the terminal without echo. A non-interactive stdin without
// --stdin is an error so scripts do not hang.
func readPassword(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if fromStdin {
		scanner := bufio.NewScanner(in)
		if scanner.Scan() {
			return strings.TrimRight(scanner.Text(), "\r"), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", errors.New("no password on stdin")
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal: use --password, --stdin or --no-password")
	}

	fmt.Fprint(prompt, "Enter password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&emailFlag, "email", "", "User email address (required)")
	userCreateCmd.Flags().StringVar(&usernameFlag, "username", "", "Username (required)")
	userCreateCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (prompted when omitted)")
	userCreateCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the password from stdin")
	userCreateCmd.Flags().BoolVar(&noPassword, "no-password", false, "Create a password-less account")
	userCreateCmd.MarkFlagsMutuallyExclusive("password", "stdin", "no-password")

	userCmd.AddCommand(userCreateCmd)
}
