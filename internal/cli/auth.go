package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nhle/careboard/internal/model"
)

var errNotSignedIn = errors.New("not signed in; run: careboard login")

var (
	loginEmail    string
	loginPassword string

	regOrg      string
	regName     string
	regEmail    string
	regPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long: `Sign in with your email and password. The session token is kept in
the system keyring until you log out or the server rejects it.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new organization and its admin account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&regOrg, "org", "", "organization name")
	registerCmd.Flags().StringVar(&regName, "name", "", "admin name")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "admin email")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "admin password (prompted when omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	email := loginEmail
	if email == "" {
		if email, err = prompt("Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptSecret("Password: "); err != nil {
			return err
		}
	}

	if err := e.session.Login(cmd.Context(), email, password); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	password := regPassword
	if password == "" && regOrg != "" {
		if password, err = promptSecret("Admin password: "); err != nil {
			return err
		}
	}

	reg := model.OrganizationRegistration{
		OrganizationName: regOrg,
		AdminName:        regName,
		AdminEmail:       regEmail,
		AdminPassword:    password,
	}
	if err := e.session.Register(cmd.Context(), reg); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	e.session.Logout()
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := requireSession(cmd.Context(), e); err != nil {
		return err
	}
	sess, _ := e.session.Current()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:         %s\n", sess.User.Name)
	fmt.Fprintf(out, "Email:        %s\n", sess.User.Email)
	if sess.User.Role != "" {
		fmt.Fprintf(out, "Role:         %s\n", sess.User.Role)
	}
	if sess.User.OrganizationName != "" {
		fmt.Fprintf(out, "Organization: %s\n", sess.User.OrganizationName)
	}
	fmt.Fprintf(out, "Server:       %s\n", e.cfg.API.BaseURL)
	return nil
}

// requireSession restores the persisted session, failing when there is
// none or the server no longer accepts it.
func requireSession(ctx context.Context, e *env) error {
	ok, err := e.session.Restore(ctx)
	if err != nil {
		return fmt.Errorf("%w (%v)", errNotSignedIn, err)
	}
	if !ok {
		return errNotSignedIn
	}
	return nil
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
