package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phin3has/argodash/internal/argocd"
)

func newLoginCmd(o *rootOptions) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password and store the session token",
		Long: "Log in to the configured Argo CD server. The password is read from\n" +
			"ARGOCD_PASSWORD or, with --password-stdin, from standard input.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.useMock() {
				return errors.New("login needs a server (--server or ARGOCD_SERVER)")
			}
			user := username
			if user == "" {
				user = o.cfg.ArgoCD.Username
			}
			pass := o.cfg.ArgoCD.Password
			if passwordStdin {
				p, err := readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
				pass = p
			}
			if user == "" || pass == "" {
				return errors.New("username and password are required")
			}

			client, session := o.client()
			return login(cmd, client, session, o, user, pass)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (or ARGOCD_USERNAME)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func login(cmd *cobra.Command, c argocd.SessionClient, session *argocd.Session, o *rootOptions, user, pass string) error {
	token, err := c.Login(cmd.Context(), user, pass)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	session.SetToken(token)
	if err := o.state.SetToken(o.cfg.ArgoCD.Server, token); err != nil {
		return err
	}
	o.logger.Info("logged in", "server", o.cfg.ArgoCD.Server, "user", user)
	fmt.Fprintf(cmd.OutOrStdout(), "logged in to %s as %s\n", o.cfg.ArgoCD.Server, user)
	return nil
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
