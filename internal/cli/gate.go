package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newGateCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Signup session commands",
		Long: `Drive a signup session through its verification challenge.

'gate start' opens a session and remembers its id in the session file;
the other commands act on that session unless --session is given.`,
	}

	cmd.PersistentFlags().StringVar(&sessionID, "session", "", "Signup session id (default: the saved session)")

	cmd.AddCommand(newGateStartCmd())
	cmd.AddCommand(newGateShowCmd(&sessionID))
	cmd.AddCommand(newGateSetCmd(&sessionID))
	cmd.AddCommand(newGateSubmitCmd(&sessionID))
	cmd.AddCommand(newGateTokenCmd(&sessionID))
	cmd.AddCommand(newGateAckCmd(&sessionID))
	cmd.AddCommand(newGateSelectCmd(&sessionID))
	cmd.AddCommand(newGateDismissCmd(&sessionID))
	cmd.AddCommand(newGateLeaveCmd(&sessionID))

	return cmd
}

func signupPath(id, suffix string) string {
	return "/api/v1/signup/" + url.PathEscape(id) + suffix
}

func withWait(path string, wait bool) string {
	if !wait {
		return path
	}
	return path + "?wait=true"
}

func printSignup(result Signup) {
	out := NewOutput(cfg.Output)
	out.Print(result)
}

func newGateStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Open a new signup session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Signup

			if err := client.Post("/api/v1/signup", nil, &result); err != nil {
				return err
			}

			if err := cfg.SaveSessionID(result.SessionID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			printSignup(result)
			return nil
		},
	}
}

func newGateShowCmd(sessionID *string) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the signup session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			var result Signup
			if err := client.Get(withWait(signupPath(id, ""), wait), &result); err != nil {
				return err
			}

			printSignup(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for an in-flight registration to finish")

	return cmd
}

func newGateSetCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Change one form field (username, email, password)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			req := map[string]string{"value": args[1]}
			var result Signup
			if err := client.Put(signupPath(id, "/fields/"+url.PathEscape(args[0])), req, &result); err != nil {
				return err
			}

			printSignup(result)
			return nil
		},
	}
}

func newGateSubmitCmd(sessionID *string) *cobra.Command {
	var user, email, pass string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the form and start the challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			req := map[string]string{}
			if cmd.Flags().Changed("user") {
				req["username"] = user
			}
			if cmd.Flags().Changed("email") {
				req["email"] = email
			}
			if cmd.Flags().Changed("pass") {
				req["password"] = pass
			}

			var result Signup
			if err := client.Post(signupPath(id, "/submit"), req, &result); err != nil {
				return err
			}

			printSignup(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&pass, "pass", "", "Password")

	return cmd
}

func newChallengeCmd(sessionID *string, use, short string, args cobra.PositionalArgs, build func(args []string) (map[string]any, error)) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			req, err := build(args)
			if err != nil {
				return err
			}

			var result Signup
			if err := client.Post(withWait(signupPath(id, "/challenge"), wait), req, &result); err != nil {
				return err
			}

			printSignup(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the registration outcome")

	return cmd
}

func newGateTokenCmd(sessionID *string) *cobra.Command {
	return newChallengeCmd(sessionID, "token <token>", "Answer a token challenge", cobra.ExactArgs(1),
		func(args []string) (map[string]any, error) {
			return map[string]any{"token": args[0]}, nil
		})
}

func newGateAckCmd(sessionID *string) *cobra.Command {
	return newChallengeCmd(sessionID, "ack", "Acknowledge a delay challenge", cobra.NoArgs,
		func(args []string) (map[string]any, error) {
			return map[string]any{"acknowledge": true}, nil
		})
}

func newGateSelectCmd(sessionID *string) *cobra.Command {
	return newChallengeCmd(sessionID, "select <index>", "Select a card in a symbol challenge", cobra.ExactArgs(1),
		func(args []string) (map[string]any, error) {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			return map[string]any{"select": index}, nil
		})
}

func newGateDismissCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss",
		Short: "Abandon the live challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			var result Signup
			if err := client.Delete(signupPath(id, "/challenge"), &result); err != nil {
				return err
			}

			printSignup(result)
			return nil
		},
	}
}

func newGateLeaveCmd(sessionID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Close the signup session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveSessionID(*sessionID)
			if err != nil {
				return err
			}

			if err := client.Delete(signupPath(id, ""), nil); err != nil {
				return err
			}
			if id == cfg.SessionID {
				if err := cfg.ClearSessionID(); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left signup session " + id)
			return nil
		},
	}
}
