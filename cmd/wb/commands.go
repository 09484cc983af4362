package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vanderheijden86/workbench/pkg/config"
	"github.com/vanderheijden86/workbench/pkg/version"
	"github.com/vanderheijden86/workbench/pkg/wizard"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the wb version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wb %s\n", version.Version)
		},
	}
}

func newLinksCmd(f *rootFlags) *cobra.Command {
	var (
		roleName string
		raw      bool
	)
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print the workbench links for each role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(f)
			if err != nil {
				return err
			}
			roles := wizard.Roles
			if roleName != "" {
				r, ok := wizard.ParseRole(roleName)
				if !ok || !r.Selectable() {
					return fmt.Errorf("unknown role %q (want normal or admin)", roleName)
				}
				roles = []wizard.Role{r}
			}

			md := linksMarkdown(cfg, roles)
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), md)
				return err
			}
			return renderMarkdown(cmd.OutOrStdout(), md)
		},
	}
	cmd.Flags().StringVar(&roleName, "role", "", "only show this role (normal or admin)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without rendering")
	return cmd
}

// linksMarkdown renders the link table of roles as Markdown.
func linksMarkdown(cfg config.Config, roles []wizard.Role) string {
	var sb strings.Builder
	title := strings.Join(strings.Fields(cfg.Greeting), " ")
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	for _, r := range roles {
		rc := cfg.Role(r)
		fmt.Fprintf(&sb, "## %s (`%s`)\n\n", rc.Label, r)
		if len(rc.Links) == 0 {
			sb.WriteString("_No links configured._\n\n")
			continue
		}
		for _, l := range rc.Links {
			fmt.Fprintf(&sb, "- [%s](%s)\n", l.Label, l.URL)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// confirmForget asks before clearing the saved role. Replaced in tests.
var confirmForget = func(label string) (bool, error) {
	confirmed := false
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Forget the saved role %q?", label)).
				Description("The next start asks who you are again").
				Value(&confirmed).
				Affirmative("Yes, forget").
				Negative("No, keep it"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func newForgetCmd(f *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Clear the remembered role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(f)
			if err != nil {
				return err
			}
			// Forgetting works even when the screen runs with --no-persist.
			cfg.Wizard.PersistRole = true
			store := openStore(cfg)
			defer store.Close()

			out := cmd.OutOrStdout()
			role := store.Load()
			if role == wizard.RoleNone {
				fmt.Fprintln(out, "No saved role.")
				return nil
			}

			label := cfg.Role(role).Label
			if !yes {
				ok, err := confirmForget(label)
				if err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Nothing changed.")
						return nil
					}
					return fmt.Errorf("confirm: %w", err)
				}
				if !ok {
					fmt.Fprintln(out, "Nothing changed.")
					return nil
				}
			}

			store.Clear()
			fmt.Fprintf(out, "Forgot saved role %s (%s).\n", label, role)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newInitCmd(f *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if path == "" {
				return errors.New("cannot determine config path; pass --config")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTo(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
