package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/config"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/hooks"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/installer"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/mcptool"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/notify"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/pathutil"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/tui"
	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/ui"
)

var (
	version  = "1.0.0"
	buildNum = "0"
)

func main() {
	pathutil.AugmentPath()

	rootCmd := &cobra.Command{
		Use:     "strategic",
		Short:   "Strategic Claude Base template installer and Claude Code hooks",
		Version: fmt.Sprintf("%s (build %s)", version, buildNum),
	}
	rootCmd.SilenceUsage = true

	var installPlain bool
	installCmd := &cobra.Command{
		Use:   "install [dir]",
		Short: "Copy the template into a project root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := argDir(args)
			ins, err := installer.New()
			if err != nil {
				return err
			}
			ins.Version = version

			if installPlain || !ui.IsTTY {
				return runInstallPlain(ins, dir)
			}
			return runInstallTUI(ins, dir)
		},
	}
	installCmd.Flags().BoolVar(&installPlain, "plain", false, "line-by-line progress instead of the TUI")

	verifyCmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check an installed project against the manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := argDir(args)
			ins, err := installer.New()
			if err != nil {
				return err
			}
			problems := ins.Verify(dir)
			if len(problems) == 0 {
				fmt.Println(ui.OKLine("install verified"))
				return nil
			}
			for _, p := range problems {
				fmt.Println(ui.ErrLine(p))
			}
			return fmt.Errorf("%d problem(s) found", len(problems))
		},
	}

	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Checks invoked by the Claude Code host (read event on stdin)",
	}
	hookCmd.AddCommand(
		&cobra.Command{
			Use:   "file-guard",
			Short: "Block writes to protected files",
			RunE: func(cmd *cobra.Command, args []string) error {
				ev, err := hooks.ReadEvent(os.Stdin)
				if err != nil {
					// A malformed event never wedges the host.
					fmt.Fprintf(os.Stderr, "file-guard: %v\n", err)
					return hooks.Allow().Write(os.Stdout)
				}
				cfg, err := hookConfig()
				if err != nil {
					return err
				}
				return hooks.FileGuard(ev, cfg.Guard).Write(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "command-guard",
			Short: "Block prohibited command flags",
			RunE: func(cmd *cobra.Command, args []string) error {
				ev, err := hooks.ReadEvent(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "command-guard: %v\n", err)
					return hooks.Allow().Write(os.Stdout)
				}
				cfg, err := hookConfig()
				if err != nil {
					return err
				}
				d, err := hooks.CommandGuard(ev, cfg.Guard)
				if err != nil {
					return err
				}
				return d.Write(os.Stdout)
			},
		},
		&cobra.Command{
			Use:   "notify",
			Short: "Push a session-stop notification",
			RunE: func(cmd *cobra.Command, args []string) error {
				ev, _ := hooks.ReadEvent(os.Stdin)
				cfg, err := hookConfig()
				if err != nil {
					fmt.Fprintf(os.Stderr, "notify: %v\n", err)
					return nil
				}
				msg := "Claude Code session finished"
				if ev.SessionID != "" {
					msg = fmt.Sprintf("Session %s finished", ev.SessionID)
				}
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := notify.New(cfg.Notify).Send(ctx, msg); err != nil {
					// Notification failures are reported, never blocking.
					fmt.Fprintln(os.Stderr, err)
				}
				return nil
			},
		},
	)

	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage bundled MCP servers",
	}
	mcpCmd.AddCommand(&cobra.Command{
		Use:   "install-web-search [dir]",
		Short: "Download and set up the web-search MCP server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := argDir(args)
			return installWebSearch(cmd.Context(), dir)
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the project hook configuration",
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show [dir]",
			Short: "Print the effective configuration",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(argDir(args))
				if err != nil {
					return err
				}
				return printJSON(cfg)
			},
		},
		&cobra.Command{
			Use:   "init [dir]",
			Short: "Write the default configuration",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := argDir(args)
				if err := config.Save(dir, config.Default()); err != nil {
					return err
				}
				fmt.Println(ui.OKLine("wrote " + config.Path(dir)))
				return nil
			},
		},
	)

	rootCmd.AddCommand(installCmd, verifyCmd, hookCmd, mcpCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func argDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// hookConfig loads the project config for a hook invocation. A missing file
// means defaults; hooks must not scaffold .strategic/ in arbitrary cwds.
func hookConfig() (config.Config, error) {
	path := config.Path(".")
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.LoadFrom(path)
}

func runInstallPlain(ins *installer.Installer, dir string) error {
	err := ins.Run(dir, func(step, status string) {
		switch status {
		case "installing":
			fmt.Println(ui.InfoLine(step))
		case "done":
			fmt.Println(ui.OKLine(step))
		default:
			fmt.Println(ui.ErrLine(step + " " + status))
		}
	})
	if err != nil {
		return err
	}
	fmt.Println(ui.OKLine("install complete; run `strategic verify` to check"))
	return nil
}

func runInstallTUI(ins *installer.Installer, dir string) error {
	msgs := make(chan tea.Msg, 16)
	m := tui.NewModel(ins.Manifest().Paths(), msgs)
	p := tea.NewProgram(m)

	go func() {
		err := ins.Run(dir, func(step, status string) {
			msgs <- tui.StepMsg{Step: step, Status: status}
		})
		msgs <- tui.DoneMsg{Err: err}
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(tui.Model).Err()
}

func installWebSearch(ctx context.Context, dir string) error {
	fmt.Println(ui.InfoLine("checking requirements"))
	if err := mcptool.CheckRequirements(); err != nil {
		return err
	}

	p := mcptool.NewPipeline(filepath.Join(dir, "tools"))
	p.Progress = func(msg string) { fmt.Println(ui.InfoLine(msg)) }

	zipPath, err := p.Download(ctx)
	if err != nil {
		return err
	}
	extractDir, err := p.Extract(zipPath)
	if err != nil {
		return err
	}
	if err := p.Setup(ctx, extractDir); err != nil {
		return err
	}

	entry, err := filepath.Rel(dir, filepath.Join(extractDir, "dist", "index.js"))
	if err != nil {
		entry = filepath.Join(extractDir, "dist", "index.js")
	}
	mcpPath := filepath.Join(dir, ".mcp.json")
	if err := mcptool.Register(mcpPath, "web-search", "node", []string{entry}, nil); err != nil {
		return err
	}
	fmt.Println(ui.OKLine("web-search registered in " + mcpPath))
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
