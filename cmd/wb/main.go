package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vanderheijden86/workbench/pkg/config"
	"github.com/vanderheijden86/workbench/pkg/debug"
	"github.com/vanderheijden86/workbench/pkg/metrics"
	"github.com/vanderheijden86/workbench/pkg/persist"
	"github.com/vanderheijden86/workbench/pkg/ui"
	"github.com/vanderheijden86/workbench/pkg/watcher"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// rootFlags are the flags shared by every subcommand.
type rootFlags struct {
	configPath string
	store      string
	storePath  string
	noPersist  bool
	noReveal   bool
	debug      bool
	debugFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "wb",
		Short: "Workbench launcher",
		Long: `wb greets you, asks who you are and shows the workbench links for
your role. The chosen role is remembered until you go back.

Run without arguments to start the interactive screen.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case f.debugFile != "":
				debug.SetOutput(f.debugFile)
			case f.debug:
				debug.SetEnabled(true)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(f)
			if err != nil {
				return err
			}
			return runTUI(cfg, path)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wb/config.yaml)")
	pf.StringVar(&f.store, "store", "", "selection store backend: file, sqlite or memory")
	pf.StringVar(&f.storePath, "store-path", "", "selection store location")
	pf.BoolVar(&f.noPersist, "no-persist", false, "do not restore or remember the selected role")
	pf.BoolVar(&f.noReveal, "no-reveal", false, "show the role options immediately")
	pf.BoolVar(&f.debug, "debug", false, "write a debug log (see WB_DEBUG_FILE)")
	pf.StringVar(&f.debugFile, "debug-file", "", "write the debug log to this file (implies --debug)")

	root.AddCommand(
		newLinksCmd(f),
		newForgetCmd(f),
		newInitCmd(f),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the config path, reads it with environment overrides
// and applies command-line flags on top.
func loadConfig(f *rootFlags) (config.Config, string, error) {
	path := f.configPath
	if path == "" {
		path = config.ConfigPath()
	}

	var (
		cfg config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return cfg, path, err
	}

	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if f.noPersist {
		cfg.Wizard.PersistRole = false
	}
	if f.noReveal {
		cfg.Wizard.TimedReveal = false
	}
	debug.Dump("config", cfg)
	return cfg, path, nil
}

// openStore opens the configured backend. A backend that cannot be opened
// degrades to empty storage so the screen still comes up.
func openStore(cfg config.Config) *persist.Adapter {
	if !cfg.Wizard.PersistRole {
		return persist.NewAdapter(nil)
	}
	kv, err := persist.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		debug.Log("store: %v, continuing without persistence", err)
		return persist.NewAdapter(nil)
	}
	return persist.NewAdapter(kv)
}

// startWatcher watches the config file for live reload. Missing files are
// not watched.
func startWatcher(path string, rc config.ReloadConfig) *watcher.Watcher {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	w, err := watcher.NewWatcher(path,
		watcher.WithDebounceDuration(rc.Debounce),
		watcher.WithPollInterval(rc.PollInterval),
		watcher.WithForcePoll(rc.ForcePoll),
		watcher.WithOnError(func(err error) { debug.Log("config watcher: %v", err) }),
	)
	if err != nil {
		debug.Log("config watcher: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		debug.Log("config watcher: %v", err)
		return nil
	}
	debug.Log("config watcher: %s (polling=%t)", w.Path(), w.IsPolling())
	return w
}

func runTUI(cfg config.Config, configPath string) error {
	store := openStore(cfg)
	defer store.Close()

	w := startWatcher(configPath, cfg.Reload)
	if w != nil {
		defer w.Stop()
	}

	boundary := ui.NewBoundary(func() tea.Model {
		return ui.NewModel(cfg, store, ui.Options{
			Watcher:    w,
			ConfigPath: configPath,
		})
	})

	err := runTUIProgram(boundary)
	logMetrics()
	return err
}

// logMetrics writes the session's timings to the debug log.
func logMetrics() {
	if !metrics.Enabled() || !debug.Enabled() {
		return
	}
	for _, s := range metrics.AllTimingStats() {
		debug.Log("metrics: %s count=%d", s.Name, s.Count)
		debug.LogTiming(s.Name+".avg", s.Avg())
		debug.LogTiming(s.Name+".max", s.Max())
	}
}

func runTUIProgram(m tea.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set WB_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("WB_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("running wb: %w", err)
	}
	return nil
}
