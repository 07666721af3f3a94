package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"watchless/internal/bootstrap"
	accountdto "watchless/internal/modules/account/dto"
	timerdto "watchless/internal/modules/timer/dto"
	"watchless/internal/platform/config"
	"watchless/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var homePath string

	root := &cobra.Command{
		Use:           "watchless",
		Short:         "Track and reflect on screen time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&homePath, "home", defaultHome(), "data directory")

	root.AddCommand(newTUICmd(&homePath))
	root.AddCommand(newServeCmd(&homePath))
	root.AddCommand(newTimerCmd(&homePath))
	root.AddCommand(newAuthCmd(&homePath))
	root.AddCommand(newSettingsCmd(&homePath))
	root.AddCommand(newConfigCmd(&homePath))
	return root
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".watchless"
	}
	return filepath.Join(home, ".watchless")
}

func loadConfig(homePath string) (config.Config, error) {
	return config.Load(homePath, viper.New())
}

// openLog sends logs to the data dir so command output stays clean.
func openLog(cfg config.Config) (io.Closer, error) {
	if err := os.MkdirAll(cfg.HomeDir, 0o700); err != nil {
		return nil, fmt.Errorf("create home dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.Setup(f, cfg.LogLevel, cfg.LogFormat)
	return f, nil
}

// withApp builds the local app for one command and tears it down afterwards.
func withApp(ctx context.Context, homePath string, fn func(*bootstrap.App) error) error {
	cfg, err := loadConfig(homePath)
	if err != nil {
		return err
	}
	logFile, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func newTUICmd(homePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, *homePath, func(app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app)
			})
		},
	}
}

func newServeCmd(homePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the WatchLess API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*homePath)
			if err != nil {
				return err
			}
			logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			server, err := bootstrap.NewServer(ctx, cfg, bootstrap.ServerOptions{})
			if err != nil {
				return err
			}
			defer server.Close()
			return server.Run(ctx)
		},
	}
}

func newTimerCmd(homePath *string) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Timer operations"}

	timer.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start a viewing session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				out, err := app.TimerCLI.Start(cmd.Context())
				if err != nil {
					return err
				}
				if !out.Started {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "already watching since %s\n", out.Session.StartTime.Local().Format(time.Kitchen))
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s\n", out.Session.ID)
				return nil
			})
		},
	})

	var showName string
	stop := &cobra.Command{
		Use:   "stop [--show-name <name>]",
		Short: "Stop the running session and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				stopped, recorded, err := app.TimerCLI.Stop(cmd.Context(), showName)
				if err != nil {
					return err
				}
				if !stopped.Stopped {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no session running")
					return nil
				}
				session := recorded.Session
				name := session.ShowName
				if name == "" {
					name = "(unnamed)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session stopped: %s duration=%dmin show=%s note=%s\n", session.ID, session.Duration, name, recorded.Path)
				return printSummary(cmd, app)
			})
		},
	}
	stop.Flags().StringVar(&showName, "show-name", "", "what you watched")
	timer.AddCommand(stop)

	timer.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the timer state and today's totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				status, err := app.TimerCLI.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), status)
				return printSummary(cmd, app)
			})
		},
	})

	timer.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				if err := app.TimerCLI.Reset(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "timer reset")
				return nil
			})
		},
	})
	return timer
}

func printStatus(w io.Writer, status timerdto.StatusOutput) {
	_, _ = fmt.Fprintf(w, "state=%s elapsed=%s\n", status.State, status.Clock)
	if status.Session != nil {
		_, _ = fmt.Fprintf(w, "session=%s started=%s\n", status.Session.ID, status.Session.StartTime.Local().Format(time.RFC3339))
	}
}

func printSummary(cmd *cobra.Command, app *bootstrap.App) error {
	summary, err := app.TimerCLI.Summary(cmd.Context())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "today=%dmin goal=%dmin week=%dmin\n", summary.TodayMin, summary.DailyGoal, summary.WeekMin)
	return nil
}

func newAuthCmd(homePath *string) *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Account operations"}

	var credential string
	login := &cobra.Command{
		Use:   "login --credential <google id token>",
		Short: "Sign in with a Google ID token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				profile, err := app.AccountCLI.Login(cmd.Context(), credential)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", profileLabel(profile))
				return nil
			})
		},
	}
	login.Flags().StringVar(&credential, "credential", "", "Google ID token")
	auth.AddCommand(login)

	auth.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				if err := app.AccountCLI.Logout(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	})

	auth.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				profile, err := app.AccountCLI.Whoami(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nemail: %s\nname: %s\ndaily_goal: %dmin\nnotifications: %t\nauto_export: %t\n",
					profile.ID, profile.Email, profile.DisplayName, profile.DailyGoal, profile.Notifications, profile.AutoExport)
				return nil
			})
		},
	})
	return auth
}

func profileLabel(p accountdto.Profile) string {
	if p.DisplayName != "" {
		return fmt.Sprintf("%s <%s>", p.DisplayName, p.Email)
	}
	return p.Email
}

func newSettingsCmd(homePath *string) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Local settings"}

	settings.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				value, found, err := app.AccountCLI.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("setting %q is not set", key)
				}
				if all, ok := value.(map[string]any); ok && key == "" {
					keys := make([]string, 0, len(all))
					for k := range all {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, renderValue(all[k]))
					}
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderValue(value))
				return nil
			})
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting; JSON values are parsed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				out, err := app.AccountCLI.Set(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", out.Key, renderValue(out.Value))
				return nil
			})
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every setting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), *homePath, func(app *bootstrap.App) error {
				if err := app.AccountCLI.Clear(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "settings cleared")
				return nil
			})
		},
	})
	return settings
}

func renderValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(payload)
}

func newConfigCmd(homePath *string) *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration"}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.WriteDefault(*homePath, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}
