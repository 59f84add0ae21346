package rnandroid

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/icarus-itcs/rnandroid/internal/android"
	"github.com/icarus-itcs/rnandroid/internal/boot"
	"github.com/icarus-itcs/rnandroid/internal/config"
	"github.com/icarus-itcs/rnandroid/internal/launch"
	"github.com/icarus-itcs/rnandroid/internal/logging"
	"github.com/icarus-itcs/rnandroid/internal/preflight"
	"github.com/icarus-itcs/rnandroid/internal/process"
	"github.com/icarus-itcs/rnandroid/internal/prompt"
	"github.com/icarus-itcs/rnandroid/internal/ui"
)

var (
	appVersion string
	appCommit  string
	appDate    string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rnandroid",
	Short: "Boot an Android emulator and run your React Native app on it",
	Long: `rnandroid lists your Android virtual devices, boots the one you pick,
starts the React Native packager alongside it, and runs 'react-native run-android'
once the emulator is ready.

Run it from your React Native project directory.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rnandroid %s\n", appVersion)
		fmt.Printf("  commit: %s\n", appCommit)
		fmt.Printf("  built:  %s\n", appDate)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List virtual devices and attached devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk := android.New(cfg.Tools.Emulator, cfg.Tools.ADB)
		styles := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).OutStyles()
		out := cmd.OutOrStdout()

		profiles, err := sdk.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styles.Title.Render("Virtual devices"))
		for _, p := range profiles {
			fmt.Fprintf(out, "  %s\n", p)
		}

		devices, err := sdk.Devices(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, styles.Title.Render("Attached devices"))
		for _, d := range devices {
			kind := "device"
			if d.IsEmulator {
				kind = styles.Android.Render("emulator")
			}
			fmt.Fprintf(out, "  %s %s\t%s\t%s\n", styles.StatusDot(d.Online()), d.Serial, kind, d.State)
		}
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the required Android and React Native tools are installed",
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := preflight.NewChecker(requiredTools())
		checker.Version = preflight.ToolVersion
		results := checker.Run()

		printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		styles := printer.OutStyles()
		out := cmd.OutOrStdout()
		for _, c := range results.Checks {
			mark := styles.Success.Render("✓")
			switch c.Status {
			case preflight.StatusWarning:
				mark = styles.Warn.Render("!")
			case preflight.StatusError:
				mark = styles.Error.Render("✗")
			}
			detail := c.Message
			if c.Path != "" {
				detail += styles.Muted.Render("  " + c.Path)
			}
			fmt.Fprintf(out, "%s %-18s %s\n", mark, c.Name, detail)
		}
		fmt.Fprintln(out, styles.Muted.Render(results.Summary()))

		if results.HasErrors {
			printer.DocsHint(cfg.DocsURL)
			return &launch.ExitError{Code: 1, Reason: results.Summary()}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(doctorCmd)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: .rnandroid.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.Flags().Duration("timeout", boot.DefaultTimeout, "how long to wait for the emulator to boot")
	rootCmd.Flags().Duration("poll-interval", boot.DefaultPollInterval, "how often to ask adb whether the emulator is up")
	rootCmd.Flags().String("cleanup", config.CleanupOnFailure, "stop spawned processes: never, on-failure or always")
}

// Execute runs the root command.
func Execute(version, commit, date string) error {
	appVersion = version
	appCommit = commit
	appDate = date
	return rootCmd.Execute()
}

func loadConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.New(configFile)
	if err != nil {
		return err
	}

	bindings := map[string]string{
		"boot.timeout":       "timeout",
		"boot.poll_interval": "poll-interval",
		"cleanup.policy":     "cleanup",
	}
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Log.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log = logging.New(os.Stderr, level)
	log.Debug().Str("config", v.ConfigFileUsed()).Msg("configuration loaded")
	return nil
}

func requiredTools() []preflight.RequiredTool {
	return preflight.Tools(cfg.Tools.ReactNative, cfg.Tools.Emulator, cfg.Tools.ADB)
}

func runApp(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sdk := android.New(cfg.Tools.Emulator, cfg.Tools.ADB)
	registry := process.NewRegistry(os.Stdout, os.Stderr, log)

	l := &launch.Launcher{
		Config:    cfg,
		Preflight: preflight.NewChecker(requiredTools()),
		Lister:    sdk,
		Selector:  prompt.New(),
		NewBooter: func(emulatorPath string) launch.Booter {
			return boot.NewCoordinator(registry, sdk, boot.Options{
				EmulatorPath: emulatorPath,
				Timeout:      cfg.Boot.Timeout,
				PollInterval: cfg.Boot.PollInterval,
			}, log)
		},
		Children: registry,
		Printer:  ui.NewPrinter(os.Stdout, os.Stderr),
		Log:      log,
	}

	if _, err := l.Run(ctx); err != nil {
		return err
	}
	return l.Wait(ctx)
}
