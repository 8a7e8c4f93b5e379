package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/autobrr/go-mediainfo-refs/internal/api"
	"github.com/autobrr/go-mediainfo-refs/internal/cli"
	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

var version = "dev"

const repoSlug = "autobrr/go-mediainfo-refs"

const helpBanner = "" +
	"           __ _        __      \n" +
	" _ __ ___ / _(_)_ __  / _| ___ \n" +
	"| '__/ _ \\ |_| | '_ \\| |_ / _ \\\n" +
	"| | |  __/  _| | | | |  _| (_) |\n" +
	"|_|  \\___|_| |_|_| |_|_|  \\___/ "

const helpTemplate = helpBanner + `

{{with or .Long .Short}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}`

var rootCmd = &cobra.Command{
	Use:                "refinfo [options] <file> [file...]",
	Short:              "Metadata reports for files and multi-file reference manifests.",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		os.Exit(cli.Run(append([]string{cmd.Name()}, args...), cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

var composeFlags cli.ComposeFlags

var composeCmd = &cobra.Command{
	Use:   "compose [flags] <manifest.yaml> [manifest...]",
	Short: "Composite reference manifests into one report each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunCompose(cmd.Context(), composeFlags, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var serveAddr, serveRoot string
var serveVerbose bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve compositions of the manifests under a directory over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := cli.NewLogger(cmd.ErrOrStderr(), serveVerbose)
		defer func() { _ = log.Sync() }()
		return api.NewServer(serveAddr, serveRoot, log).Run(cmd.Context())
	},
	DisableFlagsInUseLine: true,
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update refinfo",
	Long:  "Update refinfo to latest version (release builds only).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSelfUpdate(cmd.Context())
	},
	DisableFlagsInUseLine: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print refinfo version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cli.Version(cmd.OutOrStdout())
		return nil
	},
	DisableFlagsInUseLine: true,
}

func init() {
	resolvedVersion := resolveVersion()
	cli.SetVersion(resolvedVersion)
	mediainfo.SetAppVersion(resolvedVersion)

	composeFlags.Bind(composeCmd.Flags())
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "directory manifests are read from")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "log every request")

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
	rootCmd.SetHelpTemplate(helpTemplate)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runSelfUpdate(ctx context.Context) error {
	if version == "" || version == "dev" {
		return errors.New("self-update is only available in release builds")
	}

	if _, err := semver.ParseTolerant(version); err != nil {
		return fmt.Errorf("could not parse version: %w", err)
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s/%s could not be found from github repository", repoSlug, version)
	}

	if latest.LessOrEqual(version) {
		fmt.Printf("Current binary is the latest version: %s\n", mediainfo.FormatVersion(version))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	fmt.Printf("Successfully updated to version: %s\n", mediainfo.FormatVersion(latest.Version()))
	return nil
}

func resolveVersion() string {
	if version != "" && version != "dev" {
		return normalizeVersion(version)
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return normalizeVersion(info.Main.Version)
		}
	}
	return "dev"
}

func normalizeVersion(value string) string {
	return strings.TrimPrefix(value, "v")
}
