package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/maintenancetool/pkg/bootconfig"
	"github.com/flanksource/maintenancetool/pkg/database"
	"github.com/flanksource/maintenancetool/pkg/framework"
	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/logging"
	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/platformshell"
	"github.com/flanksource/maintenancetool/pkg/server"
	"github.com/flanksource/maintenancetool/pkg/source"
)

var (
	launcherPath string
	installPath  string
	osOverride   string
	archOverride string
)

var rootCmd = &cobra.Command{
	Use:          "maintenancetool",
	Short:        "Install, update, and uninstall this application's components",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&launcherPath, "launcher", "", "path to the application executable to launch after install/exit")
	rootCmd.PersistentFlags().StringVar(&installPath, "install-path", "", "override the default install directory")
	rootCmd.PersistentFlags().StringVar(&osOverride, "os", "", "override detected target OS (testing only)")
	rootCmd.PersistentFlags().StringVar(&archOverride, "arch", "", "override detected target architecture (testing only)")
}

func main() {
	// --cleanup is a hidden, internally-used re-invocation mode (see
	// pkg/platformshell): it never goes through cobra's normal flag
	// parsing because it is only ever produced by this binary itself.
	if len(os.Args) == 4 && os.Args[1] == platformshell.CleanupFlag {
		runCleanup(os.Args[2], os.Args[3])
		return
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// maintenanceModeDir reports the directory the running binary was
// launched from, if it already holds an installation database. This is
// how a copied maintenancetool, double-clicked with no flags from its
// installed location, rediscovers its own install_path (spec.md §3:
// "inferred from executable location in maintenance mode").
func maintenanceModeDir() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(exe)
	if !database.Exists(dir) {
		return "", false
	}
	return dir, true
}

func runCleanup(toolPath, logPath string) {
	cleaner, err := platformshell.NewSelfCleaner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleanup: %v\n", err)
		os.Exit(1)
	}
	if err := cleaner.CleanupNow(toolPath, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "cleanup: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logging.Init()
	platform.SetGlobalOverrides(osOverride, archOverride)

	config, err := bootconfig.Load()
	if err != nil {
		return err
	}

	fw := framework.New(config)
	if launcherPath != "" {
		fw.SetLauncher(launcherPath)
	}

	path := installPath
	if path == "" {
		if selfDir, ok := maintenanceModeDir(); ok {
			path = selfDir
		} else if defaultPath, ok := fw.GetDefaultPath(); ok {
			path = defaultPath
		}
	}
	if path != "" {
		if err := fw.SetInstallDir(path); err != nil {
			return err
		}
		if logFile := logging.OpenLogFile(fw.InstallPath()); logFile != nil {
			defer logFile.Close()
		}
	}

	registry := source.NewRegistry()
	client := httpclient.Default()

	srv, err := server.New(fw, registry, client, func() {
		logger.Infof("shutting down")
	})
	if err != nil {
		return err
	}

	logger.Infof("listening on http://%s", srv.Addr())
	return srv.Serve()
}
