package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/zshup/zshup/internal/config"
	"github.com/zshup/zshup/internal/fetch"
	"github.com/zshup/zshup/internal/journal"
	"github.com/zshup/zshup/internal/patch"
	"github.com/zshup/zshup/internal/pkgs"
	"github.com/zshup/zshup/internal/platform"
	"github.com/zshup/zshup/internal/plugin"
	"github.com/zshup/zshup/internal/shell"
)

// installOptions holds the parsed flags for the install subcommand.
type installOptions struct {
	dryRun     bool
	noPackages bool
	noFonts    bool
	noChsh     bool
	configPath string
}

// runInstall handles the `zshup install` subcommand.
// Returns an exit code (0 = success, 1 = fatal failure) and an error.
func runInstall(args []string) (int, error) {
	// Parse flags
	showHelp := false
	opts := installOptions{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--dry-run", "-n":
			opts.dryRun = true
		case "--no-packages":
			opts.noPackages = true
		case "--no-fonts":
			opts.noFonts = true
		case "--no-chsh":
			opts.noChsh = true
		case "--config":
			if i+1 >= len(args) {
				return 1, fmt.Errorf("--config requires a path argument")
			}
			i++
			opts.configPath = args[i]
		default:
			return 1, fmt.Errorf("unknown install option: %s", args[i])
		}
	}

	if showHelp {
		printInstallHelp()
		return 0, nil
	}

	// Create context with timeout (10 minutes for package installs and clones)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	logger := newLogger()

	stateDir, err := zshupDir()
	if err != nil {
		return 1, fmt.Errorf("get zshup directory: %w", err)
	}
	logger.Debug("using state directory", "dir", stateDir)

	cfg, err := loadConfig(ctx, stateDir, opts.configPath, logger)
	if err != nil {
		return 1, err
	}

	if opts.dryRun {
		printInstallPlan(cfg, opts)
		return 0, nil
	}

	// One run at a time per state directory.
	lock, err := journal.AcquireLock(stateDir)
	if err != nil {
		if errors.Is(err, journal.ErrLockExists) {
			return 1, fmt.Errorf("another zshup run appears to be in progress\nIf that is wrong, remove %s", filepath.Join(stateDir, "zshup.lock"))
		}
		return 1, fmt.Errorf("acquire run lock: %w", err)
	}
	defer lock.Release()

	run := journal.NewRun()
	err = executeInstall(ctx, cfg, opts, run, logger)
	run.Finish(err == nil)

	if saveErr := run.Save(stateDir); saveErr != nil {
		// The run itself already happened; a journal write failure is only a warning.
		fmt.Printf("⚠  Could not record run journal: %v\n", saveErr)
	}

	if err != nil {
		return 1, err
	}

	printInstallSummary(run)
	return 0, nil
}

// executeInstall runs the install steps in order, recording each outcome.
// A returned error is fatal; warnings are recorded and printed but do not
// stop the run.
func executeInstall(ctx context.Context, cfg *config.Config, opts installOptions, run *journal.Run, logger *slog.Logger) error {
	// Step 1: Detect platform
	fmt.Println("Detecting platform...")
	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		run.Record("platform", journal.StateFailed, err.Error())
		return fmt.Errorf("detect platform: %w", err)
	}
	if info.Distro != "" {
		fmt.Printf("✓ Detected %s (%s family, %s)\n", info.Distro, info.Family, info.Arch)
	} else {
		fmt.Printf("✓ Detected %s, %s\n", info.OS, info.Arch)
	}
	run.Record("platform", journal.StateCompleted, fmt.Sprintf("%s/%s", info.OS, info.Arch))

	// Step 2: System packages
	if opts.noPackages {
		run.Record("packages", journal.StateSkipped, "--no-packages")
	} else if err := installPackages(ctx, cfg, info, run, logger); err != nil {
		return err
	}

	// Step 3: oh-my-zsh and plugins
	fetchRepositories(ctx, cfg, run, logger)

	// Step 4: Patch the zshrc
	fmt.Println("\nPatching zshrc...")
	if err := patchZshrc(cfg, run); err != nil {
		return err
	}

	// Step 5: Kitty terminal snippet
	if cfg.Kitty.Enabled {
		fmt.Println("\nPatching kitty configuration...")
		if err := patchKitty(cfg, run); err != nil {
			return err
		}
	} else {
		run.Record("kitty", journal.StateSkipped, "disabled in config")
	}

	// Step 6: Fonts
	if opts.noFonts || !cfg.Fonts.Enabled {
		run.Record("fonts", journal.StateSkipped, "disabled")
	} else {
		fmt.Println("\nInstalling fonts...")
		installFonts(ctx, cfg, run, logger)
	}

	// Step 7: Default shell
	if opts.noChsh || !cfg.SetDefaultShell {
		run.Record("chsh", journal.StateSkipped, "disabled")
	} else {
		fmt.Println("\nSetting default shell...")
		switchDefaultShell(ctx, run, logger)
	}

	// Step 8: Verify everything we claimed to have done
	fmt.Println("\nVerifying...")
	if err := verifyPatchedFiles(cfg, run); err != nil {
		return err
	}
	fmt.Println("✓ Verification passed")

	return nil
}

// installPackages runs apt update and installs required and optional
// packages. Missing apt or a failed required package is fatal; a failed
// optional package only warns.
func installPackages(ctx context.Context, cfg *config.Config, info *platform.Info, run *journal.Run, logger *slog.Logger) error {
	fmt.Println("\nInstalling system packages...")

	if !info.IsDebianFamily() {
		fmt.Println("⚠  Not a Debian-family system; skipping package installation")
		fmt.Println("   Install zsh, git and curl with your system package manager.")
		run.Record("packages", journal.StateWarning, "unsupported package manager")
		return nil
	}

	mgr := pkgs.NewManager()
	if err := mgr.CheckAvailable(); err != nil {
		run.Record("packages", journal.StateFailed, err.Error())
		return fmt.Errorf("package manager unavailable: %w", err)
	}

	if err := mgr.Update(ctx); err != nil {
		// A stale index still lets most installs succeed.
		fmt.Printf("⚠  apt update failed: %v\n", err)
		logger.Debug("apt update failed", "error", err)
	}

	results, err := mgr.EnsureInstalled(ctx, cfg.Packages.Required)
	if err != nil {
		run.Record("packages", journal.StateFailed, err.Error())
		return fmt.Errorf("install required packages: %w", err)
	}
	for _, name := range cfg.Packages.Required {
		res := results[name]
		if res.Status == pkgs.StatusFailed {
			run.Record("packages", journal.StateFailed, fmt.Sprintf("%s: %v", name, res.Err))
			return fmt.Errorf("required package %s failed to install: %w", name, res.Err)
		}
		fmt.Printf("✓ %s (%s)\n", name, res.Status)
	}

	optResults, err := mgr.EnsureInstalled(ctx, cfg.Packages.Optional)
	if err != nil {
		run.Record("packages", journal.StateWarning, err.Error())
		fmt.Printf("⚠  Optional packages skipped: %v\n", err)
		return nil
	}
	warned := false
	for _, name := range cfg.Packages.Optional {
		res := optResults[name]
		if res.Status == pkgs.StatusFailed {
			fmt.Printf("⚠  Optional package %s failed: %v\n", name, res.Err)
			warned = true
			continue
		}
		fmt.Printf("✓ %s (%s)\n", name, res.Status)
	}

	if warned {
		run.Record("packages", journal.StateWarning, "optional package failures")
	} else {
		run.Record("packages", journal.StateCompleted, "")
	}
	return nil
}

// fetchRepositories clones or updates oh-my-zsh and every plugin with a
// clone URL. Failures are warnings; the zshrc patch still proceeds so the
// environment converges as far as it can.
func fetchRepositories(ctx context.Context, cfg *config.Config, run *journal.Run, logger *slog.Logger) {
	fmt.Println("\nFetching oh-my-zsh and plugins...")
	fetcher := plugin.NewFetcher()

	status, err := fetcher.CloneOrUpdate(ctx, cfg.OhMyZsh.RepoURL, cfg.OhMyZsh.Dir)
	if err != nil {
		fmt.Printf("⚠  oh-my-zsh: %v\n", err)
		run.Record("oh-my-zsh", journal.StateWarning, err.Error())
	} else {
		fmt.Printf("✓ oh-my-zsh (%s)\n", status)
		run.Record("oh-my-zsh", journal.StateCompleted, status.String())
	}

	warned := false
	for _, repo := range pluginRepos(cfg, logger) {
		status, err := fetcher.CloneOrUpdate(ctx, repo.URL, cfg.PluginDir(repo.Name))
		if err != nil {
			fmt.Printf("⚠  %s: %v\n", repo.Name, err)
			warned = true
			continue
		}
		fmt.Printf("✓ %s (%s)\n", repo.Name, status)
	}

	if warned {
		run.Record("plugins", journal.StateWarning, "one or more plugin fetches failed")
	} else {
		run.Record("plugins", journal.StateCompleted, "")
	}
}

// pluginRepos lists the repositories to clone for the configured plugins.
// Plugins without a URL ship with oh-my-zsh and are skipped.
func pluginRepos(cfg *config.Config, logger *slog.Logger) []plugin.Repo {
	repos := make([]plugin.Repo, 0, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		if p.URL == "" {
			logger.Debug("skipping builtin plugin", "name", p.Name)
			continue
		}
		repos = append(repos, plugin.Repo{Name: p.Name, URL: p.URL})
	}
	return repos
}

// patchZshrc ensures the plugins directive and the kp helper block are
// present in the zshrc. Patch failures are fatal.
func patchZshrc(cfg *config.Config, run *journal.Run) error {
	dirResult, err := patch.EnsureDirectiveLine(cfg.ZshrcPath, cfg.ZshrcDirective())
	if err != nil {
		run.Record("zshrc", journal.StateFailed, err.Error())
		return fmt.Errorf("patch plugins directive: %w", err)
	}
	switch {
	case dirResult.Replaced:
		fmt.Printf("✓ Updated plugins line in %s\n", cfg.ZshrcPath)
	case dirResult.Inserted:
		fmt.Printf("✓ Added plugins line to %s\n", cfg.ZshrcPath)
	default:
		fmt.Printf("✓ Plugins line already current in %s\n", cfg.ZshrcPath)
	}

	blockResult, err := patch.EnsureMarkedBlock(cfg.ZshrcPath, config.KpMarker, config.KpBlock())
	if err != nil {
		run.Record("zshrc", journal.StateFailed, err.Error())
		return fmt.Errorf("patch kp helper block: %w", err)
	}
	if blockResult.Appended {
		fmt.Printf("✓ Added kp helper to %s\n", cfg.ZshrcPath)
	} else {
		fmt.Printf("✓ kp helper already present in %s\n", cfg.ZshrcPath)
	}

	run.Record("zshrc", journal.StateCompleted, "")
	return nil
}

// patchKitty ensures the font snippet is present in the kitty config.
func patchKitty(cfg *config.Config, run *journal.Run) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Kitty.ConfPath), 0755); err != nil {
		run.Record("kitty", journal.StateFailed, err.Error())
		return fmt.Errorf("create kitty config directory: %w", err)
	}

	result, err := patch.EnsureMarkedBlock(cfg.Kitty.ConfPath, config.KittyMarker, config.KittySnippet())
	if err != nil {
		run.Record("kitty", journal.StateFailed, err.Error())
		return fmt.Errorf("patch kitty config: %w", err)
	}
	if result.Appended {
		fmt.Printf("✓ Added font configuration to %s\n", cfg.Kitty.ConfPath)
	} else {
		fmt.Printf("✓ Font configuration already present in %s\n", cfg.Kitty.ConfPath)
	}

	run.Record("kitty", journal.StateCompleted, "")
	return nil
}

// installFonts downloads the configured font files. A file that already
// exists is left alone. Download failures are warnings.
func installFonts(ctx context.Context, cfg *config.Config, run *journal.Run, logger *slog.Logger) {
	if err := os.MkdirAll(cfg.Fonts.Dir, 0755); err != nil {
		fmt.Printf("⚠  Could not create font directory: %v\n", err)
		run.Record("fonts", journal.StateWarning, err.Error())
		return
	}

	downloader := fetch.NewDownloader()
	warned := false
	for _, fontURL := range cfg.Fonts.URLs {
		name, err := fontFileName(fontURL)
		if err != nil {
			fmt.Printf("⚠  Skipping font %s: %v\n", fontURL, err)
			warned = true
			continue
		}
		destPath := filepath.Join(cfg.Fonts.Dir, name)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Printf("✓ %s (already installed)\n", name)
			continue
		}
		logger.Debug("downloading font", "url", fontURL, "dest", destPath)
		if err := downloader.DownloadToFile(ctx, fontURL, destPath); err != nil {
			fmt.Printf("⚠  %s: %v\n", name, err)
			warned = true
			continue
		}
		fmt.Printf("✓ %s\n", name)
	}

	if warned {
		run.Record("fonts", journal.StateWarning, "one or more font downloads failed")
	} else {
		run.Record("fonts", journal.StateCompleted, "")
	}
}

// switchDefaultShell makes zsh the login shell. Every failure here is a
// warning; the user can always run chsh by hand.
func switchDefaultShell(ctx context.Context, run *journal.Run, logger *slog.Logger) {
	zshPath, err := exec.LookPath("zsh")
	if err != nil {
		fmt.Println("⚠  zsh not found on PATH; skipping default shell change")
		run.Record("chsh", journal.StateWarning, "zsh not on PATH")
		return
	}

	result, err := shell.NewSwitcher().SetDefaultShell(ctx, zshPath)
	if err != nil {
		fmt.Printf("⚠  Could not change default shell: %v\n", err)
		run.Record("chsh", journal.StateWarning, err.Error())
		return
	}

	switch result.Outcome {
	case shell.SwitchChanged:
		fmt.Printf("✓ Default shell changed to %s\n", result.ShellPath)
		fmt.Println("  Log out and back in for the change to take effect.")
		run.Record("chsh", journal.StateCompleted, "changed")
	case shell.SwitchAlreadySet:
		fmt.Printf("✓ Default shell already %s\n", result.ShellPath)
		run.Record("chsh", journal.StateCompleted, "already set")
	case shell.SwitchFailed:
		fmt.Printf("⚠  Could not change default shell: %s\n", result.Reason)
		fmt.Printf("   Run manually: chsh -s %s\n", result.ShellPath)
		run.Record("chsh", journal.StateWarning, result.Reason)
	}
	logger.Debug("default shell step finished", "outcome", result.Outcome.String())
}

// verifyPatchedFiles re-reads the patched files and checks the expected
// content really is there. A mismatch here means a write went wrong and
// is always fatal.
func verifyPatchedFiles(cfg *config.Config, run *journal.Run) error {
	if err := patch.Verify(cfg.ZshrcPath, cfg.ZshrcExpectations()); err != nil {
		run.Record("verify", journal.StateFailed, err.Error())
		return fmt.Errorf("verify zshrc: %w", err)
	}
	if cfg.Kitty.Enabled {
		if err := patch.Verify(cfg.Kitty.ConfPath, cfg.KittyExpectations()); err != nil {
			run.Record("verify", journal.StateFailed, err.Error())
			return fmt.Errorf("verify kitty config: %w", err)
		}
	}
	run.Record("verify", journal.StateCompleted, "")
	return nil
}

// fontFileName derives the local file name from a font download URL.
func fontFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid font URL: %w", err)
	}
	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil {
		return "", fmt.Errorf("invalid font URL path: %w", err)
	}
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("font URL has no file name: %s", rawURL)
	}
	return name, nil
}

// printInstallPlan shows what an install would do without doing it.
func printInstallPlan(cfg *config.Config, opts installOptions) {
	fmt.Println("Install plan (dry-run, nothing will change)")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	if opts.noPackages {
		fmt.Println("• Packages: skipped (--no-packages)")
	} else {
		fmt.Printf("• Install packages: %v (required), %v (optional)\n", cfg.Packages.Required, cfg.Packages.Optional)
	}

	fmt.Printf("• Clone or update oh-my-zsh into %s\n", cfg.OhMyZsh.Dir)
	for _, p := range cfg.Plugins {
		if p.URL != "" {
			fmt.Printf("• Clone or update %s into %s\n", p.Name, cfg.PluginDir(p.Name))
		}
	}

	fmt.Printf("• Ensure plugins line in %s:\n    %s\n", cfg.ZshrcPath, cfg.DirectiveLine())
	fmt.Printf("• Ensure kp helper block in %s\n", cfg.ZshrcPath)

	if cfg.Kitty.Enabled {
		fmt.Printf("• Ensure font configuration in %s\n", cfg.Kitty.ConfPath)
	}
	if cfg.Fonts.Enabled && !opts.noFonts {
		fmt.Printf("• Download %d font files into %s\n", len(cfg.Fonts.URLs), cfg.Fonts.Dir)
	}
	if cfg.SetDefaultShell && !opts.noChsh {
		fmt.Println("• Change the login shell to zsh")
	}
	fmt.Println("• Verify the patched files")
}

// printInstallSummary prints the closing summary after a successful run.
func printInstallSummary(run *journal.Run) {
	warnings := 0
	for _, s := range run.Steps {
		if s.State == journal.StateWarning {
			warnings++
		}
	}

	fmt.Println()
	if warnings > 0 {
		fmt.Printf("Install finished with %d warning(s). See 'zshup status' for details.\n", warnings)
	} else {
		fmt.Println("Install complete!")
	}
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Start a new terminal, or run: exec zsh")
	fmt.Println("  2. Check the result any time with: zshup verify")
}

func printInstallHelp() {
	fmt.Println("Usage: zshup install [options]")
	fmt.Println()
	fmt.Println("Install zsh, oh-my-zsh and the configured plugin set, patch the")
	fmt.Println("zshrc, and switch the login shell. Safe to run repeatedly.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --dry-run, -n    Show what would be done without changing anything")
	fmt.Println("  --no-packages    Skip the apt package step")
	fmt.Println("  --no-fonts       Skip the font download step")
	fmt.Println("  --no-chsh        Do not change the login shell")
	fmt.Println("  --config PATH    Read overrides from PATH instead of the default location")
	fmt.Println("  --help, -h       Show this help")
}

// zshupDir returns the zshup state directory path.
// First checks the ZSHUP_DIR environment variable, then falls back to
// ~/.config/zshup.
func zshupDir() (string, error) {
	if dir := os.Getenv(EnvZshupDir); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "zshup"), nil
}

// loadConfig builds the effective configuration: defaults, then Lua
// overrides from an explicit --config path or the default location. A
// missing override file at the default location is fine; an explicit
// path that does not exist is an error.
func loadConfig(ctx context.Context, stateDir, explicitPath string, logger *slog.Logger) (*config.Config, error) {
	base, err := config.Default()
	if err != nil {
		return nil, fmt.Errorf("build default config: %w", err)
	}

	configPath := explicitPath
	if configPath == "" {
		configPath = filepath.Join(stateDir, "zshup.lua")
	} else if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	parser := config.NewParser(platform.NewDetector())
	parser.SetLogger(slogAdapter{logger})
	cfg, err := parser.ParseFile(ctx, configPath, base)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	logger.Debug("configuration loaded", "path", configPath, "plugins", len(cfg.Plugins))

	return cfg, nil
}

// slogAdapter bridges the CLI's slog logger to the config Logger
// interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, keysAndValues...)
}

// newLogger returns a logger that only emits in debug mode (ZSHUP_DEBUG
// env var).
func newLogger() *slog.Logger {
	if os.Getenv(EnvZshupDebug) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
