// Package cli wires the package manager's five subcommands onto a
// cobra root command, loading configuration and constructing the
// shared component graph each command needs.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/arc-language/msys2pkg/internal/rootdir"
	"github.com/arc-language/msys2pkg/internal/ui"
	"github.com/arc-language/msys2pkg/pkg/catalog"
	"github.com/arc-language/msys2pkg/pkg/config"
	"github.com/arc-language/msys2pkg/pkg/fetch"
	"github.com/arc-language/msys2pkg/pkg/install"
	"github.com/arc-language/msys2pkg/pkg/msys"
	"github.com/arc-language/msys2pkg/pkg/prompt"
)

var (
	cfgFile  string
	noPrompt bool
	debug    bool
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "msys2pkg",
	Short:   "MSYS2-style binary package manager",
	Version: "0.1.0",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/msys2pkg/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&noPrompt, "no-prompt", "y", false, "suppress interactive prompts, resolving to defaults")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(dependenciesCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(updateCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if noPrompt {
		cfg.NoPrompt = true
	}
	if debug {
		cfg.Debug = true
	}
}

// app bundles the component graph every subcommand drives.
type app struct {
	logger    *log.Logger
	printer   ui.Printer
	prompter  *prompt.Prompter
	root      string
	available *catalog.AvailableCache
	installed *catalog.InstalledStore
	installer *install.Installer
	client    *fetch.Client
}

func newApp() (*app, error) {
	logger := log.New(io.Discard, "", 0)
	if cfg.Debug {
		logger = log.New(os.Stdout, "[msys2pkg] ", log.LstdFlags)
	}

	p := &prompt.Prompter{In: os.Stdin, Out: os.Stdout}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root := cfg.RootDir
	if root == "" {
		root, err = rootdir.Resolve(cwd, cfg.NoPrompt, p)
		if err != nil {
			return nil, err
		}
	}
	if err := rootdir.EnsureSkeleton(root); err != nil {
		return nil, err
	}

	msys.ApplyMirrorBase(cfg.MirrorBase)

	client := fetch.NewClient(cfg.RequestTimeout)

	available := &catalog.AvailableCache{
		Path:        root + "/var/local/packages/available",
		Fetcher:     client,
		Logger:      logger,
		FreshWindow: cfg.FreshWindow,
	}
	installed := &catalog.InstalledStore{Path: root + "/var/local/packages/installed"}

	installer := &install.Installer{
		Root:       root,
		Downloader: client,
		Installed:  installed,
		Logger:     logger,
	}

	return &app{
		logger:    logger,
		printer:   ui.Plain{Out: os.Stdout},
		prompter:  p,
		root:      root,
		available: available,
		installed: installed,
		installer: installer,
		client:    client,
	}, nil
}
