/*
Copyright © 2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/huginn"
	"github.com/blacktop/huginn/internal/config"
	"github.com/blacktop/huginn/internal/facts"
	"github.com/blacktop/huginn/internal/logo"
	"github.com/blacktop/huginn/internal/panel"
	"github.com/spf13/cobra"
)

var (
	verbose        bool
	challenge      bool
	years          int
	months         int
	protocol       string
	configPath     string
	generateConfig bool
)

func init() {
	log.SetHandler(clihander.New(os.Stderr))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false, "Enable verbose logging")
	rootCmd.Flags().BoolVarP(&challenge, "challenge", "c", false, "Show the install age challenge")
	rootCmd.Flags().IntVarP(&years, "years", "y", 2, "Challenge length in years")
	rootCmd.Flags().IntVarP(&months, "months", "m", 0, "Challenge length in months")
	rootCmd.PersistentFlags().StringVar(&protocol, "protocol", "", "Image protocol: auto, kitty, sixel, iterm2 or none")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.Flags().BoolVar(&generateConfig, "generate-config", false, "Write the default config file and exit")
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "huginn",
	Short:         "A beautiful system information fetcher",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		if generateConfig {
			path := config.DefaultPath()
			if err := config.Default().Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			log.Infof("Generated default config at %s", path)
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("years") {
			cfg.Challenge.Years = years
		}
		if cmd.Flags().Changed("months") {
			cfg.Challenge.Months = months
		}
		if challenge {
			cfg.Display.Mode = "challenge"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return run(ctx, cfg, cmd.OutOrStdout())
	},
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	runScript(ctx, "pre_fetch", cfg.Scripts.PreFetch, out)

	detector := huginn.NewDetector(protocolOverride(protocol, cfg.Logo.Protocol))
	detector.Timeout = cfg.DetectTimeout()
	term := detector.Terminal(ctx)
	log.WithFields(log.Fields{
		"protocol": term.Protocol,
		"cell":     fmt.Sprintf("%dx%d", term.CellWidth, term.CellHeight),
		"tmux":     term.Tmux,
	}).Debug("terminal")

	if term.Tmux && term.Protocol != huginn.None && cfg.Detect.TmuxPassthrough {
		if err := huginn.EnableTmuxPassthrough(ctx); err != nil {
			log.WithError(err).Debug("failed to enable tmux passthrough")
		}
	}

	f, err := facts.NewCollector(cfg.Display.CustomInstallDate).Collect(ctx)
	if err != nil {
		return err
	}

	lg, err := logo.NewStore(cfg.Logo.CustomPath).Load(f.Distro)
	if err != nil {
		if errors.Is(err, huginn.ErrLogoNotFound) {
			log.Warnf("No logo found, place logos in %s", logo.DefaultDir())
		} else {
			log.WithError(err).Warn("failed to load logo")
		}
	}

	if err := newRenderer(term, cfg.Logo).Render(out, lg, panel.Build(f, panelOptions(cfg))); err != nil {
		return err
	}

	runScript(ctx, "post_fetch", cfg.Scripts.PostFetch, out)
	return nil
}

// protocolOverride picks the --protocol flag, then a non-auto config value.
// An empty result leaves detection to the environment.
func protocolOverride(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured == "auto" {
		return ""
	}
	return configured
}

func newRenderer(term huginn.Terminal, lc config.LogoConfig) *huginn.Renderer {
	r := huginn.NewRenderer(term, lc.Width, lc.Height)
	r.Fallback = lc.Fallback
	r.Options.MaxColors = lc.MaxColors
	r.Options.Dither = lc.Dither
	r.Options.Kitty.Compress = lc.Compress
	if lc.Container == "bmp" {
		r.Options.ITerm2.Container = huginn.ContainerBMP
	}
	return r
}

func panelOptions(cfg *config.Config) panel.Options {
	opts := panel.Options{Display: cfg.Display}
	if cfg.Display.Mode == "challenge" {
		opts.Challenge = &panel.Challenge{Years: cfg.Challenge.Years, Months: cfg.Challenge.Months}
	}
	return opts
}

// runScript runs a user hook through the shell. Failures are logged only.
func runScript(ctx context.Context, name, script string, out io.Writer) {
	if script == "" {
		return
	}
	c := exec.CommandContext(ctx, "sh", "-c", script)
	c.Stdout = out
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		log.WithError(err).WithField("script", name).Warn("script failed")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
