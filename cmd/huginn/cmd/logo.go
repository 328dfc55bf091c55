package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/blacktop/huginn"
	"github.com/blacktop/huginn/internal/config"
	"github.com/blacktop/huginn/internal/facts"
	"github.com/blacktop/huginn/internal/logo"
	"github.com/spf13/cobra"
)

var (
	logoWidth  int
	logoHeight int
)

func init() {
	logoCmd.Flags().IntVarP(&logoWidth, "width", "W", 0, "Logo width in cells (default from config)")
	logoCmd.Flags().IntVarP(&logoHeight, "height", "H", 0, "Logo height in cells (default from config)")
	rootCmd.AddCommand(logoCmd)
}

// logoCmd renders a single logo without the info panel
var logoCmd = &cobra.Command{
	Use:   "logo [FILE]",
	Short: "Render a logo file (or the distro logo) in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logoWidth > 0 {
			cfg.Logo.Width = logoWidth
		}
		if logoHeight > 0 {
			cfg.Logo.Height = logoHeight
		}

		var lg huginn.Logo
		if len(args) == 1 {
			lg, err = huginn.OpenLogo(args[0])
		} else {
			lg, err = logo.NewStore(cfg.Logo.CustomPath).Load(facts.NewCollector("").Distro(cmd.Context()))
		}
		if err != nil {
			return fmt.Errorf("failed to open logo: %w", err)
		}

		detector := huginn.NewDetector(protocolOverride(protocol, cfg.Logo.Protocol))
		detector.Timeout = cfg.DetectTimeout()
		term := detector.Terminal(cmd.Context())
		log.WithField("protocol", term.Protocol).Debug("terminal")

		r := newRenderer(term, cfg.Logo)
		r.Fallback = huginn.FallbackBlocks
		return r.Render(cmd.OutOrStdout(), lg, huginn.TextPanel{})
	},
}
