package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GAkim/promo-gateway/internal/config"
	"github.com/GAkim/promo-gateway/internal/observability"
	"github.com/GAkim/promo-gateway/internal/seo"
)

var sitemapOutput string

var sitemapCmd = &cobra.Command{
	Use:   "sitemap <sitemap.xml>",
	Short: "Enrich a sitemap with hreflang alternate links",
	Long: `Post-process a generated sitemap.xml, attaching one xhtml:link
alternate per configured locale (plus x-default) to every URL that belongs
to the site. Runs after the static build, before deployment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		site, err := seo.New(seo.Config{
			BaseURL:       cfg.Site.BaseURL,
			DefaultLocale: cfg.Site.DefaultLocale,
			Locales:       cfg.Site.Locales,
			XDefault:      cfg.Site.XDefault,
		})
		if err != nil {
			return err
		}

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open sitemap: %w", err)
		}
		defer in.Close() // nolint:errcheck // read-only handle

		out := os.Stdout
		if sitemapOutput != "" {
			f, err := os.Create(sitemapOutput)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close() // nolint:errcheck // flushed by EnrichSitemap error path
			out = f
		}

		if err := site.EnrichSitemap(in, out); err != nil {
			return err
		}

		if sitemapOutput != "" {
			observability.CLILogger.Info("Sitemap enriched",
				zap.String("input", args[0]),
				zap.String("output", sitemapOutput),
				zap.Strings("locales", site.Locales()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitemapCmd)

	sitemapCmd.Flags().StringVarP(&sitemapOutput, "output", "o", "", "output file (default stdout)")
}
