package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shaharia-lab/oxo/internal/config"
	"github.com/shaharia-lab/oxo/internal/devproxy"
)

// buildToolConfig mirrors the dev server configuration object.
type buildToolConfig struct {
	Mode   string          `yaml:"mode"`
	Server buildToolServer `yaml:"server"`
}

type buildToolServer struct {
	Proxy map[string]proxyEntry `yaml:"proxy"`
}

type proxyEntry struct {
	Target       string `yaml:"target"`
	ChangeOrigin bool   `yaml:"changeOrigin"`
	Rewrite      string `yaml:"rewrite"`
}

// NewProxyConfigCmd returns the "proxy-config" subcommand that prints the resolved
// dev server configuration as YAML.
func NewProxyConfigCmd(cfg *config.AppConfig) *cobra.Command {
	var mode, apiBaseURL string

	cmd := &cobra.Command{
		Use:   "proxy-config",
		Short: "Print the resolved dev server proxy configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("mode") {
				cfg.Mode = mode
			}
			if cmd.Flags().Changed("api-base-url") {
				cfg.APIBaseURL = apiBaseURL
			}

			result := devproxy.Configure(cfg.ProxyMode(), cfg.ProxyOptions())
			out, err := yaml.Marshal(describe(cfg.Mode, devproxy.TableFor(result)))
			if err != nil {
				return fmt.Errorf("encoding proxy config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "mode", cfg.Mode, "Build mode (overrides OXO_MODE env var)")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", cfg.APIBaseURL, "Proxy target (overrides VITE_API_BASE_URL env var)")
	return cmd
}

func describe(mode string, table devproxy.Table) buildToolConfig {
	out := buildToolConfig{
		Mode:   mode,
		Server: buildToolServer{Proxy: make(map[string]proxyEntry, len(table))},
	}
	for prefix, rule := range table {
		out.Server.Proxy[prefix] = proxyEntry{
			Target:       rule.Target,
			ChangeOrigin: rule.ChangeOrigin,
			Rewrite:      "^" + rule.PathPrefix + " -> " + rule.Rewrite(rule.PathPrefix),
		}
	}
	return out
}
