package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage comparison settings",
	Long: `View and configure the thresholds, metrics and limits used by 'parity compare'.

Settings are stored in config.toml in the configuration directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by its configuration key.

Lists are comma-separated. Metric weights are given as name=weight pairs and
must sum to 1; setting metrics.enabled resets the weights to equal shares.
Metric options use metrics.config.<metric>.<option>.

Examples:
  parity settings set align.window 12
  parity settings set metrics.enabled meteor,bleu
  parity settings set metrics.weights meteor=0.7,bleu=0.3
  parity settings set metrics.config.bleu.max_n 2
  parity settings set run.timeout 2m`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	RunE:  runSettingsReset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by 'settings set'",
	RunE:  runSettingsKeys,
}

func init() {
	for _, c := range []*cobra.Command{settingsCmd, settingsShowCmd} {
		c.Flags().BoolVar(&settingsJSON, "json", false, "output as JSON")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if settingsJSON {
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal settings: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Alignment]")
	cmd.Printf("  High threshold: %.2f\n", settings.HighThreshold)
	cmd.Printf("  Review threshold: %.2f\n", settings.ReviewThreshold)
	cmd.Printf("  Window: %d\n", settings.Window)
	cmd.Printf("  Table tolerance: %d\n", settings.TableTolerance)
	cmd.Println()

	cmd.Println("[Metrics]")
	for _, name := range settings.Metrics {
		cmd.Printf("  %s: weight %.2f%s\n", name, settings.Weight(name), formatMetricConfig(settings.GetMetricConfig(name)))
	}
	cmd.Println()

	cmd.Println("[Run]")
	cmd.Printf("  Workers: %d\n", settings.Workers)
	if settings.Timeout > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Timeout)
	} else {
		cmd.Println("  Timeout: none")
	}
	cmd.Println()

	cmd.Println("[Severity]")
	cmd.Printf("  Risk keywords: %s\n", strings.Join(settings.RiskKeywords, ", "))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	cmd.Println("Settings restored to defaults.")
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// formatMetricConfig renders metric options as " (k=v, ...)".
func formatMetricConfig(cfg map[string]any) string {
	if len(cfg) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, cfg[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
