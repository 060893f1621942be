package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/parity-cli/internal/core/domain"
)

var runsOpts struct {
	limit       int
	json        bool
	format      string
	output      string
	minSeverity string
	yes         bool
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse stored comparison runs",
	Long:  `List, show and delete runs stored with 'parity compare --save'.`,
	RunE:  runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, most recent first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored run",
	Long:  `Render a stored run. The ID may be shortened to a unique prefix of at least four characters.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	for _, c := range []*cobra.Command{runsCmd, runsListCmd} {
		c.Flags().IntVarP(&runsOpts.limit, "limit", "n", 20, "maximum number of runs (0 = all)")
		c.Flags().BoolVar(&runsOpts.json, "json", false, "output as JSON")
	}
	runsShowCmd.Flags().StringVarP(&runsOpts.format, "format", "f", "text", "report format (text, json)")
	runsShowCmd.Flags().StringVarP(&runsOpts.output, "output", "o", "", "write the report to a file")
	runsShowCmd.Flags().StringVar(&runsOpts.minSeverity, "min-severity", string(domain.SeverityMinor), "lowest severity listed in text reports")
	runsDeleteCmd.Flags().BoolVarP(&runsOpts.yes, "yes", "y", false, "do not ask for confirmation")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runService == nil {
		return errors.New("run storage not configured")
	}

	infos, err := runService.List(cmd.Context(), runsOpts.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if runsOpts.json {
		if infos == nil {
			infos = []domain.RunInfo{}
		}
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		cmd.Println("No stored runs.")
		return nil
	}

	cmd.Printf("%-8s  %-16s  %6s  %6s  %s\n", "ID", "CREATED", "QI", "COV", "SOURCE -> TARGET")
	for _, info := range infos {
		cmd.Printf("%-8s  %-16s  %6.3f  %6.3f  %s -> %s\n",
			shortID(info.ID),
			info.CreatedAt.Local().Format("2006-01-02 15:04"),
			info.QualityIndex, info.Coverage,
			info.SourceURI, info.TargetURI)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run storage not configured")
	}

	minSeverity, ok := domain.ParseSeverity(runsOpts.minSeverity)
	if !ok {
		return fmt.Errorf("%w: unknown severity %q", domain.ErrInvalidInput, runsOpts.minSeverity)
	}

	run, err := runService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	return writeReport(cmd, run, runsOpts.format, runsOpts.output, ReportOptions{MinSeverity: minSeverity})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	if runService == nil {
		return errors.New("run storage not configured")
	}

	if !runsOpts.yes && term.IsTerminal(int(os.Stdin.Fd())) {
		cmd.Printf("Delete run %s? [y/N]: ", args[0])
		if !confirm(bufio.NewReader(os.Stdin)) {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := runService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func confirm(reader *bufio.Reader) bool {
	input, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
