package cli

import (
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported input formats",
	Long:  `List the extractor names accepted by --src-format and --tgt-format.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if len(extractorFormats) == 0 {
			cmd.Println("No extractors configured.")
			return
		}
		for _, name := range extractorFormats {
			cmd.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
