package cli

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/juryclean/internal/core"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the active column rules as YAML",
	Long: `Prints the column rules in effect, the built-in set with any --rules
file applied, in the YAML format --rules accepts. Use it as a starting point
for a custom rules file; an invalid file is reported with its problem.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	rs, err := cfg.Clean.RuleSet()
	if err != nil {
		return userError(err)
	}
	return core.WriteRules(cmd.OutOrStdout(), rs)
}
