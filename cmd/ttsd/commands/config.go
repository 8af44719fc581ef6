package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/ttskit/claude-tts/pkg/tts"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show TTS configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Prints the configuration the daemon would use right now: the file
at ~/.claude/tts_config.json merged over the built-in defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := tts.NewPaths()
		if err != nil {
			return err
		}

		cfg, loadErr := tts.LoadConfig(paths.ConfigFile())

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Println(labelStyle.Render("config: ") + dimStyle.Render(paths.ConfigFile()))
		if loadErr != nil {
			fmt.Println(dimStyle.Render(fmt.Sprintf("(file ignored: %v)", loadErr)))
		}
		fmt.Print(string(out))
		return nil
	},
}

var configVoicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List known voices, styles, modes and languages",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(labelStyle.Render("voices:    ") + strings.Join(tts.Voices, ", "))
		fmt.Println(labelStyle.Render("styles:    ") + strings.Join(sortedKeys(tts.Styles), ", "))
		fmt.Println(labelStyle.Render("modes:     ") + strings.Join(sortedKeys(tts.Modes), ", "))
		fmt.Println(labelStyle.Render("languages: ") + strings.Join(sortedKeys(tts.Languages), ", "))
	},
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configVoicesCmd)
	rootCmd.AddCommand(configCmd)
}
