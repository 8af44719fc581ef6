package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ttskit/claude-tts/pkg/tts"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the audio cache",
	Long: `The cache index is held by the daemon while it runs; stop the
daemon before using these commands.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached audio, most recently used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := tts.NewPaths()
		if err != nil {
			return err
		}
		index, err := tts.OpenIndex(paths.IndexDir())
		if err != nil {
			return fmt.Errorf("open cache index: %w", err)
		}
		defer index.Close()

		entries, err := index.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(dimStyle.Render("cache is empty"))
			return nil
		}

		var total int64
		for _, e := range entries {
			total += e.Size
		}
		fmt.Printf("%s %d entries, %s\n\n",
			labelStyle.Render("cache:"), len(entries), humanBytes(total))
		for _, e := range entries {
			fmt.Printf("%s  %8s  %s  %s\n",
				dimStyle.Render(short(e.Key)),
				humanBytes(e.Size),
				e.LastAccess.Format("2006-01-02 15:04"),
				preview(e.Text, 60))
		}
		return nil
	},
}

var flagMaxSizeMB int64

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Evict least recently used entries above the size limit",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := tts.NewPaths()
		if err != nil {
			return err
		}
		cache, err := tts.NewCache(paths.CacheDir())
		if err != nil {
			return err
		}
		index, err := tts.OpenIndex(paths.IndexDir())
		if err != nil {
			return fmt.Errorf("open cache index: %w", err)
		}
		defer index.Close()

		victims, err := index.Prune(flagMaxSizeMB << 20)
		if err != nil {
			return err
		}
		var freed int64
		for _, v := range victims {
			if err := cache.Remove(v.Key); err != nil {
				return fmt.Errorf("remove %s: %w", v.Key, err)
			}
			if err := index.Delete(v.Key); err != nil {
				return err
			}
			freed += v.Size
		}
		fmt.Printf("%s %d entries, %s freed\n",
			labelStyle.Render("pruned:"), len(victims), humanBytes(freed))
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().Int64Var(&flagMaxSizeMB, "max-size", 100, "cache size limit in MB")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func short(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
