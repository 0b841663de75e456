package cli

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/htfab/tt-multiplexer/pkg/floorplan"
	"github.com/htfab/tt-multiplexer/pkg/pipeline"
)

// inputExts are the file extensions offered for configuration and module lists.
var inputExts = []string{"yaml", "yml", "toml"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for ttlayout.

Besides subcommands and flags, the scripts complete --config and --modules
with YAML or TOML files, render --format with the output formats (one
comma-separated entry at a time) and tracks --table with the pin table names.

Bash:
  $ source <(ttlayout completion bash)

Zsh (with compinit enabled):
  $ ttlayout completion zsh > "${fpath[1]}/_ttlayout"

Fish:
  $ ttlayout completion fish > ~/.config/fish/completions/ttlayout.fish

PowerShell:
  PS> ttlayout completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches flag value completion to the root command and
// its subcommands. It must run after every subcommand is added.
func registerCompletions(root *cobra.Command) {
	for _, name := range []string{"config", "modules"} {
		_ = root.MarkPersistentFlagFilename(name, inputExts...)
	}
	_ = root.MarkPersistentFlagDirname("cache-url")

	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "render":
			_ = sub.RegisterFlagCompletionFunc("format", completeFormats)
		case "tracks":
			_ = sub.RegisterFlagCompletionFunc("table", completeTables)
		case "place":
			_ = sub.MarkFlagFilename("freeze", inputExts...)
		}
	}
}

// completeFormats offers the formats not yet listed in a comma-separated value.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, partial := "", toComplete
	if i := strings.LastIndexByte(toComplete, ','); i >= 0 {
		prefix, partial = toComplete[:i+1], toComplete[i+1:]
	}
	used := make(map[string]bool)
	for _, f := range strings.Split(prefix, ",") {
		used[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range slices.Sorted(maps.Keys(pipeline.ValidFormats)) {
		if !used[f] && strings.HasPrefix(f, partial) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func completeTables(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range slices.Sorted(maps.Keys((&floorplan.Pins{}).Tables())) {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
