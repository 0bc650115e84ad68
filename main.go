// proftree: reconstruct call trees from scope-profiler traces.
//
// Usage:
//
//	proftree [--tree] <file>
//	proftree <command> [flags] <file>
//
// Input is JSON: {"totalDuration": N, "profiles": [{"name", "timestamp",
// "duration"}, ...]} with times in microseconds. A .gz suffix is
// decompressed; "-" reads stdin.
//
// Commands: tree, flat, hot, trace, callers, collapse, filter, diff, info,
// export, script, init
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

func initLogger(w io.Writer, verbose bool) {
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	var (
		verbose  bool
		treeMode bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "proftree [--tree] <file>",
		Short: "Reconstruct call trees from scope-profiler traces",
		Long: `proftree reads a flat trace of timed scopes and either rebuilds the call
hierarchy (--tree) or aggregates the scopes by name (default).

Input: JSON {"totalDuration": N, "profiles": [{"name", "timestamp", "duration"}]}
with times in microseconds. A .gz suffix is decompressed; "-" reads stdin.

A file named like a command (info, trace, diff, ...) is taken as that
command; pass it as ./info or after "--" (proftree -- info).`,
		Example: `  proftree trace.json
  proftree --tree trace.json
  proftree tree trace.json --scope Renderer --depth 3
  proftree hot trace.json --assert-below 30
  proftree diff before.json after.json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogger(cmd.ErrOrStderr(), verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			if treeMode {
				return cmdTree(cmd.OutOrStdout(), tr, "", treeOpts{}, asJSON)
			}
			return cmdFlat(cmd.OutOrStdout(), tr, "first", 0, asJSON)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
	cmd.Flags().BoolVar(&treeMode, "tree", false, "reconstruct and print the call tree instead of per-name statistics")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	cmd.AddCommand(
		newCmdTree(),
		newCmdFlat(),
		newCmdHot(),
		newCmdTrace(),
		newCmdCallers(),
		newCmdCollapse(),
		newCmdFilter(),
		newCmdDiff(),
		newCmdInfo(),
		newCmdExport(),
		newCmdScript(),
		newCmdInit(),
	)
	return cmd
}

// ---------------------------------------------------------------------------
// Subcommands
// ---------------------------------------------------------------------------

func newCmdTree() *cobra.Command {
	var (
		scope  string
		opts   treeOpts
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Reconstruct the call tree and print it with percentages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdTree(cmd.OutOrStdout(), tr, scope, opts, asJSON)
		},
	}
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "print only subtrees whose scope name contains this substring")
	cmd.Flags().IntVar(&opts.maxDepth, "depth", 0, "max levels to print (0 = unlimited)")
	cmd.Flags().Float64Var(&opts.minPct, "min-pct", 0, "hide nodes below this % of total")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func newCmdFlat() *cobra.Command {
	var (
		sortKey string
		top     int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "flat <file>",
		Short: "Aggregate scopes by name: average duration, calls, share of total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdFlat(cmd.OutOrStdout(), tr, sortKey, top, asJSON)
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", "first", "order: first, name, total, avg, count")
	cmd.Flags().IntVar(&top, "top", 0, "limit output rows (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func newCmdHot() *cobra.Command {
	var (
		top         int
		assertBelow float64
	)
	cmd := &cobra.Command{
		Use:   "hot <file>",
		Short: "Rank scopes by self time and total time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdHot(cmd.OutOrStdout(), tr, top, assertBelow)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "limit output rows (0 = all)")
	cmd.Flags().Float64Var(&assertBelow, "assert-below", 0, "exit 1 if the top scope's self% >= this value (for CI gates)")
	return cmd
}

func newCmdTrace() *cobra.Command {
	var (
		scope  string
		minPct float64
	)
	cmd := &cobra.Command{
		Use:   "trace <file>",
		Short: "Follow the hottest path down the call tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdTrace(cmd.OutOrStdout(), tr, scope, minPct)
		},
	}
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "start at scopes whose name contains this substring")
	cmd.Flags().Float64Var(&minPct, "min-pct", 0, "stop below this % of total")
	return cmd
}

func newCmdCallers() *cobra.Command {
	var (
		scope    string
		maxDepth int
		minPct   float64
	)
	cmd := &cobra.Command{
		Use:   "callers <file>",
		Short: "Show the enclosing scopes of a scope, innermost first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdCallers(cmd.OutOrStdout(), tr, scope, maxDepth, minPct)
		},
	}
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "scope name substring (required)")
	cmd.Flags().IntVar(&maxDepth, "depth", 4, "max levels to print (0 = unlimited)")
	cmd.Flags().Float64Var(&minPct, "min-pct", 1.0, "hide entries below this % of total")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newCmdCollapse() *cobra.Command {
	return &cobra.Command{
		Use:   "collapse <file>",
		Short: "Emit collapsed stacks weighted by self time in microseconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdCollapse(cmd.OutOrStdout(), tr)
		},
	}
}

func newCmdFilter() *cobra.Command {
	var (
		scope          string
		includeCallers bool
	)
	cmd := &cobra.Command{
		Use:   "filter <file>",
		Short: "Emit collapsed stacks passing through a scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdFilter(cmd.OutOrStdout(), tr, scope, includeCallers)
		},
	}
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "scope name substring (required)")
	cmd.Flags().BoolVar(&includeCallers, "include-callers", false, "keep the enclosing scopes in each stack")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func newCmdDiff() *cobra.Command {
	var (
		minDelta float64
		top      int
	)
	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two traces: REGRESSION / IMPROVEMENT / NEW / GONE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := openTrace(args[0])
			if err != nil {
				return err
			}
			after, err := openTrace(args[1])
			if err != nil {
				return err
			}
			return cmdDiff(cmd.OutOrStdout(), before, after, minDelta, top)
		},
	}
	cmd.Flags().Float64Var(&minDelta, "min-delta", 0.5, "hide entries below this % change")
	cmd.Flags().IntVar(&top, "top", 0, "limit rows per section (0 = all)")
	return cmd
}

func newCmdInfo() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "One-shot triage: trace summary and top scopes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdInfo(cmd.OutOrStdout(), tr, top)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "limit hot scope rows (0 = all)")
	return cmd
}

func newCmdExport() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the call tree as a gzipped pprof profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdExport(cmd.OutOrStdout(), tr, out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default stdout)")
	return cmd
}

func newCmdScript() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file> <script.star>",
		Short: "Run a Starlark script against the trace",
		Long: `Run a Starlark script with these globals:

  total    total duration in microseconds
  samples  list of struct(name, start, duration) in file order
  root     struct(name, start, duration, self, children) of the call tree
  emit(*values)  print values space-separated on one line`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTrace(args[0])
			if err != nil {
				return err
			}
			return cmdScript(cmd.OutOrStdout(), tr, args[1])
		},
	}
}

func newCmdInit() *cobra.Command {
	var opts initOpts
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Install an agent skill describing proftree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmdInit(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.project, "project", false, "install into the current directory instead of $HOME")
	cmd.Flags().BoolVar(&opts.claude, "claude", false, "install for Claude (.claude/skills)")
	cmd.Flags().BoolVar(&opts.codex, "codex", false, "install for Codex (.agents/skills)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "overwrite an existing SKILL.md")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the skill instead of installing it")
	return cmd
}
