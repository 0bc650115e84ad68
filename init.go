package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const skillTemplate = `---
name: proftree
description: >
  Scope profiling traces: reconstruct call trees from timestamped scope samples,
  per-scope timing statistics, hot scopes, frame-time regressions.
allowed-tools: Bash, Read, Grep, Glob
---

# Scope Trace Analysis

Analyze scope-profiler traces (JSON with "totalDuration" and "profiles") with
` + "`{{PROFTREE_PATH}}`" + ` (a Go binary). Run ` + "`{{PROFTREE_PATH}} --help`" + ` for the full
command and flag reference. Times in the trace are microseconds.

## Workflow

1. **Triage**: ` + "`{{PROFTREE_PATH}} info trace.json`" + `: sample count, depth, top scopes.
2. **Tree**: ` + "`{{PROFTREE_PATH}} tree trace.json --depth 4 --min-pct 1`" + `
3. **One scope**: ` + "`{{PROFTREE_PATH}} tree trace.json --scope Renderer`" + `
4. **Hottest path**: ` + "`{{PROFTREE_PATH}} trace trace.json`" + `
5. **Callers**: ` + "`{{PROFTREE_PATH}} callers trace.json -s Flush`" + `
6. **Per-name stats**: ` + "`{{PROFTREE_PATH}} flat trace.json --sort total`" + `
7. **Compare**: ` + "`{{PROFTREE_PATH}} diff before.json after.json --min-delta 0.5`" + `
8. **CI gate**: ` + "`{{PROFTREE_PATH}} hot trace.json --assert-below 30`" + `: exits 1 if the top scope's self% >= threshold.

## Interpretation

- Tree lines read ` + "`name 1.2345ms 40.00% (12.00%)`" + `: duration, share of the parent, share of the trace.
- **Self% ≈ Total%** → the scope itself is the cost.
- **Total% >> Self%** → drill into ` + "`tree --scope`" + ` to find the real cost.
- Quote specific numbers.
`

// agent skill directories relative to a base dir (home or project root)
var agentSkillDirs = map[string]string{
	"claude": filepath.Join(".claude", "skills", "proftree"),
	"codex":  filepath.Join(".agents", "skills", "proftree"),
}

type initOpts struct {
	force   bool
	project bool
	claude  bool
	codex   bool
	stdout  bool
}

// renderSkill fills the template with the path to this binary.
func renderSkill(selfPath string) string {
	return strings.ReplaceAll(skillTemplate, "{{PROFTREE_PATH}}", selfPath)
}

func cmdInit(stdout, stderr io.Writer, opts initOpts) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot determine proftree path: %w", err)
	}
	selfPath, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return fmt.Errorf("cannot resolve proftree path: %w", err)
	}
	content := renderSkill(selfPath)

	if opts.stdout {
		fmt.Fprint(stdout, content)
		return nil
	}

	var baseDir string
	if opts.project {
		baseDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
	} else {
		baseDir, err = os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
	}
	return installSkill(stderr, baseDir, content, opts)
}

func installSkill(stderr io.Writer, baseDir, content string, opts initOpts) error {
	targets := resolveTargets(baseDir, opts.claude, opts.codex)
	if len(targets) == 0 {
		return errors.New("no agent configuration found (neither .claude nor .agents exists); use --claude or --codex to create one explicitly")
	}
	for _, t := range targets {
		path, err := writeSkill(baseDir, t, content, opts.force)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Skill installed: %s\n", path)
	}
	return nil
}

// resolveTargets decides which agent directories to install to.
// If explicit flags are set, use those (creating dirs as needed).
// Otherwise auto-detect which agent config dirs exist under baseDir.
func resolveTargets(baseDir string, claude, codex bool) []string {
	if claude || codex {
		var targets []string
		if claude {
			targets = append(targets, "claude")
		}
		if codex {
			targets = append(targets, "codex")
		}
		return targets
	}

	var targets []string
	for _, agent := range []string{"claude", "codex"} {
		// The root config dir is the first path component (e.g. ".claude" or ".agents")
		root := strings.SplitN(agentSkillDirs[agent], string(filepath.Separator), 2)[0]
		if _, err := os.Stat(filepath.Join(baseDir, root)); err == nil {
			targets = append(targets, agent)
		}
	}
	return targets
}

func writeSkill(baseDir, agent, content string, force bool) (string, error) {
	skillDir := filepath.Join(baseDir, agentSkillDirs[agent])
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		return "", fmt.Errorf("cannot create directory %s: %w", skillDir, err)
	}
	skillPath := filepath.Join(skillDir, "SKILL.md")
	if _, err := os.Stat(skillPath); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", skillPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := os.WriteFile(skillPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("cannot write %s: %w", skillPath, err)
	}
	return skillPath, nil
}
