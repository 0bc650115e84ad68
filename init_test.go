package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRenderSkill(t *testing.T) {
	out := renderSkill("/usr/local/bin/proftree")
	if strings.Contains(out, "{{PROFTREE_PATH}}") {
		t.Error("placeholder left in rendered skill")
	}
	if !strings.Contains(out, "`/usr/local/bin/proftree info trace.json`") {
		t.Error("binary path not substituted")
	}
}

func TestResolveTargets(t *testing.T) {
	base := t.TempDir()
	if got := resolveTargets(base, false, false); len(got) != 0 {
		t.Errorf("empty dir: got %v", got)
	}
	if err := os.Mkdir(filepath.Join(base, ".agents"), 0755); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"codex"}, resolveTargets(base, false, false)); diff != "" {
		t.Errorf("auto-detect (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"claude", "codex"}, resolveTargets(base, true, true)); diff != "" {
		t.Errorf("explicit (-want +got):\n%s", diff)
	}
}

func TestInstallSkill(t *testing.T) {
	base := t.TempDir()
	var stderr bytes.Buffer
	opts := initOpts{claude: true}

	if err := installSkill(&stderr, base, "v1", opts); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(base, ".claude", "skills", "proftree", "SKILL.md")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1" {
		t.Errorf("content = %q", data)
	}
	if !strings.Contains(stderr.String(), "Skill installed: "+path) {
		t.Errorf("stderr = %q", stderr.String())
	}

	if err := installSkill(&stderr, base, "v2", opts); err == nil {
		t.Error("expected error without --force")
	}
	opts.force = true
	if err := installSkill(&stderr, base, "v2", opts); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("content after --force = %q", data)
	}
}

func TestInstallSkillNoTargets(t *testing.T) {
	var stderr bytes.Buffer
	if err := installSkill(&stderr, t.TempDir(), "x", initOpts{}); err == nil {
		t.Error("expected error when no agent directory exists")
	}
}
