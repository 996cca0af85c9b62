package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const cliBundle = `version: 1
textures:
  - id: tex-body
    name: BodyTex
    fill: "#ffffff"
materials:
  - id: mat-body
    name: Body
    shader: Generic
    textures:
      _MainTex: tex-body
    colors:
      _EmissionColor: "#202020"
clips:
  - id: clip-blink
    name: Blink
    length: 1
    object_curves:
      - path: Body
        component: MeshRenderer
        property: m_Materials.Array.data[0]
        keyframes:
          - {time: 0, value: mat-body}
controllers:
  - id: ctrl-fx
    name: FX
    layers:
      - name: Base
        weight: 1
        state_machine:
          name: Base
          states:
            - name: Blink
              motion: {kind: clip, id: clip-blink}
              speed: 1
rigs:
  - id: rig-avatar
    name: Avatar
    path: Src/Avatar.prefab
    root:
      name: Avatar
      players:
        - controller: ctrl-fx
      children:
        - name: Body
          renderers:
            - type: MeshRenderer
              materials: [mat-body]
`

type cliEnv struct {
	baseDir    string
	configPath string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("RIGCONVERT_STORE", "")
	configPath := filepath.Join(base, "config.toml")
	body := fmt.Sprintf(`[paths]
store_path = %q
log_dir = %q

[conversion]
workers = 2

[logging]
level = "warn"
run_logs = true
`, filepath.Join(base, "store", "assets.db"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{baseDir: base, configPath: configPath}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, errOut, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("rigconvert %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func (e *cliEnv) importBundle(t *testing.T) {
	t.Helper()

	path := filepath.Join(e.baseDir, "avatar.yaml")
	if err := os.WriteFile(path, []byte(cliBundle), 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	out := e.mustRun(t, "import", path)
	if !strings.Contains(out, "Imported 5 assets") {
		t.Fatalf("unexpected import output:\n%s", out)
	}
}

func TestImportInspectConvert(t *testing.T) {
	env := setupCLIEnv(t)
	env.importBundle(t)

	out := env.mustRun(t, "inspect", "Src/Avatar.prefab")
	if !strings.Contains(out, "Will convert 1 materials, 1 clips, 0 blend trees, 1 controllers") {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}

	out = env.mustRun(t, "convert", "--dry-run", "--quiet", "rig-avatar")
	if !strings.Contains(out, "Dry run") {
		t.Fatalf("expected dry run notice:\n%s", out)
	}
	out = env.mustRun(t, "list", "--kind", "material")
	if strings.Count(out, "Body") != 1 {
		t.Fatalf("dry run wrote materials:\n%s", out)
	}

	out = env.mustRun(t, "convert", "--json", "rig-avatar")
	var summary convertSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.RigPath != "Assets/Converted/Avatar (Converted)" {
		t.Fatalf("rig path = %q", summary.RigPath)
	}
	if len(summary.Converted) != 4 || summary.Rebinds != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	runLog := filepath.Join(env.baseDir, "logs", "runs", summary.RunID+".jsonl")
	if info, err := os.Stat(runLog); err != nil || info.Size() == 0 {
		t.Fatalf("expected run log at %s: %v", runLog, err)
	}

	out = env.mustRun(t, "show", summary.RigPath)
	if !strings.Contains(out, "Avatar (Converted)") || !strings.Contains(out, "# Rig") {
		t.Fatalf("unexpected show output:\n%s", out)
	}
	out = env.mustRun(t, "list", "--under", "Assets/Converted")
	if !strings.Contains(out, "Materials/Body_mat-body.mat") {
		t.Fatalf("converted material missing from listing:\n%s", out)
	}

	exportDir := filepath.Join(env.baseDir, "export")
	env.mustRun(t, "export", summary.RigPath, "--out", exportDir)
	if _, err := os.Stat(filepath.Join(exportDir, "bundle.yaml")); err != nil {
		t.Fatalf("export did not write bundle: %v", err)
	}
}

func TestConvertUnknownRig(t *testing.T) {
	env := setupCLIEnv(t)
	_, _, err := env.run(t, "convert", "missing-rig")
	if err == nil {
		t.Fatal("expected error for unknown rig")
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code = %d, want 2 (%v)", code, err)
	}
}

func TestUnknownAssetSuggestsClosestPath(t *testing.T) {
	env := setupCLIEnv(t)
	env.importBundle(t)
	_, _, err := env.run(t, "show", "Src/Avatar")
	if err == nil {
		t.Fatal("expected error for partial path")
	}
	if !strings.Contains(err.Error(), `did you mean "Src/Avatar.prefab"`) {
		t.Fatalf("missing suggestion: %v", err)
	}
}

func TestDoctor(t *testing.T) {
	env := setupCLIEnv(t)
	out := env.mustRun(t, "doctor")
	for _, want := range []string{"Configuration:", "Asset store:", "Store lock:", "[OK]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.baseDir, "new", "config.toml")
	out := env.mustRun(t, "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output: %s", out)
	}
	if _, _, err := env.run(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}
	out = env.mustRun(t, "config", "validate")
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %s", out)
	}
	out = env.mustRun(t, "config", "show")
	if !strings.Contains(out, "target_shader") {
		t.Fatalf("unexpected config show output: %s", out)
	}
}

func TestInvalidConfigIsConfigurationError(t *testing.T) {
	env := setupCLIEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[conversion]\ntarget_shader = \"Standard\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := env.run(t, "list")
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if code := exitCode(err); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}
