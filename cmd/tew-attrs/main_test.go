package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/robert-at-pretension-io/tew-attrs/internal/config"
	"github.com/robert-at-pretension-io/tew-attrs/internal/facts"
)

// workspace copies the sample listings into a fresh directory and makes it
// the working directory, so config discovery starts there.
func workspace(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
		if err != nil {
			t.Fatalf("read testdata %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	chdirForTest(t, dir)
	t.Setenv("HOME", dir)
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	a := &app{newLogger: func(bool) (*zap.Logger, error) { return zap.NewNop(), nil }}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitWritesDefaultConfig(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "", "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Created tew_attrs.json") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	cfg, err := config.LoadFile(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if len(cfg.Overrides) != 2 {
		t.Fatalf("expected built-in overrides in written config, got %v", cfg.Overrides)
	}
}

func TestInitKeepsExistingConfigUnlessConfirmed(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(`{"output": {"title": "Mine"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "n\n", "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Fatalf("expected abort, got:\n%s", out)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Mine") {
		t.Fatalf("config was overwritten")
	}

	if _, err := execute(t, "y\n", "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	data, _ = os.ReadFile(path)
	if strings.Contains(string(data), "Mine") {
		t.Fatalf("config should have been overwritten after confirmation")
	}
}

func TestBuildEndToEnd(t *testing.T) {
	dir := workspace(t, "Attribute_Names.txt", "Attribute_definitions.txt", "categorized.csv")
	cfg := config.DefaultConfig()
	cfg.Inputs.Categorized = "categorized.csv"
	if err := cfg.Save(filepath.Join(dir, config.FileName)); err != nil {
		t.Fatalf("save config: %v", err)
	}

	out, err := execute(t, "", "build", "--timing")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"Attributes: 5", "missing definition: 2", "Site written to"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{
		"attribute_definitions.csv",
		"attributes.json",
		"index.html",
		"category_Alignment.html",
		"category_Mental_Skills.html",
		"category_Physical.html",
		"timing.jsonl",
	} {
		if _, err := os.Stat(filepath.Join(dir, "output", name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}

	csvData, _ := os.ReadFile(filepath.Join(dir, "output", "attribute_definitions.csv"))
	if !strings.HasPrefix(string(csvData), "#,Name,Description,Category\n1,Strength,How strong the worker is.,\n") {
		t.Fatalf("unexpected CSV:\n%s", csvData)
	}
}

func TestExtractWithExplicitConfig(t *testing.T) {
	dir := workspace(t, "Attribute_Names.txt", "Attribute_definitions.txt")
	cfgPath := filepath.Join(dir, "custom.yaml")
	yamlCfg := "output:\n  dir: out\n  csv: attrs.csv\n  facts: \"\"\noverrides: {}\n"
	if err := os.WriteFile(cfgPath, []byte(yamlCfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "", "-c", cfgPath, "extract")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	// Without overrides 0x0136 keeps its mangled name and 0x0139 never appears
	if !strings.Contains(out, "Attributes: 4") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	csvData, err := os.ReadFile(filepath.Join(dir, "out", "attrs.csv"))
	if err != nil {
		t.Fatalf("read CSV: %v", err)
	}
	if !strings.Contains(string(csvData), "3,100,Loved by the crowd 100% of the time.,") {
		t.Fatalf("unexpected CSV:\n%s", csvData)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "attributes.json")); err == nil {
		t.Fatalf("snapshot should be disabled")
	}
}

func TestExtractMissingListingFails(t *testing.T) {
	workspace(t, "Attribute_Names.txt")
	if _, err := execute(t, "", "extract"); err == nil || !strings.Contains(err.Error(), "definitions listing") {
		t.Fatalf("expected definitions listing error, got %v", err)
	}
}

func TestBadConfigFails(t *testing.T) {
	dir := workspace(t)
	cfgPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(cfgPath, []byte(`{"extraction": {"emptyDefinition": "drop"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "", "--config", cfgPath, "extract"); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := workspace(t, "categorized.csv")

	if _, err := execute(t, "", "render"); err == nil {
		t.Fatalf("expected error when no CSV is given or configured")
	}

	out, err := execute(t, "", "render", "categorized.csv")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Site written to output") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	page, err := os.ReadFile(filepath.Join(dir, "output", "category_Physical.html"))
	if err != nil {
		t.Fatalf("read category page: %v", err)
	}
	if !strings.Contains(string(page), "Strength") || strings.Contains(string(page), "Charisma") {
		t.Fatalf("category page has the wrong rows:\n%s", page)
	}
}

func TestFactsSnapshotAndDelta(t *testing.T) {
	dir := workspace(t, "Attribute_Names.txt", "Attribute_definitions.txt")

	out, err := execute(t, "", "facts")
	if err != nil {
		t.Fatalf("facts: %v", err)
	}
	var snapshot facts.Tables
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		t.Fatalf("stdout is not a snapshot: %v\n%s", err, out)
	}
	if snapshot.Summary.Total != 5 {
		t.Fatalf("unexpected summary %+v", snapshot.Summary)
	}

	// An older snapshot that lacks Charisma and has a stale Speed row
	prev := snapshot
	prev.Attributes = nil
	for _, row := range snapshot.Attributes {
		switch row.Name {
		case "Charisma":
			continue
		case "Speed":
			row.Description = "Old text."
		}
		prev.Attributes = append(prev.Attributes, row)
	}
	prevData, _ := json.Marshal(prev)
	prevPath := filepath.Join(dir, "prev.json")
	if err := os.WriteFile(prevPath, prevData, 0644); err != nil {
		t.Fatalf("write previous snapshot: %v", err)
	}

	deltaPath := filepath.Join(dir, "delta.json")
	snapPath := filepath.Join(dir, "now.json")
	if _, err := execute(t, "", "facts", "-o", snapPath, "--delta-from", prevPath, "--delta-out", deltaPath); err != nil {
		t.Fatalf("facts delta: %v", err)
	}
	if _, err := os.Stat(snapPath); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	raw, err := os.ReadFile(deltaPath)
	if err != nil {
		t.Fatalf("read delta: %v", err)
	}
	var delta facts.Delta
	if err := json.Unmarshal(raw, &delta); err != nil {
		t.Fatalf("decode delta: %v", err)
	}
	added := map[string]bool{}
	for _, row := range delta.Added.Attributes {
		added[row.Name] = true
	}
	if len(delta.Added.Attributes) != 2 || !added["Charisma"] || !added["Speed"] {
		t.Fatalf("unexpected added rows %+v", delta.Added.Attributes)
	}
	if len(delta.Removed.Attributes) != 1 || delta.Removed.Attributes[0].Description != "Old text." {
		t.Fatalf("unexpected removed rows %+v", delta.Removed.Attributes)
	}
}

func TestFactsDeltaOutNeedsDeltaFrom(t *testing.T) {
	workspace(t, "Attribute_Names.txt", "Attribute_definitions.txt")
	if _, err := execute(t, "", "facts", "--delta-out", "delta.json"); err == nil {
		t.Fatalf("expected flag error")
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
