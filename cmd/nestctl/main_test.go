package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const testScene = `
nodes:
  - name: knight
    position: [10, 0, 0]
    joints:
      - name: hand
        position: [0, 1, 0]
  - name: sword
    parent: knight
    joint: hand
    position: [1, 0, 0]
  - name: lost
    parent: 0b8a9f43-0b5d-4c8e-9a43-6d1a1c2f6e10
`

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(testScene), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunTable(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{writeScene(t)}, nil, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[0], "JOINTS") || !strings.Contains(lines[1], "hand") {
		t.Errorf("knight row = %q, want its joints listed", lines[1])
	}
	if !strings.Contains(lines[2], "(11, 1, 0)") || !strings.Contains(lines[2], "ok") {
		t.Errorf("sword row = %q", lines[2])
	}
	if !strings.Contains(lines[3], "parent-not-found") {
		t.Errorf("lost row = %q", lines[3])
	}
}

func TestRunYAMLSubtreeFromStdin(t *testing.T) {
	var out bytes.Buffer
	args := []string{"--format", "yaml", "--node", "knight", "-"}
	if err := run(args, strings.NewReader(testScene), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var rows []row
	if err := yaml.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want knight and sword", len(rows))
	}
	if rows[0].Name != "knight" || rows[1].Name != "sword" {
		t.Errorf("rows = %q, %q", rows[0].Name, rows[1].Name)
	}
	if len(rows[0].Joints) != 1 || rows[0].Joints[0] != "hand" {
		t.Errorf("knight joints = %q, want [hand]", rows[0].Joints)
	}
	if rows[1].Joints != nil {
		t.Errorf("sword joints = %q, want none", rows[1].Joints)
	}
	if rows[1].Depth != 1 || rows[1].Parent != "knight" {
		t.Errorf("sword depth = %d parent = %q", rows[1].Depth, rows[1].Parent)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeScene(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no file", nil, "exactly one scene file"},
		{"bad format", []string{"--format", "json", path}, "unknown format"},
		{"missing node", []string{"--node", "ghost", path}, "no node named"},
		{"missing file", []string{filepath.Join(t.TempDir(), "nope.yaml")}, "no such file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, nil, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
