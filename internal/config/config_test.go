package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/danmuck/docwire/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadOverlaysDefinedKeys(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "docwire.toml", `
schemas = ["schemas/article.yaml"]

[codec]
max_depth = 32

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Codec.MaxDepth != 32 {
		t.Fatalf("expected max_depth 32, got %d", cfg.Codec.MaxDepth)
	}
	if cfg.Frame != def.Frame || cfg.Server.Addr != def.Server.Addr {
		t.Fatalf("undefined keys should keep defaults: %+v", cfg)
	}
	if cfg.LogLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", cfg.LogLevel())
	}
	want := filepath.Join(dir, "schemas", "article.yaml")
	if len(cfg.Schemas) != 1 || cfg.Schemas[0] != want {
		t.Fatalf("expected schema path %q, got %v", want, cfg.Schemas)
	}
	if got := cfg.FrameLimits(); got.MaxPayloadBytes != def.Frame.MaxPayloadBytes {
		t.Fatalf("unexpected frame limits: %+v", got)
	}
	if len(cfg.CodecOptions()) != 1 {
		t.Fatalf("expected one codec option")
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	cases := map[string]string{
		"unknown key": "[codec]\nmax_dpth = 3\n",
		"zero depth":  "[codec]\nmax_depth = 0\n",
		"bad level":   "[log]\nlevel = \"loud\"\n",
		"empty addr":  "[server]\naddr = \"\"\n",
		"syntax":      "[codec\n",
	}
	for name, body := range cases {
		path := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".toml", body)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestTemplateLoadsAsDefault(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "docwire.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing config to be protected")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	def := Default()
	if cfg.Codec != def.Codec || cfg.Frame != def.Frame || cfg.Log != def.Log || cfg.Server.Addr != def.Server.Addr {
		t.Fatalf("template drifted from defaults: %+v", cfg)
	}
}

func TestRegistryLoadsSchemaFiles(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	writeFile(t, dir, "article.yaml", `
schemas:
  - name: Article
    fields:
      - name: title
        kind: text
      - name: sections
        kind: chunks
        ref: Article
`)
	path := writeFile(t, dir, "docwire.toml", "schemas = [\"article.yaml\"]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, ok := reg.Resolve("Article"); !ok {
		t.Fatalf("expected Article to be registered")
	}
	if _, ok := reg.Resolve(schema.DefaultName); !ok {
		t.Fatalf("expected builtin %s schema", schema.DefaultName)
	}

	cfg.Schemas = []string{filepath.Join(dir, "missing.yaml")}
	if _, err := cfg.Registry(); err == nil {
		t.Fatalf("expected missing schema file error")
	}
}

func TestLoadOrDefaultFallsBackOnlyForDefaultPath(t *testing.T) {
	testlog.Start(t)
	chdirForTest(t, t.TempDir())
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := LoadOrDefault("elsewhere.toml"); err == nil {
		t.Fatalf("expected explicit missing path to fail")
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
