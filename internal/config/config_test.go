package config

import (
	"path/filepath"
	"testing"

	"github.com/graphragio/gateway/internal/core/domain"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.APIPort != "8012" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.CommunityLevel != 2 {
		t.Fatalf("CommunityLevel = %d", cfg.CommunityLevel)
	}
	if !cfg.ShowReferences {
		t.Fatalf("ShowReferences should default to true")
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("GRAPHRAG_SHOW_REFERENCES", "false")
	t.Setenv("GRAPHRAG_COMMUNITY_LEVEL", "4")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.APIPort != "9000" {
		t.Fatalf("APIPort = %q", cfg.APIPort)
	}
	if cfg.ShowReferences {
		t.Fatalf("ShowReferences should be false")
	}
	if cfg.CommunityLevel != 4 {
		t.Fatalf("CommunityLevel = %d", cfg.CommunityLevel)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("GRAPHRAG_COMMUNITY_LEVEL", "not-a-number")
	t.Setenv("GRAPHRAG_SHOW_REFERENCES", "maybe")

	cfg := Load()
	if cfg.CommunityLevel != 2 {
		t.Fatalf("CommunityLevel = %d, want fallback", cfg.CommunityLevel)
	}
	if !cfg.ShowReferences {
		t.Fatalf("ShowReferences should fall back to true")
	}
}

func TestCORSOriginList(t *testing.T) {
	cfg := Config{CORSOrigins: "https://a.example.com, https://b.example.com,"}
	origins := cfg.CORSOriginList()
	if len(origins) != 2 || origins[0] != "https://a.example.com" || origins[1] != "https://b.example.com" {
		t.Fatalf("origins = %v", origins)
	}

	if got := Load().CORSOrigins; got != "*" {
		t.Fatalf("CORSOrigins default = %q", got)
	}
}

func TestIndexDefsSingleIndex(t *testing.T) {
	cfg := Config{RootDir: "/data/project", DataDir: "/data/project/out"}
	defs, err := cfg.IndexDefs()
	if err != nil {
		t.Fatalf("IndexDefs() error = %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "default" || defs[0].Root != "/data/project" || defs[0].Data != "/data/project/out" {
		t.Fatalf("defs = %+v", defs)
	}
}

func TestIndexDefsMultiIndex(t *testing.T) {
	cfg := Config{Indexes: "demo=/data/demo, wiki=/data/wiki:/data/wiki/artifacts"}
	defs, err := cfg.IndexDefs()
	if err != nil {
		t.Fatalf("IndexDefs() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("defs = %+v", defs)
	}
	if defs[0].Name != "demo" || defs[0].Root != "/data/demo" || defs[0].Data != "" {
		t.Fatalf("first def = %+v", defs[0])
	}
	if defs[1].Name != "wiki" || defs[1].Data != "/data/wiki/artifacts" {
		t.Fatalf("second def = %+v", defs[1])
	}
}

func TestIndexDefsMakePathsAbsolute(t *testing.T) {
	cfg := Config{RootDir: "project", DataDir: "project/out"}
	defs, err := cfg.IndexDefs()
	if err != nil {
		t.Fatalf("IndexDefs() error = %v", err)
	}
	if !filepath.IsAbs(defs[0].Root) || !filepath.IsAbs(defs[0].Data) {
		t.Fatalf("paths should be absolute, got %+v", defs[0])
	}

	cfg = Config{Indexes: "demo=rel/demo:rel/demo/out"}
	defs, err = cfg.IndexDefs()
	if err != nil {
		t.Fatalf("IndexDefs() error = %v", err)
	}
	if !filepath.IsAbs(defs[0].Root) || !filepath.IsAbs(defs[0].Data) {
		t.Fatalf("multi-index paths should be absolute, got %+v", defs[0])
	}
}

func TestIndexDefsMalformed(t *testing.T) {
	for _, spec := range []string{"justaname", "=root", "name="} {
		cfg := Config{Indexes: spec}
		if _, err := cfg.IndexDefs(); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("spec %q: want ErrInvalidInput, got %v", spec, err)
		}
	}
}
