package graphragcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/graphragio/gateway/internal/core/domain"
)

const settingsFileName = "settings.yaml"

// Settings is the subset of a GraphRAG project's settings.yaml the gateway
// needs: the chat model endpoint and where the indexing pipeline wrote its
// output.
type Settings struct {
	Models  map[string]ModelConfig  `yaml:"models"`
	Output  OutputConfig            `yaml:"output"`
	Outputs map[string]OutputConfig `yaml:"outputs"`

	CommunityReports struct {
		MaxLength int `yaml:"max_length"`
	} `yaml:"community_reports"`
}

type ModelConfig struct {
	Type     string `yaml:"type"`
	Model    string `yaml:"model"`
	APIBase  string `yaml:"api_base"`
	APIKey   string `yaml:"api_key"`
	Encoding string `yaml:"encoding_model"`
}

type OutputConfig struct {
	Type    string `yaml:"type"`
	BaseDir string `yaml:"base_dir"`
}

// Load parses <root>/settings.yaml. ${VAR} references are expanded from the
// environment the way the GraphRAG CLI does before parsing.
func Load(root string) (*Settings, error) {
	path := filepath.Join(root, settingsFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexNotReady, "load settings", err)
	}

	expanded := os.Expand(string(raw), func(key string) string {
		return os.Getenv(key)
	})

	var settings Settings
	if err := yaml.Unmarshal([]byte(expanded), &settings); err != nil {
		return nil, domain.WrapError(domain.ErrIndexNotReady, "load settings",
			fmt.Errorf("parse %s: %w", path, err))
	}
	return &settings, nil
}

// DefaultChatModel returns the default_chat_model entry, or the single
// configured model when only one exists.
func (s *Settings) DefaultChatModel() (ModelConfig, bool) {
	if model, ok := s.Models["default_chat_model"]; ok {
		return model, true
	}
	if len(s.Models) == 1 {
		for _, model := range s.Models {
			return model, true
		}
	}
	return ModelConfig{}, false
}

// DataDir resolves the output directory for an index: an explicit override
// wins, then output.base_dir, then the multi-output `outputs` map ("default"
// entry, or the sole entry when only one exists), then the GraphRAG default
// <root>/output. Relative base_dirs are made absolute against root.
func (s *Settings) DataDir(root, override string) string {
	if override != "" {
		return override
	}
	if base := strings.TrimSpace(s.Output.BaseDir); base != "" {
		return joinBase(root, base)
	}
	if base := strings.TrimSpace(s.outputsBaseDir()); base != "" {
		return joinBase(root, base)
	}
	return filepath.Join(root, "output")
}

func (s *Settings) outputsBaseDir() string {
	if out, ok := s.Outputs["default"]; ok {
		return out.BaseDir
	}
	if len(s.Outputs) == 1 {
		for _, out := range s.Outputs {
			return out.BaseDir
		}
	}
	return ""
}

func joinBase(root, base string) string {
	if filepath.IsAbs(base) {
		return base
	}
	return filepath.Join(root, base)
}
