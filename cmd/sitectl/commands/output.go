package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readConfiguration 读取配置文档；.toml 先解成通用结构再走 JSON 解码，
// 以便复用 JSON 字段名与宽松解码规则
func readConfiguration(path string) (*domain.Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		var doc map[string]any
		if _, err := toml.Decode(string(raw), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, err
		}
	}
	var cfg domain.Configuration
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", path, err)
	}
	return &cfg, nil
}
