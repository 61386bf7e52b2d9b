package internal

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment variables that set config properties,
// e.g. FILECONTENTS_SOURCE_FILE_PATH.
const EnvPrefix = "FILECONTENTS_"

var envKeys = map[string]string{
	"sourcefilepath":    FieldSourcePath,
	"fileregex":         FieldFileRegex,
	"filecontentsregex": FieldFileContentsRegex,
	"failonemptyfile":   FieldFailOnEmptyFile,
}

// envKey maps FILECONTENTS_FILE_CONTENTS_REGEX to fileContentsRegex. Unknown
// variables map to "" and are dropped.
func envKey(s string) string {
	k := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "_", ""))
	return envKeys[k]
}

// LoadConfig layers, lowest first: the YAML file at path (skipped when path is
// empty), FILECONTENTS_* environment variables, then overrides keyed by
// property name.
func LoadConfig(path string, overrides map[string]interface{}) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
