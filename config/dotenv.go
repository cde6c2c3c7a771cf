package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/file"
)

// LoadDotEnv reads KEY=VALUE pairs from path into the process environment and
// returns the names it set. Variables already present in the environment are
// left untouched. A missing file is not an error.
func LoadDotEnv(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := file.Provider(path).ReadBytes()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	vars, err := dotenv.Parser().Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var set []string
	for key, v := range vars {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(v)); err != nil {
			return set, fmt.Errorf("set %s: %w", key, err)
		}
		set = append(set, key)
	}
	sort.Strings(set)
	return set, nil
}
