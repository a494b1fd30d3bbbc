package config

import (
	"fmt"

	"github.com/joho/godotenv"
)

func LoadFromEnv() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return Load(FromEnviron())
}

// LoadFromFile reads a dotenv file and layers it under the process
// environment, so variables already set in the environment win.
func LoadFromFile(path string) (Config, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return Config{}, fmt.Errorf("read env file %s: %w", path, err)
	}
	return Load(layered(FromEnviron(), EnvMap(values)))
}

type layeredSource []EnvSource

func layered(sources ...EnvSource) EnvSource {
	return layeredSource(sources)
}

func (l layeredSource) Lookup(key string) (string, bool) {
	for _, source := range l {
		if value, ok := source.Lookup(key); ok {
			return value, true
		}
	}
	return "", false
}
