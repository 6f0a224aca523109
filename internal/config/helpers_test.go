package config

import (
	"os"
	"path/filepath"
)

func writeDotEnv(dir, content string) error {
	return os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644)
}
