package project

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/cutline/internal/system"
)

// DefaultDir is where projects live when no path is given.
const DefaultDir = "projects"

// GeneratePath creates a timestamped project filename inside dir.
func GeneratePath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("project_%s.yaml", now.Format("2006-01-02_15-04-05")))
}

// FindLatest returns the most recently modified project in dir.
func FindLatest(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}
