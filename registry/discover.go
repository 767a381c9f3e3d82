package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// MarkerFile is the package marker that makes a subdirectory a module.
const MarkerFile = "module.yaml"

// Discover scans the registry root for immediate subdirectories
// carrying a marker file and registers one ModuleInfo per hit.
// Directories matching an ignore glob are skipped. Duplicate names
// follow Register's last-wins semantics. Returns the names discovered
// in this pass.
func (r *Registry) Discover() ([]string, error) {
	if r.root == "" {
		return nil, fmt.Errorf("no module root configured")
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("read module root %s: %w", r.root, err)
	}

	var discovered []string
	for _, entry := range entries {
		if !entry.IsDir() || r.ignored(entry.Name()) {
			continue
		}

		dir := filepath.Join(r.root, entry.Name())
		markerPath := filepath.Join(dir, MarkerFile)
		if _, err := os.Stat(markerPath); err != nil {
			continue
		}

		info, err := readManifest(markerPath, entry.Name(), dir)
		if err != nil {
			r.logger.Warn("Skipping module with unreadable manifest",
				"dir", dir, "error", err)
			continue
		}

		r.Register(info)
		discovered = append(discovered, info.Name)
	}

	r.logger.Info("Module discovery complete",
		"root", r.root, "discovered", len(discovered))
	return discovered, nil
}

// ignored reports whether a directory name matches an ignore glob.
func (r *Registry) ignored(name string) bool {
	for _, pattern := range r.ignores {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// readManifest parses a module.yaml into a ModuleInfo, defaulting the
// name to the directory name and the description to an auto-discovery
// note.
func readManifest(path, dirName, dir string) (*ModuleInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if manifest.Name == "" {
		manifest.Name = dirName
	}
	if manifest.Description == "" {
		manifest.Description = fmt.Sprintf("Módulo %q (descoberto automaticamente)", manifest.Name)
	}
	if manifest.Version == "" {
		manifest.Version = "0.1.0"
	}

	return &ModuleInfo{
		Name:         manifest.Name,
		Path:         dir,
		Description:  manifest.Description,
		Version:      manifest.Version,
		Dependencies: manifest.Dependencies,
		State:        StateDiscovered,
	}, nil
}
