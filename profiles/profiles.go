// Package profiles loads named parameter presets and applies them to
// commands. A profile supplies default params only; explicit params on the
// command always win.
package profiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/choomlang/choom/dsl"
	"github.com/choomlang/choom/errors"
	"github.com/choomlang/choom/registry"
	"github.com/choomlang/choom/translate"
)

// Profile is one preset loaded from <dir>/<name>.yaml.
type Profile struct {
	Name        string                 `yaml:"-"`
	Description string                 `yaml:"description,omitempty"`
	Defaults    map[string]interface{} `yaml:"defaults"`
}

// List returns the sorted profile names found in dir. A missing directory
// is not an error; it just has no profiles.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list profiles in %s", dir)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	sort.Strings(names)
	return names, nil
}

// Read loads one profile by name.
func Read(dir, name string) (*Profile, error) {
	path := profilePath(dir, name)
	if path == "" {
		return nil, errors.New("profile not found: %s", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", name)
	}
	profile := &Profile{Name: name}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, errors.Wrapf(err, "invalid profile payload for %s", name)
	}
	return profile, nil
}

func profilePath(dir, name string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Apply merges the profile defaults under the command's explicit params and
// returns a fresh canonical command. The input command is left untouched.
func Apply(profile *Profile, cmd *dsl.Command, reg *registry.Table) (*dsl.Command, error) {
	merged := make(map[string]interface{}, len(profile.Defaults)+len(cmd.Params))
	for key, value := range profile.Defaults {
		merged[key] = value
	}
	for key, value := range cmd.Params {
		merged[key] = value
	}
	out, err := translate.PayloadToCommand(&translate.Payload{
		Op:     cmd.Op,
		Target: cmd.Target,
		Count:  cmd.Count,
		Params: merged,
	}, reg)
	if err != nil {
		return nil, errors.Wrapf(err, "apply profile %s", profile.Name)
	}
	return out, nil
}

// ApplyToLine is the line-in, line-out convenience used by the CLI.
func ApplyToLine(parser *dsl.Parser, reg *registry.Table, dir, name, line string, lenient bool) (string, error) {
	profile, err := Read(dir, name)
	if err != nil {
		return "", err
	}
	cmd, err := parser.ParseWith(line, lenient)
	if err != nil {
		return "", err
	}
	applied, err := Apply(profile, cmd, reg)
	if err != nil {
		return "", err
	}
	return parser.Format(applied)
}
