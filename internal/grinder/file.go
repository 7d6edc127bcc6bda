package grinder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"tangled.org/arabica.social/dialin/internal/models"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a grinder profile file.
//
//	grinders:
//	  - name: TIMEMORE Sculptor 064S
//	    methods:
//	      v60:
//	        min: 8
//	        max: 13
//	        unit: dial
//	        step: 0.2
//	        baselines: {light: 12.5, medium: 11, dark: 10}
//	        shifts: {brighter: -0.4, sweeter: -0.2, less_bitter: 0.4}
type File struct {
	// IncludeDefaults keeps the built-in grinders alongside the ones in the file.
	IncludeDefaults bool      `yaml:"include_defaults"`
	Grinders        []Profile `yaml:"grinders"`
}

// LoadFile reads and validates a grinder profile file. Method, roast and taste
// keys may use any spelling the request parsers accept.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grinder file: %w", err)
	}
	return Parse(data)
}

// Parse decodes grinder profiles from YAML.
func Parse(data []byte) ([]Profile, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse grinder file: %w", err)
	}

	var profiles []Profile
	if f.IncludeDefaults {
		profiles = append(profiles, Default()...)
	}
	for _, p := range f.Grinders {
		np, err := canonicalize(p)
		if err != nil {
			return nil, err
		}
		if err := np.Validate(); err != nil {
			return nil, err
		}
		profiles = append(profiles, np)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: file lists no grinders", ErrInvalidProfile)
	}
	return profiles, nil
}

func canonicalize(p Profile) (Profile, error) {
	out := Profile{Name: p.Name, Methods: make(map[models.Method]MethodRange, len(p.Methods))}
	for rawMethod, r := range p.Methods {
		m, err := models.ParseMethod(string(rawMethod))
		if err != nil {
			return Profile{}, fmt.Errorf("%s: %w", p.Name, err)
		}

		nr := r
		nr.Baselines = make(map[models.RoastLevel]float64, len(r.Baselines))
		for rawRoast, b := range r.Baselines {
			roast, err := models.ParseRoastLevel(string(rawRoast))
			if err != nil {
				return Profile{}, fmt.Errorf("%s %s: %w", p.Name, m, err)
			}
			nr.Baselines[roast] = b
		}

		nr.Shifts = make(map[models.TasteGoal]float64, len(r.Shifts))
		for rawGoal, s := range r.Shifts {
			goal, err := models.ParseTasteGoal(string(rawGoal))
			if err != nil {
				return Profile{}, fmt.Errorf("%s %s: %w", p.Name, m, err)
			}
			nr.Shifts[goal] = s
		}

		out.Methods[m] = nr
	}
	return out, nil
}

// Watch monitors path and installs the reloaded table into reg each time the
// file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that write
// a temp file and rename it over path keep being picked up.
//
// A reload that fails to parse or validate is logged and the previous table
// stays active. onReload, if set, is called after every reload attempt with
// the active grinder count and the reload error (nil on success).
func Watch(ctx context.Context, path string, reg *Registry, onReload func(count int, err error)) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("Watching grinder profiles for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename onto path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			profiles, err := LoadFile(path)
			if err == nil {
				err = reg.Replace(profiles)
			}
			if onReload != nil {
				onReload(reg.Count(), err)
			}
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("Grinder profile reload failed, keeping previous table")
				continue
			}

			log.Info().Str("path", path).Int("grinders", reg.Count()).Msg("Grinder profiles reloaded")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Grinder profile watcher error")
		}
	}
}
