package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/leandrosousa110490/new-sql/internal/state"
)

// connectionsDoc is the shape of the connections yaml file.
type connectionsDoc struct {
	Connections []state.ConnectionDef `koanf:"connections" yaml:"connections"`
}

// LoadConnectionsFile reads connection definitions from a yaml file.
// A missing file is not an error; it returns an empty list.
func LoadConnectionsFile(path string) ([]state.ConnectionDef, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load connections file %s: %w", path, err)
	}

	var doc connectionsDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &doc,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to decode connections file %s: %w", path, err)
	}
	return doc.Connections, nil
}

// WriteConnectionsFile writes connection definitions back out as yaml,
// creating the parent directory if needed.
func WriteConnectionsFile(path string, defs []state.ConnectionDef) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := yaml.Marshal(connectionsDoc{Connections: defs})
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}
	// 0600: the file carries credentials.
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write connections file: %w", err)
	}
	return nil
}

// WatchConnectionsFile watches path and invokes onChange with the
// freshly loaded definitions after every write. It blocks until the
// watcher fails or stop is closed.
func WatchConnectionsFile(path string, logger *slog.Logger, stop <-chan struct{}, onChange func([]state.ConnectionDef)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files, which drops a watch
	// on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			evAbs, err := filepath.Abs(ev.Name)
			if err != nil || evAbs != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			defs, err := LoadConnectionsFile(path)
			if err != nil {
				logger.Warn("failed to reload connections file", "path", path, "error", err)
				continue
			}
			logger.Info("connections file reloaded", "path", path, "connections", len(defs))
			onChange(defs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
