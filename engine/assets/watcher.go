package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumen/engine/core"
)

type assetType int

const (
	assetTypeNone assetType = iota
	assetTypeMaterial
	assetTypeMesh
)

// Watcher keeps the registry in sync with an asset directory. Material
// files (.toml) and glTF meshes (.gltf, .glb) are loaded when the watch
// starts and reloaded whenever they are created or written; removing a
// file drops the asset. Assets are keyed by file name without extension.
type Watcher struct {
	registry *Registry
	logger   *log.Logger

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	mutex    sync.Mutex
	isClosed bool

	// Events receives the key of every asset (re)loaded or removed. It is
	// optional and never blocks the watcher.
	Events chan string
}

func NewWatcher(registry *Registry, logger *log.Logger) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Watcher{
		registry: registry,
		logger:   logger.WithPrefix("assets"),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		Events:   make(chan string, 16),
	}, nil
}

// Watch loads every asset below dir and starts watching it and all of its
// sub-directories.
func (w *Watcher) Watch(dir string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return errors.New("asset watcher already closed")
	}
	return w.watchRecursive(dir)
}

// Start runs the event loop in a goroutine until Close.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.start()
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					w.mutex.Lock()
					if err := w.watchRecursive(e.Name); err != nil {
						w.logger.Error("watch directory", "path", e.Name, "err", err)
					}
					w.mutex.Unlock()
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.removeAsset(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.logger.Error("asset watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and loads the files found on the way.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		w.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (w *Watcher) handleFileEvent(path string) {
	if key, ok := loadFile(w.registry, w.logger, path); ok {
		w.notify(key)
	}
}

func loadFile(registry *Registry, logger *log.Logger, path string) (string, bool) {
	key := assetKey(path)
	switch determineAssetType(path) {
	case assetTypeMaterial:
		material, err := LoadMaterialFile(path)
		if err != nil {
			// editors write files in several steps; keep the last good version
			logger.Warn("material not loaded", "path", path, "err", err)
			return key, false
		}
		registry.AddMaterial(key, material)
	case assetTypeMesh:
		mesh, err := LoadGLTFMesh(path)
		if err != nil {
			logger.Warn("mesh not loaded", "path", path, "err", err)
			return key, false
		}
		registry.AddMesh(key, mesh)
	default:
		return key, false
	}
	logger.Info("asset loaded", "key", key, "path", path)
	return key, true
}

// LoadDir loads every asset below dir once, without watching it. Files
// that fail to load are logged and skipped.
func LoadDir(registry *Registry, dir string, logger *log.Logger) error {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			loadFile(registry, logger, path)
		}
		return nil
	})
}

// Remove the asset from the registry if its file was deleted
func (w *Watcher) removeAsset(path string) {
	key := assetKey(path)
	switch determineAssetType(path) {
	case assetTypeMaterial:
		w.registry.RemoveMaterial(key)
	case assetTypeMesh:
		w.registry.RemoveMesh(key)
	default:
		return
	}
	w.logger.Info("asset removed", "key", key, "path", path)
	w.notify(key)
}

func (w *Watcher) notify(key string) {
	select {
	case w.Events <- key:
	default:
	}
}

func assetKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func determineAssetType(path string) assetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return assetTypeMaterial
	case ".gltf", ".glb":
		return assetTypeMesh
	default:
		return assetTypeNone
	}
}
