package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/softglow/lantern/engine/core"
	"github.com/softglow/lantern/engine/resources"
)

const (
	modelsSubdir  = "models"
	shadersSubdir = "shaders"
)

// ManagerConfig describes where assets live and whether shader files should
// be watched for changes.
type ManagerConfig struct {
	BaseDir      string
	Bus          *core.EventBus
	WatchShaders bool
}

// Manager resolves asset names to files below a base directory and, when
// watching is enabled, reports shader rebuilds on the event bus.
type Manager struct {
	baseDir string
	bus     *core.EventBus
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewManager(config *ManagerConfig) (*Manager, error) {
	info, err := os.Stat(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset path %s is not a directory", config.BaseDir)
	}

	manager := &Manager{
		baseDir: config.BaseDir,
		bus:     config.Bus,
		done:    make(chan struct{}),
	}

	if config.WatchShaders {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create shader watcher: %w", err)
		}
		if err := watcher.Add(filepath.Join(config.BaseDir, shadersSubdir)); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch shader directory: %w", err)
		}
		manager.watcher = watcher
		go manager.watch()
	}

	return manager, nil
}

func (m *Manager) Shutdown() {
	close(m.done)
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
}

// ModelPath returns the on-disk location of a model asset.
func (m *Manager) ModelPath(name string) string {
	return filepath.Join(m.baseDir, modelsSubdir, name)
}

// ShaderPath returns the on-disk location of a compiled shader module.
func (m *Manager) ShaderPath(name string) string {
	return filepath.Join(m.baseDir, shadersSubdir, name)
}

func (m *Manager) LoadMesh(name string) (*resources.Mesh, error) {
	mesh, err := LoadWavefrontModel(m.ModelPath(name))
	if err != nil {
		return nil, fmt.Errorf("load mesh %s: %w", name, err)
	}
	core.LogInfo("loaded mesh %s: %d vertices, %d triangles, %d materials",
		name, mesh.VertexCount(), mesh.TriangleCount(), len(mesh.Materials))
	return mesh, nil
}

func (m *Manager) LoadShader(name string) (*resources.ShaderBlob, error) {
	blob, err := LoadShaderBlob(m.ShaderPath(name))
	if err != nil {
		return nil, fmt.Errorf("load shader %s: %w", name, err)
	}
	core.LogDebug("loaded shader %s: %d bytes", name, len(blob.Code))
	return blob, nil
}

// watch forwards shader rebuilds to the event bus. Compilers typically write
// a temporary file and rename it into place, so create and rename count as
// modifications alongside plain writes.
func (m *Manager) watch() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".spv" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			core.LogDebug("shader modified on disk: %s", event.Name)
			m.bus.Publish(core.Event{Type: core.EventAssetModified, Path: event.Name})
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("shader watcher: %v", err)
		case <-m.done:
			return
		}
	}
}
