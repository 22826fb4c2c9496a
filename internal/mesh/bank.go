package mesh

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Built-in mesh IDs. Anything else is looked up as an OBJ file under the
// bank's directory.
const (
	PortalID = "@portal"
	CubeID   = "@cube"
	FloorID  = "@floor"
)

var builtins = map[string]func() *Mesh{
	PortalID: Quad,
	CubeID: func() *Mesh {
		m := Box(1, 1, 1)
		m.Material.DiffuseMap = "crate"
		return m
	},
	FloorID: func() *Mesh {
		m := Plane(40, 40)
		m.Material.DiffuseMap = "floor"
		return m
	},
}

// Bank is a concurrency-safe mesh cache. Failed loads are cached as an
// empty mesh so each bad ID warns once.
type Bank struct {
	dir string
	log *zap.Logger

	mu    sync.RWMutex
	items map[string]*Mesh
}

// NewBank serves built-ins and OBJ files found under dir.
func NewBank(dir string, log *zap.Logger) *Bank {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bank{
		dir:   dir,
		log:   log,
		items: make(map[string]*Mesh),
	}
}

// GetMeshOrDefault never fails: an unloadable ID yields an empty mesh with
// the default material.
func (b *Bank) GetMeshOrDefault(id string) *Mesh {
	// Fast path: read lock
	b.mu.RLock()
	if m, ok := b.items[id]; ok {
		b.mu.RUnlock()
		return m
	}
	b.mu.RUnlock()

	m, err := b.Load(id)
	if err != nil {
		b.log.Warn("mesh load failed, using empty mesh", zap.String("mesh", id), zap.Error(err))
		m = &Mesh{Name: id, Material: DefaultMaterial()}
	}

	// Write lock with double-check
	b.mu.Lock()
	defer b.mu.Unlock()
	if cached, ok := b.items[id]; ok {
		return cached
	}
	b.items[id] = m
	return m
}

// Load builds a mesh without consulting or filling the cache.
func (b *Bank) Load(id string) (*Mesh, error) {
	if build, ok := builtins[id]; ok {
		m := build()
		m.Name = id
		return m, nil
	}
	if strings.HasPrefix(id, "@") {
		return nil, fmt.Errorf("mesh: unknown built-in %s", id)
	}
	if b.dir == "" {
		return nil, fmt.Errorf("mesh: no resource directory for %s", id)
	}

	rel := filepath.FromSlash(id)
	if filepath.Ext(rel) == "" {
		rel += ".obj"
	}
	path := filepath.Join(b.dir, rel)
	m, err := loadOBJ(path)
	if err != nil {
		return nil, err
	}
	m.Name = id
	return m, nil
}

func loadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: open %s: %w", path, err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("mesh: parse %s: %w", path, err)
	}

	mats := make(map[string]Material)
	for _, lib := range obj.MtlLibs {
		libPath := filepath.Join(filepath.Dir(path), filepath.FromSlash(lib))
		lf, err := os.Open(libPath)
		if err != nil {
			return nil, fmt.Errorf("mesh: open %s: %w", libPath, err)
		}
		parsed, err := ParseMTL(lf)
		lf.Close()
		if err != nil {
			return nil, fmt.Errorf("mesh: parse %s: %w", libPath, err)
		}
		for k, v := range parsed {
			mats[k] = v
		}
	}

	m := obj.Mesh
	if obj.Material != "" {
		mat, ok := mats[obj.Material]
		if !ok {
			return nil, fmt.Errorf("mesh: %s: unknown material %s", path, obj.Material)
		}
		m.Material = mat
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns the built-in IDs followed by every OBJ under the bank's
// directory, as IDs Load accepts.
func (b *Bank) List() ([]string, error) {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if b.dir == "" {
		return ids, nil
	}

	var files []string
	err := filepath.WalkDir(b.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ".obj" {
			return nil
		}
		rel, err := filepath.Rel(b.dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return ids, fmt.Errorf("mesh: scan %s: %w", b.dir, err)
	}
	sort.Strings(files)
	return append(ids, files...), nil
}
