// Package meshstore keeps CTM files in a directory, one file per mesh,
// named after the mesh id.
package meshstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

const (
	idPrefix = "mesh_"
	fileExt  = ".ctm"
)

var (
	ErrMeshNotFound = errors.New("meshstore: mesh not found")
	ErrInvalidID    = errors.New("meshstore: invalid mesh id")
)

// Store is safe for concurrent use; files are written under a temporary
// name and renamed into place.
type Store struct {
	dir  string
	opts []ctm.Option
}

// Entry summarises a stored mesh.
type Entry struct {
	ID         string    `json:"id"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	Method     string    `json:"method"`
	Vertices   uint32    `json:"vertices"`
	Triangles  uint32    `json:"triangles"`
	HasNormals bool      `json:"has_normals"`
	UVMaps     uint32    `json:"uv_maps"`
	AttribMaps uint32    `json:"attrib_maps"`
	Comment    string    `json:"comment,omitempty"`
}

// Open returns a Store rooted at dir, creating it if needed. The ctm
// options apply to every load.
func Open(dir string, opts ...ctm.Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("meshstore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("meshstore: %w", err)
	}
	return &Store{dir: dir, opts: opts}, nil
}

func (s *Store) Dir() string { return s.dir }

// NewID returns a fresh mesh id.
func NewID() string { return idPrefix + uuid.NewString() }

// ValidID reports whether id has the form produced by NewID.
func ValidID(id string) bool {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// Path returns the file backing id. The file may not exist.
func (s *Store) Path(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.dir, id+fileExt), nil
}

// Put encodes m as CTM under a new id and returns its summary.
func (s *Store) Put(m *meshio.Mesh, opts meshio.ExportOptions) (Entry, error) {
	id := NewID()
	path, _ := s.Path(id)
	if err := meshio.Write(path, m, opts, s.opts...); err != nil {
		return Entry{}, err
	}
	e, err := s.Info(id)
	if err != nil {
		_ = os.Remove(path)
		return Entry{}, err
	}
	return e, nil
}

// Get loads the mesh into a new Import context. The caller must Free it.
func (s *Store) Get(id string) (*ctm.Context, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}
	c := ctm.New(ctm.Import, s.opts...)
	if err := c.Load(path); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

// Mesh loads id as a neutral mesh.
func (s *Store) Mesh(id string) (*meshio.Mesh, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	defer c.Free()
	return meshio.FromContext(c)
}

// Info summarises id.
func (s *Store) Info(id string) (Entry, error) {
	path, err := s.Path(id)
	if err != nil {
		return Entry{}, err
	}
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("meshstore: %w", err)
	}
	c, err := s.Get(id)
	if err != nil {
		return Entry{}, err
	}
	defer c.Free()
	return summarize(id, st, c), nil
}

func summarize(id string, st fs.FileInfo, c *ctm.Context) Entry {
	e := Entry{ID: id, Size: st.Size(), Created: st.ModTime().UTC()}
	if m, err := c.Method(); err == nil {
		e.Method = m.String()
	}
	e.Vertices, _ = c.Integer(ctm.VertexCount)
	e.Triangles, _ = c.Integer(ctm.TriangleCount)
	n, _ := c.Integer(ctm.HasNormals)
	e.HasNormals = n != 0
	e.UVMaps, _ = c.Integer(ctm.UVMapCount)
	e.AttribMaps, _ = c.Integer(ctm.AttribMapCount)
	e.Comment, _ = c.Comment()
	return e
}

// List returns every stored mesh, oldest first. Files that fail to load are
// skipped.
func (s *Store) List() ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("meshstore: %w", err)
	}
	var out []Entry
	for _, d := range dirents {
		id, ok := strings.CutSuffix(d.Name(), fileExt)
		if !ok || d.IsDir() || !ValidID(id) {
			continue
		}
		e, err := s.Info(id)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete removes id.
func (s *Store) Delete(id string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMeshNotFound, id)
		}
		return fmt.Errorf("meshstore: %w", err)
	}
	return nil
}
