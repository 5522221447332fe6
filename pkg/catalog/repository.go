package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const manifestFile = "makes.json"

// ErrMakeNotFound is returned by LoadMake for makes absent from the manifest.
var ErrMakeNotFound = errors.New("make not found")

//go:embed data/*.json
var bundled embed.FS

// Bundled returns the vehicle catalog shipped with the binary.
func Bundled() fs.FS {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Repository loads make datasets on demand and caches them for the life of the process.
type Repository struct {
	fsys     fs.FS
	manifest Manifest

	mu    sync.Mutex
	cache map[string]*MakeCatalog
	group singleflight.Group
}

// NewRepository reads the manifest from fsys. Datasets are read lazily.
func NewRepository(fsys fs.FS) (*Repository, error) {
	data, err := fs.ReadFile(fsys, manifestFile)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read catalog manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "cannot parse catalog manifest")
	}
	return &Repository{
		fsys:     fsys,
		manifest: m,
		cache:    make(map[string]*MakeCatalog),
	}, nil
}

// ListMakes returns the sorted make names of the manifest.
func (r *Repository) ListMakes() []string {
	makes := make([]string, 0, len(r.manifest.Makes))
	for _, m := range r.manifest.Makes {
		makes = append(makes, m.Name)
	}
	sort.Strings(makes)
	return makes
}

// LoadMake returns the filtered catalog of a make. The first call reads and validates
// the dataset; later calls return the same cached *MakeCatalog. Concurrent first calls
// share a single read.
func (r *Repository) LoadMake(ctx context.Context, name string) (*MakeCatalog, error) {
	if c, ok := r.cached(name); ok {
		return c, nil
	}
	entry, ok := r.entry(name)
	if !ok {
		return nil, errors.Wrapf(ErrMakeNotFound, "%q", name)
	}

	ch := r.group.DoChan(name, func() (interface{}, error) {
		if c, ok := r.cached(name); ok {
			return c, nil
		}
		c, err := r.read(entry)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[name] = c
		r.mu.Unlock()
		glog.Infof("Loaded %d vehicles for make %s.", c.VehicleCount, name)
		return c, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*MakeCatalog), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Preload loads several makes concurrently and returns the first error.
func (r *Repository) Preload(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			_, err := r.LoadMake(ctx, name)
			return err
		})
	}
	return g.Wait()
}

// ClearCache drops every loaded make.
func (r *Repository) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*MakeCatalog)
}

func (r *Repository) cached(name string) (*MakeCatalog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cache[name]
	return c, ok
}

func (r *Repository) entry(name string) (ManifestEntry, bool) {
	for _, m := range r.manifest.Makes {
		if m.Name == name {
			return m, true
		}
	}
	return ManifestEntry{}, false
}

func (r *Repository) read(entry ManifestEntry) (*MakeCatalog, error) {
	data, err := fs.ReadFile(r.fsys, entry.File)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read dataset for %s", entry.Name)
	}
	var raw MakeCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse dataset for %s", entry.Name)
	}
	if raw.Make == "" {
		raw.Make = entry.Name
	}
	return filterCatalog(raw), nil
}

// filterCatalog keeps only valid trims and drops vehicles left without any.
func filterCatalog(raw MakeCatalog) *MakeCatalog {
	out := &MakeCatalog{Make: raw.Make}
	for _, v := range raw.Vehicles {
		var trims []TrimRecord
		for _, t := range v.Trims {
			if err := validateTrim(t); err != nil {
				glog.V(1).Infof("Skipping %s %s %d %q: %s", raw.Make, v.Model, v.Year, t.Name, err)
				continue
			}
			if t.ID == "" {
				t.ID = trimID(raw.Make, v.Model, v.Year, t.Name)
			}
			trims = append(trims, t)
		}
		if len(trims) == 0 {
			continue
		}
		v.Trims = trims
		out.Vehicles = append(out.Vehicles, v)
	}
	out.VehicleCount = len(out.Vehicles)
	return out
}

// trimID derives a stable identifier for trims the dataset left unnamed.
func trimID(makeName, model string, year int, trim string) string {
	key := fmt.Sprintf("%s/%s/%d/%s", makeName, model, year, trim)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
