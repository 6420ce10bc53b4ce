// Package unpacker is the top-level facade: it wires discovery, idx
// parsing, the directory tree, the query resolver, and the extractor into
// the single entrypoint most callers need.
package unpacker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wowsunpack/wowsunpack/internal/cache"
	"github.com/wowsunpack/wowsunpack/internal/dirtree"
	"github.com/wowsunpack/wowsunpack/internal/discovery"
	"github.com/wowsunpack/wowsunpack/internal/extract"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
	"github.com/wowsunpack/wowsunpack/internal/query"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// State is where in the lifecycle a Facade sits.
type State int

const (
	StateCreated State = iota
	StateTreeBuilt
)

// languageCodes are the catalogs the game ships, per §6.
var languageCodes = []string{
	"cs", "de", "en", "es", "es_mx", "fr", "it", "ja", "ko", "nl",
	"pl", "pt", "pt_br", "ru", "th", "uk", "zh", "zh_sg", "zh_tw",
}

// Facade is the stateful entrypoint: Created -> TreeBuilt -> (Extracting)*.
// It is safe for concurrent use; BuildTree is idempotent and coalesced
// across concurrent callers via singleflight.
type Facade struct {
	layout    discovery.Layout
	destRoot  string
	extractor *extract.Extractor
	cache     *cache.Cache

	mu    sync.RWMutex
	state State
	tree  *dirtree.Tree

	buildOnce singleflight.Group
}

// Auto discovers the newest complete build under gameRoot and returns a
// Facade in the Created state. Discovery failures are fatal here (§7).
// The returned facade has no cache: its first BuildTree call always parses
// every idx file; use AutoWithCache to skip re-parsing unchanged builds.
func Auto(gameRoot, destRoot string) (*Facade, error) {
	return AutoWithCache(gameRoot, destRoot, nil)
}

// AutoWithCache is Auto, but BuildTree consults c first and refreshes it
// after a fresh parse, keyed by the discovered build id (§10.1).
func AutoWithCache(gameRoot, destRoot string, c *cache.Cache) (*Facade, error) {
	layout, err := discovery.Find(gameRoot)
	if err != nil {
		return nil, err
	}

	return &Facade{
		layout:    layout,
		destRoot:  destRoot,
		extractor: extract.New(layout.PkgRoot, destRoot),
		cache:     c,
		state:     StateCreated,
	}, nil
}

// Layout returns the resolved build layout this facade was built from.
func (f *Facade) Layout() discovery.Layout {
	return f.layout
}

// BuildTree parses every .idx file under the build's idx root and merges
// them into a single tree, advancing the facade to TreeBuilt. Concurrent
// callers share one in-flight build; once built, later calls are no-ops.
func (f *Facade) BuildTree(ctx context.Context) error {
	f.mu.RLock()
	if f.state == StateTreeBuilt {
		f.mu.RUnlock()
		return nil
	}
	f.mu.RUnlock()

	_, err, _ := f.buildOnce.Do("build", func() (any, error) {
		f.mu.RLock()
		already := f.state == StateTreeBuilt
		f.mu.RUnlock()
		if already {
			return nil, nil
		}

		tree, err := f.buildTreeFromIdxRoot(ctx)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		f.tree = tree
		f.state = StateTreeBuilt
		f.mu.Unlock()
		return nil, nil
	})
	return err
}

func (f *Facade) buildTreeFromIdxRoot(ctx context.Context) (*dirtree.Tree, error) {
	idxRoot := f.layout.IdxRoot
	entries, err := os.ReadDir(idxRoot)
	if err != nil {
		return nil, fmt.Errorf("reading idx directory %s: %w", idxRoot, err)
	}

	buildID := strconv.Itoa(f.layout.Build)
	fingerprints := make(map[string]cache.Fingerprint, len(entries))
	var idxFiles []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".idx" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fingerprints[e.Name()] = cache.Fingerprint{Size: info.Size(), ModTime: info.ModTime().Unix()}
		idxFiles = append(idxFiles, e.Name())
	}

	if f.cache != nil {
		if records, ok, err := f.cache.Load(ctx, buildID, fingerprints); err != nil {
			slog.WarnContext(ctx, "unpacker: idx cache lookup failed, parsing fresh", "build", buildID, "error", err)
		} else if ok {
			slog.DebugContext(ctx, "unpacker: idx cache hit", "build", buildID, "files", len(records))
			tree := dirtree.New()
			for _, rec := range records {
				tree.Insert(rec)
			}
			return tree, nil
		}
	}

	tree := dirtree.New()
	merged := make(map[string]idxfile.FileRecord)
	for _, name := range idxFiles {
		path := filepath.Join(idxRoot, name)
		buf, err := os.ReadFile(path)
		if err != nil {
			slog.WarnContext(ctx, "unpacker: skipping unreadable idx file", "path", path, "error", err)
			continue
		}

		result, err := idxfile.NewParser(buf).Parse()
		if err != nil {
			slog.WarnContext(ctx, "unpacker: skipping malformed idx file", "path", path, "error", err)
			continue
		}

		for path, rec := range result.Files {
			tree.Insert(rec)
			merged[path] = rec
		}
	}

	if f.cache != nil {
		if err := f.cache.Store(ctx, buildID, fingerprints, merged); err != nil {
			slog.WarnContext(ctx, "unpacker: failed to refresh idx cache", "build", buildID, "error", err)
		}
	}

	return tree, nil
}

// Tree returns the built directory tree, auto-building it on first use.
// Exposed so callers outside this package (e.g. internal/api) can run
// their own queries or extractions against a destination root other than
// the facade's default.
func (f *Facade) Tree(ctx context.Context) (*dirtree.Tree, error) {
	if err := f.BuildTree(ctx); err != nil {
		return nil, err
	}
	return f.treeOrError()
}

// PkgRoot returns the resolved package directory this facade reads from.
func (f *Facade) PkgRoot() string {
	return f.layout.PkgRoot
}

func (f *Facade) treeOrError() (*dirtree.Tree, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.state != StateTreeBuilt {
		return nil, fmt.Errorf("tree not built")
	}
	return f.tree, nil
}

// Search resolves a glob pattern against the tree, auto-building it on
// first use.
func (f *Facade) Search(ctx context.Context, pattern string) ([]idxfile.FileRecord, error) {
	if err := f.BuildTree(ctx); err != nil {
		return nil, err
	}
	tree, err := f.treeOrError()
	if err != nil {
		return nil, err
	}
	return query.ResolveGlob(tree, pattern), nil
}

// ExtractExact resolves path and extracts every matching record, auto-
// building the tree on first use. An unknown path is non-fatal (§4.4/§7):
// it is logged and reported as an empty extraction, never as an error.
func (f *Facade) ExtractExact(ctx context.Context, path string, maxWorkers int) ([]extract.Outcome, error) {
	if err := f.BuildTree(ctx); err != nil {
		return nil, err
	}
	tree, err := f.treeOrError()
	if err != nil {
		return nil, err
	}

	recs, err := query.ResolveExact(tree, path)
	if err != nil {
		if errors.Is(err, xerrors.ErrUnknownPath) {
			slog.WarnContext(ctx, "unpacker: extract path not found, nothing to extract", "path", path)
			return nil, nil
		}
		return nil, err
	}
	return f.extractor.Batch(ctx, recs, maxWorkers), nil
}

// ExtractGlob resolves pattern and extracts every matching record,
// auto-building the tree on first use.
func (f *Facade) ExtractGlob(ctx context.Context, pattern string, maxWorkers int) ([]extract.Outcome, error) {
	if err := f.BuildTree(ctx); err != nil {
		return nil, err
	}
	tree, err := f.treeOrError()
	if err != nil {
		return nil, err
	}

	recs := query.ResolveGlob(tree, pattern)
	return f.extractor.Batch(ctx, recs, maxWorkers), nil
}

// Browser returns a new query.Browser over the facade's tree, auto-building
// it on first use.
func (f *Facade) Browser(ctx context.Context) (*query.Browser, error) {
	if err := f.BuildTree(ctx); err != nil {
		return nil, err
	}
	tree, err := f.treeOrError()
	if err != nil {
		return nil, err
	}
	return query.NewBrowser(tree), nil
}

// LangPath returns the on-disk path of the given language's message
// catalog, without touching the filesystem.
func (f *Facade) LangPath(language string) string {
	return filepath.Join(f.layout.TextRoot, language, "LC_MESSAGES", "global.mo")
}

// SupportedLanguages returns the fixed set of catalog language codes the
// game ships (§6).
func SupportedLanguages() []string {
	out := make([]string, len(languageCodes))
	copy(out, languageCodes)
	return out
}
