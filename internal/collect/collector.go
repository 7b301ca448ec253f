// Package collect walks a repository snapshot and builds the manifest of
// files eligible for chunking and indexing. Per-file failures are counted
// and skipped, never fatal to the walk, and an empty manifest is a normal
// outcome that the SkipReport explains.
package collect

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/types"
)

// DefaultExtensions is the allow-list of source, markup, and config
// extensions considered indexable.
var DefaultExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".hpp": true,
	".cs": true, ".php": true, ".rb": true, ".go": true, ".rs": true,
	".scala": true, ".kt": true, ".swift": true, ".r": true, ".sql": true,
	".md": true, ".txt": true, ".yml": true, ".yaml": true, ".json": true,
	".xml": true, ".html": true, ".css": true, ".sh": true,
	".dockerfile": true, ".vue": true, ".ipynb": true,
}

// DefaultIgnoreDirs are path components that mark version control internals,
// dependency caches, build output, and IDE metadata. Matched case-insensitively.
var DefaultIgnoreDirs = map[string]bool{
	".git": true, "__pycache__": true, "node_modules": true,
	".venv": true, "venv": true, ".pytest_cache": true, ".mypy_cache": true,
	"dist": true, "build": true, ".next": true, "target": true,
	"bin": true, "obj": true, ".idea": true, ".vscode": true, ".vs": true,
	"coverage": true, ".nyc_output": true, "logs": true, "temp": true, "tmp": true,
}

// DefaultIgnoreFiles are exact file names never worth indexing.
var DefaultIgnoreFiles = map[string]bool{
	".gitignore": true, ".env": true, ".env.local": true, ".DS_Store": true,
	"package-lock.json": true, "yarn.lock": true, "poetry.lock": true,
	".gitattributes": true, "LICENSE": true, "license.txt": true,
	"LICENSE.md": true, ".gitkeep": true,
}

// BinaryExtensions are artifact extensions excluded before the allow-list is
// even consulted.
var BinaryExtensions = map[string]bool{
	".h5": true, ".keras": true, ".npy": true, ".npz": true,
	".pkl": true, ".pickle": true, ".jpg": true, ".jpeg": true,
	".png": true, ".gif": true, ".bmp": true, ".ico": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".rar": true, ".7z": true, ".exe": true, ".dll": true,
	".so": true, ".dylib": true, ".whl": true,
}

// SkipReport counts skipped files by reason so the caller can explain why a
// manifest came out empty.
type SkipReport struct {
	IgnoredDir  int `json:"ignored_dir"`
	IgnoredFile int `json:"ignored_file"`
	Binary      int `json:"binary"`
	Extension   int `json:"extension"`
	Unreadable  int `json:"unreadable"`
	TooLarge    int `json:"too_large"`
	TooSmall    int `json:"too_small"`
	OverCap     int `json:"over_cap"`
}

// Total returns the number of files skipped for any reason.
func (r SkipReport) Total() int {
	return r.IgnoredDir + r.IgnoredFile + r.Binary + r.Extension +
		r.Unreadable + r.TooLarge + r.TooSmall + r.OverCap
}

// Manifest is the result of collecting one repository snapshot.
type Manifest struct {
	Files   []types.SourceFile
	Skipped SkipReport
}

// Collector applies the inclusion/exclusion rules to a repository tree.
type Collector struct {
	extensions  map[string]bool
	ignoreDirs  map[string]bool
	ignoreFiles map[string]bool
	binaryExts  map[string]bool

	maxFileSize   int
	minContentLen int
	maxTotalFiles int

	logger zerolog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithExtensions adds extensions to the allow-list.
func WithExtensions(exts ...string) Option {
	return func(c *Collector) {
		for _, ext := range exts {
			c.extensions[strings.ToLower(ext)] = true
		}
	}
}

// WithIgnoreDirs adds directory names to the deny-list.
func WithIgnoreDirs(dirs ...string) Option {
	return func(c *Collector) {
		for _, d := range dirs {
			c.ignoreDirs[strings.ToLower(d)] = true
		}
	}
}

// WithIgnoreFiles adds file names to the deny-list.
func WithIgnoreFiles(names ...string) Option {
	return func(c *Collector) {
		for _, n := range names {
			c.ignoreFiles[n] = true
		}
	}
}

// WithMaxFileSize overrides the file size ceiling in bytes.
func WithMaxFileSize(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithMinContentLength overrides the minimum stripped content length.
func WithMinContentLength(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.minContentLen = n
		}
	}
}

// WithMaxTotalFiles overrides the manifest size cap.
func WithMaxTotalFiles(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxTotalFiles = n
		}
	}
}

// NewCollector creates a Collector with the default rule sets.
func NewCollector(logger zerolog.Logger, opts ...Option) *Collector {
	c := &Collector{
		extensions:    cloneSet(DefaultExtensions),
		ignoreDirs:    cloneSet(DefaultIgnoreDirs),
		ignoreFiles:   cloneSet(DefaultIgnoreFiles),
		binaryExts:    cloneSet(BinaryExtensions),
		maxFileSize:   500_000,
		minContentLen: 20,
		maxTotalFiles: 500,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cloneSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Collect walks root and returns the manifest of eligible files plus skip
// diagnostics. The walk is deterministic (lexical order), so running it twice
// over an unmodified tree yields an identical manifest.
func (c *Collector) Collect(root string) (*Manifest, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	m := &Manifest{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn().Str("path", path).Err(err).Msg("error accessing path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			m.Skipped.Unreadable++
			return nil
		}

		if d.IsDir() {
			if path != root && c.ignoreDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			m.Skipped.Unreadable++
			return nil
		}
		rel = filepath.ToSlash(rel)

		c.collectFile(m, path, rel, d.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int("files", len(m.Files)).
		Int("skipped", m.Skipped.Total()).
		Str("root", root).
		Msg("collection complete")

	return m, nil
}

// collectFile runs a single file through the filter chain, cheapest check
// first, and appends it to the manifest when it survives every step.
func (c *Collector) collectFile(m *Manifest, path, rel, name string) {
	if c.inIgnoredDir(rel) {
		m.Skipped.IgnoredDir++
		return
	}

	if c.ignoreFiles[name] {
		m.Skipped.IgnoredFile++
		return
	}

	ext := strings.ToLower(filepath.Ext(name))
	if c.binaryExts[ext] {
		m.Skipped.Binary++
		return
	}
	if !c.extensions[ext] {
		m.Skipped.Extension++
		return
	}

	if len(m.Files) >= c.maxTotalFiles {
		m.Skipped.OverCap++
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn().Str("path", rel).Err(err).Msg("skipping unreadable file")
		m.Skipped.Unreadable++
		return
	}

	if len(raw) > c.maxFileSize {
		c.logger.Debug().Str("path", rel).Int("bytes", len(raw)).Msg("skipping large file")
		m.Skipped.TooLarge++
		return
	}

	// Invalid byte sequences are replaced, never fatal.
	content := strings.ToValidUTF8(string(raw), "�")

	if len(strings.TrimSpace(content)) < c.minContentLen {
		m.Skipped.TooSmall++
		return
	}

	m.Files = append(m.Files, types.SourceFile{
		Path:      rel,
		Content:   content,
		Extension: ext,
	})
}

// inIgnoredDir reports whether any component of the relative path matches the
// directory deny-list. WalkDir already prunes ignored directories; this also
// catches symlinked or unusual layouts where a component slips through.
func (c *Collector) inIgnoredDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if c.ignoreDirs[strings.ToLower(p)] {
			return true
		}
	}
	return false
}
