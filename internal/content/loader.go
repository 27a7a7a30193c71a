package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/sourcegraph/conc/iter"

	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/post"
)

// KeySlug overrides the path-derived entry id. It is read by the loader,
// never by the schema.
const KeySlug = "slug"

// Extensions of content files in the collection.
var Extensions = []string{".md", ".mdx"}

// Loader reads a blog collection from disk.
type Loader struct {
	root        string
	schema      *post.Schema
	log         logger.Logger
	wpm         int
	assetPrefix string
	workers     int
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(log logger.Logger) Option { return func(l *Loader) { l.log = log } }

// WithWordsPerMinute sets the reading speed for ReadingMinutes.
func WithWordsPerMinute(wpm int) Option {
	return func(l *Loader) {
		if wpm > 0 {
			l.wpm = wpm
		}
	}
}

// DefaultAssetPrefix is the URL prefix resolved images are served under.
const DefaultAssetPrefix = "/assets"

// WithAssetPrefix sets the URL prefix of resolved images.
func WithAssetPrefix(prefix string) Option { return func(l *Loader) { l.assetPrefix = prefix } }

// WithWorkers bounds the number of files validated at once (default GOMAXPROCS).
func WithWorkers(n int) Option { return func(l *Loader) { l.workers = n } }

// NewLoader creates a loader for the collection rooted at root.
func NewLoader(root string, schema *post.Schema, opts ...Option) *Loader {
	l := &Loader{
		root:        filepath.Clean(root),
		schema:      schema,
		log:         logger.Nop(),
		wpm:         200,
		assetPrefix: DefaultAssetPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the collection directory.
func (l *Loader) Root() string { return l.root }

// Schema returns the schema entries are validated against.
func (l *Loader) Schema() *post.Schema { return l.schema }

// Load enumerates and validates every content file.
// The error is only set when the collection itself cannot be read or ctx is
// done; per-file problems are reported in the Collection.
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	start := time.Now()

	files, err := l.enumerate(ctx)
	if err != nil {
		return nil, err
	}

	mapper := iter.Mapper[string, fileResult]{MaxGoroutines: l.workers}
	results := mapper.Map(files, func(file *string) fileResult {
		if ctx.Err() != nil {
			return fileResult{}
		}
		return l.loadFile(*file)
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", l.root, err)
	}

	coll := &Collection{Root: l.root, LoadedAt: time.Now()}
	owners := make(map[string]string, len(results))
	for _, res := range results {
		switch {
		case res.broken != nil:
			coll.Broken = append(coll.Broken, res.broken)
		case res.failure != nil:
			coll.Failures = append(coll.Failures, res.failure)
		default:
			if prev, taken := owners[res.entry.ID]; taken {
				coll.Broken = append(coll.Broken, &FileError{
					Path: res.entry.SourcePath,
					Err:  fmt.Errorf("id %q already used by %s", res.entry.ID, prev),
				})
				continue
			}
			owners[res.entry.ID] = res.entry.SourcePath
			coll.Entries = append(coll.Entries, res.entry)
		}
	}

	post.SortByDate(coll.Entries, func(e *Entry) time.Time { return e.Meta.PubDate })

	l.log.Debug("content loaded",
		logger.String("root", l.root),
		logger.Int("files", len(files)),
		logger.Int("entries", len(coll.Entries)),
		logger.Int("failures", len(coll.Failures)),
		logger.Int("broken", len(coll.Broken)),
		logger.Duration("took", time.Since(start)),
	)
	return coll, nil
}

// Files lists the content files under the root, in lexical order.
func (l *Loader) Files(ctx context.Context) ([]string, error) { return l.enumerate(ctx) }

// enumerate returns content files in lexical order, which is the
// enumeration order ties are sorted by.
func (l *Loader) enumerate(ctx context.Context) ([]string, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", l.root)
	}

	var files []string
	err = filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsContentFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}
	return files, nil
}

// IsContentFile reports whether p has a content extension.
func IsContentFile(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

type fileResult struct {
	entry   *Entry
	failure *post.ValidationFailure
	broken  *FileError
}

func (l *Loader) loadFile(file string) fileResult {
	rel := l.relPath(file)

	data, err := os.ReadFile(file)
	if err != nil {
		return fileResult{broken: &FileError{Path: rel, Err: err}}
	}

	raw, body, err := splitFrontmatter(data)
	if err != nil {
		return fileResult{broken: &FileError{Path: rel, Err: err}}
	}

	id := EntryID(rel)
	if s, ok := raw[KeySlug].(string); ok && strings.TrimSpace(s) != "" {
		id = strings.Trim(strings.TrimSpace(s), "/")
	}

	l.resolveHeroImage(raw, file)

	meta, err := l.schema.Validate(raw, id)
	if err != nil {
		var failure *post.ValidationFailure
		if errors.As(err, &failure) {
			return fileResult{failure: failure}
		}
		return fileResult{broken: &FileError{Path: rel, Err: err}}
	}

	stats := analyzeBody(body, meta.TOC)
	entry := &Entry{
		ID:             id,
		SourcePath:     rel,
		Meta:           meta,
		Body:           string(body),
		Headings:       stats.headings,
		WordCount:      stats.words,
		ReadingMinutes: readingMinutes(stats.words, l.wpm),
	}
	for _, k := range l.schema.UnknownKeys(raw) {
		if k != KeySlug {
			entry.UnknownKeys = append(entry.UnknownKeys, k)
		}
	}
	return fileResult{entry: entry}
}

func (l *Loader) relPath(file string) string {
	rel, err := filepath.Rel(l.root, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

// EntryID derives the collection id from a slash path relative to the root:
// extension dropped, each segment slugified, a trailing "index" removed.
func EntryID(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	segments := strings.Split(rel, "/")
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if slug := slugify(s); slug != "" {
			out = append(out, slug)
		}
	}
	if n := len(out); n > 1 && out[n-1] == "index" {
		out = out[:n-1]
	}
	return strings.Join(out, "/")
}

// slugify lower-cases s, turns spaces into dashes and drops punctuation
// other than '-' and '_'.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}
