package content

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/MrSnakeDoc/quill/internal/post"
)

// Entry is one valid post of the collection.
type Entry struct {
	ID         string             `json:"id"`
	SourcePath string             `json:"source_path"` // slash path relative to the collection root
	Meta       *post.PostMetadata `json:"meta"`

	Body           string    `json:"body"`
	Headings       []Heading `json:"headings,omitempty"` // only when Meta.TOC
	WordCount      int       `json:"word_count"`
	ReadingMinutes int       `json:"reading_minutes"`

	// UnknownKeys lists frontmatter keys the schema ignored.
	UnknownKeys []string `json:"unknown_keys,omitempty"`
}

// Heading is a table of contents item.
type Heading struct {
	Depth int    `json:"depth"`
	Slug  string `json:"slug"`
	Text  string `json:"text"`
}

// FileError is a file that could not be turned into frontmatter at all:
// unreadable, malformed YAML/TOML, or an id already taken by another file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// Collection is the result of one load.
type Collection struct {
	Root     string
	LoadedAt time.Time

	Entries  []*Entry                  // valid posts, newest first
	Failures []*post.ValidationFailure // files whose frontmatter failed the schema
	Broken   []*FileError
}

// Err combines every per-file problem, nil when the whole collection is valid.
func (c *Collection) Err() error {
	var err error
	for _, f := range c.Broken {
		err = multierr.Append(err, f)
	}
	for _, f := range c.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// FileCount is the number of content files seen by the load.
func (c *Collection) FileCount() int {
	return len(c.Entries) + len(c.Failures) + len(c.Broken)
}
