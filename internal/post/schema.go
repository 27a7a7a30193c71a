package post

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/karlseguin/typed"
)

// Frontmatter keys.
const (
	KeyTitle           = "title"
	KeyDescription     = "description"
	KeyIsDraft         = "isDraft"
	KeyTOC             = "toc"
	KeyPubDate         = "pubDate"
	KeyUpdatedDate     = "updatedDate"
	KeyHeroImage       = "heroImage"
	KeyHeroImageCredit = "heroImageCredit"
	KeySeriesInfo      = "seriesInfo"
	KeySeriesName      = "seriesName"
	KeySeriesSlug      = "seriesSlug"
	KeyRepo            = "repo"
	KeyShareLinks      = "shareLinks"
)

// Substrings the share links must contain.
const (
	BlueskyHost = "bsky.app"
	ThreadsHost = "threads.net"
)

// SeriesEncoding selects how a post declares its series.
// The two encodings are alternative schema versions and never combined.
type SeriesEncoding int

const (
	// SeriesPair reads `seriesInfo: [name, slug]`.
	SeriesPair SeriesEncoding = iota
	// SeriesFields reads independent `seriesName` and `seriesSlug` keys.
	SeriesFields
)

func (e SeriesEncoding) String() string {
	if e == SeriesFields {
		return "series-fields"
	}
	return "series-pair"
}

// ParseSeriesEncoding maps a config value to a SeriesEncoding.
func ParseSeriesEncoding(s string) (SeriesEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "series-pair", "pair", "seriesinfo":
		return SeriesPair, nil
	case "series-fields", "fields":
		return SeriesFields, nil
	default:
		return SeriesPair, fmt.Errorf("unknown series encoding %q", s)
	}
}

// Option configures a Schema.
type Option func(*Schema)

// WithSeriesEncoding picks the series schema variant.
func WithSeriesEncoding(e SeriesEncoding) Option {
	return func(s *Schema) { s.series = e }
}

// field describes one frontmatter key: its optionality and how to decode it
// into the record. decode is only called for present, non-null values.
type field struct {
	key      string
	required bool
	decode   func(r *report, v any, m *PostMetadata)
}

// Schema validates raw frontmatter into PostMetadata.
// A Schema is immutable after NewSchema and safe for concurrent use.
type Schema struct {
	series SeriesEncoding
	fields []field
	known  map[string]bool
}

// NewSchema builds the blog post schema.
func NewSchema(opts ...Option) *Schema {
	s := &Schema{}
	for _, opt := range opts {
		opt(s)
	}

	s.fields = []field{
		{key: KeyTitle, required: true, decode: func(r *report, v any, m *PostMetadata) {
			m.Title = nonEmptyText(r, KeyTitle, v)
		}},
		{key: KeyDescription, required: true, decode: func(r *report, v any, m *PostMetadata) {
			m.Description = nonEmptyText(r, KeyDescription, v)
		}},
		{key: KeyIsDraft, decode: func(r *report, v any, m *PostMetadata) {
			m.IsDraft = boolean(r, KeyIsDraft, v)
		}},
		{key: KeyTOC, decode: func(r *report, v any, m *PostMetadata) {
			m.TOC = boolean(r, KeyTOC, v)
		}},
		{key: KeyPubDate, required: true, decode: func(r *report, v any, m *PostMetadata) {
			if t, ok := date(r, KeyPubDate, v); ok {
				m.PubDate = t
			}
		}},
		{key: KeyUpdatedDate, decode: func(r *report, v any, m *PostMetadata) {
			if t, ok := date(r, KeyUpdatedDate, v); ok {
				m.UpdatedDate = &t
			}
		}},
		{key: KeyHeroImage, decode: decodeHeroImage},
		{key: KeyHeroImageCredit, decode: decodeHeroImageCredit},
	}

	switch s.series {
	case SeriesFields:
		s.fields = append(s.fields,
			field{key: KeySeriesName, decode: func(r *report, v any, m *PostMetadata) {
				if name, ok := text(r, KeySeriesName, v); ok {
					seriesOf(m).Name = name
				}
			}},
			field{key: KeySeriesSlug, decode: func(r *report, v any, m *PostMetadata) {
				if slug, ok := text(r, KeySeriesSlug, v); ok {
					seriesOf(m).Slug = slug
				}
			}},
		)
	default:
		s.fields = append(s.fields, field{key: KeySeriesInfo, decode: decodeSeriesInfo})
	}

	s.fields = append(s.fields,
		field{key: KeyRepo, decode: func(r *report, v any, m *PostMetadata) {
			if repo, ok := text(r, KeyRepo, v); ok {
				m.Repo = repo
			}
		}},
		field{key: KeyShareLinks, decode: decodeShareLinks},
	)

	s.known = make(map[string]bool, len(s.fields))
	for _, f := range s.fields {
		s.known[f.key] = true
	}
	return s
}

// SeriesEncoding returns the variant this schema was built with.
func (s *Schema) SeriesEncoding() SeriesEncoding { return s.series }

// Validate checks raw frontmatter and returns the typed record.
// On failure the error is a *ValidationFailure listing every violation,
// tagged with contentID. Validate never mutates raw.
func (s *Schema) Validate(raw map[string]any, contentID string) (*PostMetadata, error) {
	r := &report{}
	m := &PostMetadata{}

	for _, f := range s.fields {
		v, present := raw[f.key]
		if !present || v == nil {
			if f.required {
				r.add(f.key, MissingRequiredField, "required field is missing")
			}
			continue
		}
		f.decode(r, v, m)
	}

	if failure := r.failure(contentID); failure != nil {
		return nil, failure
	}
	return m, nil
}

// UnknownKeys lists keys of raw this schema does not read, sorted.
func (s *Schema) UnknownKeys(raw map[string]any) []string {
	var unknown []string
	for k := range raw {
		if !s.known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ─────────────────────────────────────────────────────────────────
// Field decoders
// ─────────────────────────────────────────────────────────────────

func text(r *report, key string, v any) (string, bool) {
	s, ok := typed.Typed{key: v}.StringIf(key)
	if !ok {
		r.add(key, TypeMismatch, "expected text, got %s", typeName(v))
		return "", false
	}
	return s, true
}

func nonEmptyText(r *report, key string, v any) string {
	s, ok := text(r, key, v)
	if ok && strings.TrimSpace(s) == "" {
		r.add(key, ConstraintViolation, "must not be empty")
		return ""
	}
	return s
}

func boolean(r *report, key string, v any) bool {
	b, ok := v.(bool)
	if !ok {
		r.add(key, TypeMismatch, "expected boolean, got %s", typeName(v))
	}
	return b
}

func date(r *report, key string, v any) (t time.Time, ok bool) {
	t, err := coerceDate(v)
	switch {
	case errors.Is(err, errUnsupportedDate):
		r.add(key, TypeMismatch, "expected a date, got %s", typeName(v))
		return t, false
	case err != nil:
		r.add(key, DateParseFailure, "%v", err)
		return t, false
	}
	return t, true
}

// pair checks the tuple shape and reports on key itself when it is wrong.
func pair(r *report, key string, v any) ([]any, bool) {
	items, ok := asPair(v)
	if !ok {
		r.add(key, TypeMismatch, "expected a list of 2 elements, got %s", typeName(v))
		return nil, false
	}
	if len(items) != 2 {
		r.add(key, ArityMismatch, "expected exactly 2 elements, got %d", len(items))
		return nil, false
	}
	return items, true
}

func elem(key string, i int) string { return fmt.Sprintf("%s[%d]", key, i) }

func decodeHeroImage(r *report, v any, m *PostMetadata) {
	items, ok := pair(r, KeyHeroImage, v)
	if !ok {
		return
	}
	before := len(r.errs)

	var ref ImageRef
	switch img := items[0].(type) {
	case string:
		if !strings.HasPrefix(img, "/") {
			r.add(elem(KeyHeroImage, 0), ConstraintViolation, "image path %q must start with /", img)
		}
		ref.Path = img
	case *ImageAsset:
		if img == nil {
			r.add(elem(KeyHeroImage, 0), TypeMismatch, "expected an image, got null")
		}
		ref.Asset = img
	case ImageAsset:
		ref.Asset = &img
	default:
		r.add(elem(KeyHeroImage, 0), TypeMismatch, "expected an image, got %s", typeName(items[0]))
	}

	alt, _ := text(r, elem(KeyHeroImage, 1), items[1])

	if len(r.errs) == before {
		m.HeroImage = &HeroImage{Image: ref, Alt: alt}
	}
}

func decodeHeroImageCredit(r *report, v any, m *PostMetadata) {
	items, ok := pair(r, KeyHeroImageCredit, v)
	if !ok {
		return
	}
	before := len(r.errs)

	name, _ := text(r, elem(KeyHeroImageCredit, 0), items[0])
	link, isText := text(r, elem(KeyHeroImageCredit, 1), items[1])
	// The empty string is the explicit "no link" value.
	if isText && link != "" {
		if err := checkURL(link); err != nil {
			r.add(elem(KeyHeroImageCredit, 1), MalformedURL, "%v", err)
		}
	}

	if len(r.errs) == before {
		m.HeroImageCredit = &HeroImageCredit{Name: name, Link: link}
	}
}

func decodeSeriesInfo(r *report, v any, m *PostMetadata) {
	items, ok := pair(r, KeySeriesInfo, v)
	if !ok {
		return
	}
	before := len(r.errs)

	name, _ := text(r, elem(KeySeriesInfo, 0), items[0])
	slug, _ := text(r, elem(KeySeriesInfo, 1), items[1])

	if len(r.errs) == before {
		m.Series = &SeriesInfo{Name: name, Slug: slug}
	}
}

func seriesOf(m *PostMetadata) *SeriesInfo {
	if m.Series == nil {
		m.Series = &SeriesInfo{}
	}
	return m.Series
}

func decodeShareLinks(r *report, v any, m *PostMetadata) {
	items, ok := pair(r, KeyShareLinks, v)
	if !ok {
		return
	}
	before := len(r.errs)

	bsky := shareURL(r, elem(KeyShareLinks, 0), items[0], BlueskyHost)
	threads := shareURL(r, elem(KeyShareLinks, 1), items[1], ThreadsHost)

	if len(r.errs) == before {
		m.ShareLinks = &ShareLinks{Bluesky: bsky, Threads: threads}
	}
}

// shareURL checks well-formedness and the required substring independently,
// so a malformed link missing the substring reports both.
func shareURL(r *report, path string, v any, mustContain string) string {
	s, ok := text(r, path, v)
	if !ok {
		return ""
	}
	if err := checkURL(s); err != nil {
		r.add(path, MalformedURL, "%v", err)
	}
	if !strings.Contains(s, mustContain) {
		r.add(path, ConstraintViolation, "url must contain %q", mustContain)
	}
	return s
}
