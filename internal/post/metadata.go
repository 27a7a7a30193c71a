package post

import "time"

// PostMetadata is the validated frontmatter of one blog post.
//
// It is built once per content file by Schema.Validate and must be treated
// as read-only afterwards: the listing and rendering layers share the same
// pointer across goroutines.
type PostMetadata struct {
	// ─────────────────────────────
	// Required
	// ─────────────────────────────

	Title       string    `json:"title"`
	Description string    `json:"description"`
	PubDate     time.Time `json:"pubDate"`

	// ─────────────────────────────
	// Flags (default false)
	// ─────────────────────────────

	IsDraft bool `json:"isDraft"`
	TOC     bool `json:"toc"`

	// ─────────────────────────────
	// Optional
	// ─────────────────────────────

	UpdatedDate     *time.Time       `json:"updatedDate,omitempty"`
	HeroImage       *HeroImage       `json:"heroImage,omitempty"`
	HeroImageCredit *HeroImageCredit `json:"heroImageCredit,omitempty"`
	Series          *SeriesInfo      `json:"series,omitempty"`
	Repo            string           `json:"repo,omitempty"`
	ShareLinks      *ShareLinks      `json:"shareLinks,omitempty"`
}

// HeroImage is the `[image, alt]` pair.
type HeroImage struct {
	Image ImageRef `json:"image"`
	Alt   string   `json:"alt"`
}

// ImageRef is either a site-absolute path ("/img/hero.png") or an image the
// content loader already resolved next to the post. Exactly one is set.
type ImageRef struct {
	Path  string      `json:"path,omitempty"`
	Asset *ImageAsset `json:"asset,omitempty"`
}

// Src returns the URL the renderer should use for the image.
func (r ImageRef) Src() string {
	if r.Asset != nil {
		return r.Asset.Src
	}
	return r.Path
}

// ImageAsset is a resolved image handle.
type ImageAsset struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// HeroImageCredit is the `[creditName, creditLink]` pair.
// An empty Link means the credit has no link.
type HeroImageCredit struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// HasLink reports whether the credit should be rendered as a link.
func (c HeroImageCredit) HasLink() bool { return c.Link != "" }

// SeriesInfo groups a post into a named series.
type SeriesInfo struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ShareLinks is the `[blueskyURL, threadsURL]` pair.
type ShareLinks struct {
	Bluesky string `json:"bluesky"`
	Threads string `json:"threads"`
}

// LastModified returns UpdatedDate when set, PubDate otherwise.
func (m *PostMetadata) LastModified() time.Time {
	if m.UpdatedDate != nil {
		return *m.UpdatedDate
	}
	return m.PubDate
}
