package content

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// splitFrontmatter separates the raw metadata mapping from the markdown body.
// A file without frontmatter yields an empty mapping and the whole file as body,
// so the schema reports the missing required fields.
func splitFrontmatter(data []byte) (map[string]any, []byte, error) {
	raw := map[string]any{}
	body, err := frontmatter.MustParse(bytes.NewReader(data), &raw, formats...)
	switch {
	case errors.Is(err, frontmatter.ErrNotFound):
		return map[string]any{}, data, nil
	case err != nil:
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if raw == nil {
		// An empty block decodes to a nil map.
		raw = map[string]any{}
	}
	return raw, body, nil
}
