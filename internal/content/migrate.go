package content

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/quill/internal/post"
)

// MigrateSeries rewrites the seriesName/seriesSlug keys of a content file
// into a seriesInfo pair. YAML frontmatter is edited in place, keeping
// comments and key order. TOML frontmatter is re-encoded.
// changed is false when the file needs no rewrite; out is then data.
func MigrateSeries(data []byte) (out []byte, changed bool, err error) {
	delim, block, rest, ok := frontmatterBlock(data)
	if !ok {
		return data, false, nil
	}

	var migrated []byte
	switch delim {
	case "---":
		migrated, changed, err = migrateYAML(block)
	default:
		migrated, changed, err = migrateTOML(block)
	}
	if err != nil || !changed {
		return data, false, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 16)
	buf.WriteString(delim + "\n")
	buf.Write(migrated)
	if !bytes.HasSuffix(migrated, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(delim + "\n")
	buf.Write(rest)
	return buf.Bytes(), true, nil
}

// frontmatterBlock finds the delimited block at the start of data.
func frontmatterBlock(data []byte) (delim string, block, rest []byte, ok bool) {
	first, after, found := bytes.Cut(data, []byte("\n"))
	if !found {
		return "", nil, nil, false
	}
	delim = string(bytes.TrimRight(first, " \t\r"))
	if delim != "---" && delim != "+++" {
		return "", nil, nil, false
	}

	for off := 0; off <= len(after); {
		line, next, more := bytes.Cut(after[off:], []byte("\n"))
		if string(bytes.TrimRight(line, " \t\r")) == delim {
			return delim, after[:off], next, true
		}
		if !more {
			break
		}
		off += len(line) + 1
	}
	return "", nil, nil, false
}

func migrateYAML(block []byte) ([]byte, bool, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	if _, changed := post.MigrateSeriesFields(raw); !changed {
		return nil, false, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	root := doc.Content[0]

	var name, slug *yaml.Node
	at := -1
	kept := make([]*yaml.Node, 0, len(root.Content))
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		switch k.Value {
		case post.KeySeriesName:
			name = v
		case post.KeySeriesSlug:
			slug = v
		default:
			kept = append(kept, k, v)
			continue
		}
		if at < 0 {
			at = len(kept)
		}
	}

	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: post.KeySeriesInfo}
	pair := &yaml.Node{
		Kind:    yaml.SequenceNode,
		Tag:     "!!seq",
		Style:   yaml.FlowStyle,
		Content: []*yaml.Node{textNode(name), textNode(slug)},
	}
	root.Content = slices.Insert(kept, at, key, pair)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, false, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, false, fmt.Errorf("encode frontmatter: %w", err)
	}
	return buf.Bytes(), true, nil
}

// textNode keeps a legacy value as a pair element. Missing and null values
// become the empty string.
func textNode(n *yaml.Node) *yaml.Node {
	if n == nil || n.Tag == "!!null" {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle}
	}
	cp := *n
	cp.HeadComment, cp.LineComment, cp.FootComment = "", "", ""
	return &cp
}

func migrateTOML(block []byte) ([]byte, bool, error) {
	var raw map[string]any
	if err := toml.Unmarshal(block, &raw); err != nil {
		return nil, false, fmt.Errorf("parse frontmatter: %w", err)
	}
	out, changed := post.MigrateSeriesFields(raw)
	if !changed {
		return nil, false, nil
	}
	b, err := toml.Marshal(out)
	if err != nil {
		return nil, false, fmt.Errorf("encode frontmatter: %w", err)
	}
	return b, true, nil
}
