package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixViews is the prefix for per-post view counters
	KeyPrefixViews = "quill:views:"
	// KeyKnownPosts is the set of every post ID that ever had a counter
	KeyKnownPosts = "quill:posts:known"
	// KeyRetiredPosts is the hash of retired post IDs to their retirement unix time
	KeyRetiredPosts = "quill:posts:retired"
)

// ViewsKey returns the Redis key for a post's view counter
func ViewsKey(id string) string {
	return KeyPrefixViews + id
}

// ExtractPostID extracts the post ID from a view counter key
func ExtractPostID(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixViews) || len(key) == len(KeyPrefixViews) {
		return "", fmt.Errorf("invalid views key: %s", key)
	}
	return key[len(KeyPrefixViews):], nil
}
