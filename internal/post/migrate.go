package post

// MigrateSeriesFields returns a copy of raw where the legacy seriesName and
// seriesSlug keys are folded into a seriesInfo pair. changed is false when
// raw carries neither legacy key or already has seriesInfo, in which case
// the copy equals raw.
func MigrateSeriesFields(raw map[string]any) (out map[string]any, changed bool) {
	out = make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}

	name, hasName := raw[KeySeriesName]
	slug, hasSlug := raw[KeySeriesSlug]
	if !hasName && !hasSlug {
		return out, false
	}
	if _, exists := raw[KeySeriesInfo]; exists {
		return out, false
	}

	if name == nil {
		name = ""
	}
	if slug == nil {
		slug = ""
	}
	delete(out, KeySeriesName)
	delete(out, KeySeriesSlug)
	out[KeySeriesInfo] = []any{name, slug}
	return out, true
}
