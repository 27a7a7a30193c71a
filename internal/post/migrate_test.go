package post

import (
	"reflect"
	"testing"
)

func TestMigrateSeriesFields(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		want        map[string]any
		wantChanged bool
	}{
		{
			name:        "both fields",
			raw:         map[string]any{"title": "t", "seriesName": "Go", "seriesSlug": "go"},
			want:        map[string]any{"title": "t", "seriesInfo": []any{"Go", "go"}},
			wantChanged: true,
		},
		{
			name:        "slug only",
			raw:         map[string]any{"seriesSlug": "go"},
			want:        map[string]any{"seriesInfo": []any{"", "go"}},
			wantChanged: true,
		},
		{
			name: "no legacy keys",
			raw:  map[string]any{"title": "t"},
			want: map[string]any{"title": "t"},
		},
		{
			name: "already migrated",
			raw:  map[string]any{"seriesInfo": []any{"A", "a"}, "seriesName": "B"},
			want: map[string]any{"seriesInfo": []any{"A", "a"}, "seriesName": "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := MigrateSeriesFields(tt.raw)
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MigrateSeriesFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMigratedFrontmatterValidates(t *testing.T) {
	raw := with(validRaw(), "seriesName", "Go", "seriesSlug", "go")
	migrated, _ := MigrateSeriesFields(raw)

	if _, ok := raw["seriesInfo"]; ok {
		t.Fatal("MigrateSeriesFields() mutated its input")
	}

	legacy, err := NewSchema(WithSeriesEncoding(SeriesFields)).Validate(raw, "p")
	if err != nil {
		t.Fatalf("legacy Validate() error = %v", err)
	}
	canonical, err := NewSchema().Validate(migrated, "p")
	if err != nil {
		t.Fatalf("canonical Validate() error = %v", err)
	}
	if !reflect.DeepEqual(legacy, canonical) {
		t.Errorf("records differ: %+v vs %+v", legacy, canonical)
	}
}
