package keys

import "testing"

func TestSlug(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Park", "park"},
		{"spaces become hyphen", "National Park", "national-park"},
		{"runs collapse", "Art & Culture", "art-culture"},
		{"trims separators", "  --Museum!! ", "museum"},
		{"keeps digits", "Route 66 Stops", "route-66-stops"},
		{"non ascii is separator", "Café Olé", "caf-ol"},
		{"only symbols", "***", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slug(tc.input); got != tc.expected {
				t.Fatalf("Slug(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCategoryClass(t *testing.T) {
	cases := []struct {
		name       string
		categories []string
		expected   string
	}{
		{"no categories", nil, "category-default"},
		{"empty slice", []string{}, "category-default"},
		{"first category wins", []string{"Historic Site", "Museum"}, "category-historic-site"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CategoryClass(tc.categories); got != tc.expected {
				t.Fatalf("CategoryClass(%v) = %q; want %q", tc.categories, got, tc.expected)
			}
		})
	}
}

func TestDataset(t *testing.T) {
	if got := Dataset("US Attractions.json"); got != "datasets/us-attractions.json" {
		t.Fatalf("Dataset() = %q", got)
	}
}
