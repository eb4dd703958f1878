package core

// Categories are stored as opaque strings; this closed set exists only for
// the display boundary. Unknown stored values keep their text and fall back
// to CategoryFallback for presentation.
var CategoryOptions = []string{
	"Food",
	"Transport",
	"Shopping",
	"Rent",
	"Utilities",
	"Other",
}

var knownCategories = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, c := range CategoryOptions {
		m[c] = struct{}{}
	}
	// Legacy values that may still exist in stored data.
	for _, c := range []string{"Bills", "Entertainment", "Health", "Travel"} {
		m[c] = struct{}{}
	}
	return m
}()

// DisplayCategory maps a stored category onto the closed display set.
func DisplayCategory(category string) string {
	if _, ok := knownCategories[category]; ok {
		return category
	}
	return CategoryFallback
}
