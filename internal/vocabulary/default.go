package vocabulary

// DefaultCategories is the compiled-in leisure taxonomy. Catalog tags are
// curated against these exact strings.
var DefaultCategories = []Category{
	{Name: "Music & Entertainment", Topics: []string{
		"big band", "jazz", "rock and roll", "country music", "broadway", "classic movies", "radio shows", "television",
	}},
	{Name: "Sports & Games", Topics: []string{
		"baseball", "football", "golf", "fishing", "bowling", "card games", "puzzles",
	}},
	{Name: "Home & Garden", Topics: []string{
		"gardening", "flowers", "home repair", "woodworking", "antiques",
	}},
	{Name: "Food & Cooking", Topics: []string{
		"cooking", "baking", "family recipes", "diners",
	}},
	{Name: "Travel & Places", Topics: []string{
		"road trips", "national parks", "small towns", "city life", "trains",
	}},
	{Name: "Work & Trades", Topics: []string{
		"farming", "teaching", "nursing", "military", "factory work", "office work", "small business",
	}},
	{Name: "History & Events", Topics: []string{
		"history", "world war ii", "space race", "the great depression", "civil rights",
	}},
	{Name: "Nature & Animals", Topics: []string{
		"birds", "dogs", "cats", "horses", "the seasons",
	}},
	{Name: "Arts & Crafts", Topics: []string{
		"painting", "knitting", "sewing", "quilting", "photography",
	}},
	{Name: "Family & Community", Topics: []string{
		"family", "childhood", "school days", "holidays", "friendship",
	}},
	{Name: "Faith & Reflection", Topics: []string{
		"faith", "poetry", "gratitude", "humor",
	}},
}

var defaultVocabulary = mustNew(DefaultCategories)

// Default returns the compiled-in vocabulary.
func Default() *Vocabulary {
	return defaultVocabulary
}

func mustNew(categories []Category) *Vocabulary {
	v, err := New(categories)
	if err != nil {
		panic(err)
	}
	return v
}
