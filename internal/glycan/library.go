package glycan

// defaultCompositions is the built-in library of common N-glycan
// compositions, grouped by structural class.
var defaultCompositions = []string{
	// Mannose series; H3N2 and H4N2 have fewer than five hexoses and
	// classify as complex/hybrid, the rest as high-mannose
	"H3N2", "H4N2", "H5N2", "H6N2", "H7N2", "H8N2", "H9N2",

	// Complex/hybrid, non-fucosylated, non-sialylated
	"H3N3", "H3N4", "H4N4", "H5N4", "H6N4", "H3N5", "H4N5", "H5N5", "H6N5",

	// Fucosylated
	"H3N3F1", "H3N4F1", "H4N4F1", "H5N4F1", "H6N4F1",
	"H3N5F1", "H4N5F1", "H5N5F1", "H6N5F1",
	"H3N4F2", "H4N4F2", "H5N4F2",

	// Sialylated
	"H3N3A1", "H3N4A1", "H4N4A1", "H5N4A1", "H6N4A1",
	"H3N4A2", "H4N4A2", "H5N4A2", "H6N4A2",
	"H3N5A2", "H4N5A2", "H5N5A2", "H6N5A2",
	"H4N5A3", "H5N5A3", "H6N5A3",
	"H5N6A3", "H6N6A3",

	// Sialofucosylated
	"H3N4F1A1", "H4N4F1A1", "H5N4F1A1", "H6N4F1A1",
	"H3N4F1A2", "H4N4F1A2", "H5N4F1A2", "H6N4F1A2",
	"H3N5F1A2", "H4N5F1A2", "H5N5F1A2", "H6N5F1A2",
	"H4N5F1A3", "H5N5F1A3", "H6N5F1A3",
	"H5N6F1A3", "H6N6F1A3",
}

// DefaultLibrary returns the built-in N-glycan composition library.
func DefaultLibrary() []Glycan {
	glycans := make([]Glycan, 0, len(defaultCompositions))
	for _, c := range defaultCompositions {
		g, err := Parse(c)
		if err != nil {
			// The built-in list is fixed at compile time; a parse failure
			// here is a programming error.
			panic(err)
		}
		glycans = append(glycans, g)
	}
	return glycans
}
