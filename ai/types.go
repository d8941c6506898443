package ai

// EntityCategories lists the kinds of named entities phrase extractors look
// for in scientific text, in addition to short noun phrases.
var EntityCategories = []string{
	"celestial_body",
	"chemical",
	"disease",
	"experiment",
	"facility",
	"gene",
	"instrument",
	"mission",
	"organism",
	"organization",
	"person",
	"physical_process",
	"place",
	"protein",
	"spacecraft",
	"tissue",
}

// MaxPhraseWords is the longest noun phrase, in words, accepted as a tag candidate.
const MaxPhraseWords = 4
