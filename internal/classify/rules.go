package classify

import "regexp"

// RulesVersion identifies the rule tables below. Bump it on any change so
// stored ClassifiedAt timestamps can be tied to the rules that produced
// them, and keep the corpus in classify_test.go green.
const RulesVersion = 3

// rnRegex matches the target credential as a role: the abbreviation
// (including dotted "R.N." and hyphen/space variants of the full name).
// Matching is against lowercased, hyphen-flattened text.
var rnRegex = regexp.MustCompile(`\b(?:rn|r\.n\.?|registered\s+nurse)\b`)

// titleExclusions lists roles that are not the target credential even when
// the posting mentions nurses: other credential levels, assistive and
// technician roles. Each entry is matched as a whole-word phrase.
var titleExclusions = []string{
	"lpn",
	"licensed practical nurse",
	"lvn",
	"licensed vocational nurse",
	"cna",
	"certified nursing assistant",
	"nursing assistant",
	"nurse aide",
	"nurse apprentice",
	"nurse extern",
	"nursing student",
	"nurse technician",
	"nurse tech",
	"patient care technician",
	"patient care tech",
	"pct",
	"medical assistant",
	"surgical technologist",
	"surgical tech",
	"phlebotomist",
	"unit secretary",
	"monitor technician",
	"home health aide",
	"caregiver",
	"dietary aide",
}

var titleExclusionRegexes = compilePhrases(titleExclusions)

// contextExclusions are phrasings where the credential appears as someone
// the role works alongside or under, not as the role itself.
var contextExclusions = []*regexp.Regexp{
	regexp.MustCompile(`\bassist(?:s|ing)?\s+(?:the\s+|an?\s+)?(?:rn|registered\s+nurse)\b`),
	regexp.MustCompile(`\bsupport(?:s|ing)?\s+(?:the\s+|an?\s+)?(?:rn|registered\s+nurse)\b`),
	regexp.MustCompile(`\bunder\s+(?:the\s+)?(?:direct\s+)?supervision\s+of\s+(?:an?\s+|the\s+)?(?:rn|registered\s+nurse)\b`),
	regexp.MustCompile(`\bunder\s+(?:the\s+)?direction\s+of\s+(?:an?\s+|the\s+)?(?:rn|registered\s+nurse)\b`),
	regexp.MustCompile(`\breports?\s+to\s+(?:an?\s+|the\s+)?(?:rn|registered\s+nurse|charge\s+nurse)\b`),
	regexp.MustCompile(`\b(?:rn|registered\s+nurse)\s+supervision\b`),
	regexp.MustCompile(`\bdelegated\s+by\s+(?:an?\s+|the\s+)?(?:rn|registered\s+nurse)\b`),
}

// placeholderPatterns flag detail pages that were published without a real
// description.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bjob\s+description\s+coming\s+soon\b`),
	regexp.MustCompile(`\bdescription\s+(?:is\s+)?not\s+(?:yet\s+)?available\b`),
	regexp.MustCompile(`\bno\s+description\s+provided\b`),
	regexp.MustCompile(`\bcheck\s+back\s+(?:soon|later)\b`),
	regexp.MustCompile(`\bapply\s+(?:now|today)\s+to\s+learn\s+more\b`),
	regexp.MustCompile(`\bposition\s+details\s+to\s+follow\b`),
	regexp.MustCompile(`\bthis\s+is\s+a\s+pipeline\s+(?:posting|requisition)\b`),
}

// minDescriptionLen is the shortest plain-text description we treat as a
// real posting. Anything shorter is a stub even if it names the role.
const minDescriptionLen = 120

// placeholderMaxLen guards the boilerplate check: a long description that
// happens to contain a placeholder phrase is still a real posting.
const placeholderMaxLen = 400

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return out
}
