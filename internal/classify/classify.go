// Package classify decides whether a raw listing is a genuine posting for
// the target credential (RN). The pipeline is pure and rule-table driven;
// ambiguity rejects, since a wrong-role posting pollutes the board worse
// than a missed one.
package classify

import (
	"strings"

	"github.com/nursewire/nursewire/internal/model"
)

// Stage names the pipeline stage that decided a job's fate.
type Stage string

const (
	StageTitleExclusion   Stage = "title_exclusion"
	StageContextExclusion Stage = "context_exclusion"
	StagePlaceholder      Stage = "placeholder"
	StagePositive         Stage = "positive_requirement"
)

// Decision is the classifier's verdict for one raw job.
type Decision struct {
	Accept bool
	Stage  Stage  // stage that decided
	Reason string // human-readable, for skip-rate logs
}

// Classifier runs the four-stage decision pipeline. The zero value is not
// usable; construct with New.
type Classifier struct {
	minDescLen int
}

// New returns a classifier using the package rule tables. minDescLen
// overrides the placeholder length threshold when positive.
func New(minDescLen int) *Classifier {
	if minDescLen <= 0 {
		minDescLen = minDescriptionLen
	}
	return &Classifier{minDescLen: minDescLen}
}

// Classify runs the job through the pipeline. Each stage short-circuits to
// reject; acceptance requires surviving all of them plus the explicit
// positive requirement.
func (c *Classifier) Classify(job model.RawJob) Decision {
	title := normalizeForMatch(job.Title)
	desc := normalizeForMatch(job.Description)

	// Stage 1: title exclusion.
	for i, re := range titleExclusionRegexes {
		if re.MatchString(title) {
			return Decision{
				Stage:  StageTitleExclusion,
				Reason: "title matches excluded role " + titleExclusions[i],
			}
		}
	}

	// Stage 2: context exclusion. If the title itself asserts the role the
	// stage does not apply; otherwise every credential mention in the
	// description must fall outside an excluding context.
	if !rnRegex.MatchString(title) {
		mentions := rnRegex.FindAllStringIndex(desc, -1)
		if len(mentions) > 0 && allWithinContextExclusions(desc, mentions) {
			return Decision{
				Stage:  StageContextExclusion,
				Reason: "credential appears only in excluding context",
			}
		}
	}

	// Stage 3: placeholder detection.
	if len(desc) < c.minDescLen {
		return Decision{
			Stage:  StagePlaceholder,
			Reason: "description too short to be a real posting",
		}
	}
	if len(desc) < placeholderMaxLen {
		for _, re := range placeholderPatterns {
			if re.MatchString(desc) {
				return Decision{
					Stage:  StagePlaceholder,
					Reason: "description matches placeholder boilerplate",
				}
			}
		}
	}

	// Stage 4: positive requirement.
	if rnRegex.MatchString(title) || rnRegex.MatchString(desc) {
		return Decision{Accept: true, Stage: StagePositive}
	}
	return Decision{
		Stage:  StagePositive,
		Reason: "credential not named in title or description",
	}
}

// allWithinContextExclusions reports whether every credential mention lies
// inside some excluding-context match.
func allWithinContextExclusions(desc string, mentions [][]int) bool {
	var ranges [][]int
	for _, re := range contextExclusions {
		ranges = append(ranges, re.FindAllStringIndex(desc, -1)...)
	}
	if len(ranges) == 0 {
		return false
	}

	for _, m := range mentions {
		covered := false
		for _, r := range ranges {
			if m[0] >= r[0] && m[1] <= r[1] {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// normalizeForMatch lowercases, flattens hyphens and slashes to spaces, and
// collapses whitespace so the rule tables tolerate formatting variants
// ("Med-Surg RN", "REGISTERED  NURSE", "Per-Diem").
func normalizeForMatch(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", " ", "–", " ", "/", " ", "(", " ", ")", " ", ",", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
