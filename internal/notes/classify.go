package notes

import (
	"regexp"
	"strings"
)

// NoDecisionsSentinel replaces an empty decisions bucket.
// Callers must treat it as "no decisions", not as content.
const NoDecisionsSentinel = "No clear items detected."

// unassignedOwner prefixes actions that carry no owner.
const unassignedOwner = "Unassigned"

// Bucket names a classification output list.
type Bucket string

const (
	BucketDecisions  Bucket = "decisions"
	BucketActions    Bucket = "actions"
	BucketHighlights Bucket = "highlights"
	BucketNone       Bucket = "" // line dropped
)

// Rule identifies which test classified a line.
type Rule string

const (
	RuleExplicitDecision Rule = "explicit_decision"
	RuleImplicitDecision Rule = "implicit_decision"
	RuleOwnedAction      Rule = "owned_action"
	RuleUnownedAction    Rule = "unowned_action"
	RuleHighlight        Rule = "highlight"
	RuleNone             Rule = "none"
)

// Result is the classified form of a block of notes.
type Result struct {
	Decisions  []string `json:"decisions"`
	Actions    []string `json:"actions"`
	Highlights []string `json:"highlights"`
}

// LineVerdict records how a single input line was classified.
type LineVerdict struct {
	Line   string `json:"line"`
	Bucket Bucket `json:"bucket"`
	Rule   Rule   `json:"rule"`
	Output string `json:"output,omitempty"` // entry appended to the bucket, if any
}

// Rule patterns, evaluated in this order. All case-insensitive.
var (
	explicitDecisionPattern = regexp.MustCompile(`(?i)decision:|agreed:|approved:|decided to|we will|confirmed|finalized`)

	// Only these markers are removed; "we will", "confirmed" and "finalized" stay.
	decisionMarkerPattern = regexp.MustCompile(`(?i)decision:|agreed:|approved:|decided to`)

	implicitDecisionPattern = regexp.MustCompile(`(?i)delay.*to phase|approve.*budget|increase.*budget`)

	ownedActionPattern = regexp.MustCompile(`(?i):.*fix.*by|:.*schedule|:.*prepare|:.*review|:.*update|:.*send`)

	// ownerSplitPattern splits "owner: action" on the first colon that has
	// at least one non-colon character before it.
	ownerSplitPattern = regexp.MustCompile(`([^:]+):\s*(.+)`)

	unownedActionPattern = regexp.MustCompile(`(?i)fix by|schedule for|prepare|review|update|send|next step`)

	highlightPattern = regexp.MustCompile(`(?i)\d|target|launch|bug|budget|risk|downtime|%|ready`)
)

// Classify splits notes into lines and sorts each non-empty line into at
// most one bucket. The first matching rule wins. If no decisions are found
// the decisions bucket holds NoDecisionsSentinel.
//
// Classify never fails and holds no state, so it is safe for concurrent use.
func Classify(text string) Result {
	result := Result{
		Decisions:  []string{},
		Actions:    []string{},
		Highlights: []string{},
	}

	for _, v := range ClassifyLines(text) {
		switch v.Bucket {
		case BucketDecisions:
			result.Decisions = append(result.Decisions, v.Output)
		case BucketActions:
			result.Actions = append(result.Actions, v.Output)
		case BucketHighlights:
			result.Highlights = append(result.Highlights, v.Output)
		}
	}

	if len(result.Decisions) == 0 {
		result.Decisions = []string{NoDecisionsSentinel}
	}

	return result
}

// ClassifyLines returns one verdict per non-empty trimmed line, dropped
// lines included, in input order.
func ClassifyLines(text string) []LineVerdict {
	lines := SplitLines(text)
	verdicts := make([]LineVerdict, 0, len(lines))
	for _, line := range lines {
		verdicts = append(verdicts, classifyLine(line))
	}
	return verdicts
}

// SplitLines splits on "\n", trims each line and drops empty ones.
func SplitLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func classifyLine(line string) LineVerdict {
	v := LineVerdict{Line: line, Bucket: BucketNone, Rule: RuleNone}

	switch {
	case explicitDecisionPattern.MatchString(line):
		v.Rule = RuleExplicitDecision
		if cleaned := stripDecisionMarker(line); cleaned != "" {
			v.Bucket = BucketDecisions
			v.Output = cleaned
		}

	case implicitDecisionPattern.MatchString(line):
		v.Rule = RuleImplicitDecision
		v.Bucket = BucketDecisions
		v.Output = line

	case ownedActionPattern.MatchString(line):
		v.Rule = RuleOwnedAction
		v.Bucket = BucketActions
		if owner, action, ok := splitOwner(line); ok {
			v.Output = owner + ": " + action
		} else {
			v.Output = unassignedOwner + ": " + line
		}

	case unownedActionPattern.MatchString(line):
		v.Rule = RuleUnownedAction
		v.Bucket = BucketActions
		v.Output = unassignedOwner + ": " + line

	case highlightPattern.MatchString(line):
		v.Rule = RuleHighlight
		v.Bucket = BucketHighlights
		v.Output = line
	}

	return v
}

// stripDecisionMarker removes the first decision marker and trims the rest.
func stripDecisionMarker(line string) string {
	loc := decisionMarkerPattern.FindStringIndex(line)
	if loc == nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
}

// splitOwner splits "owner: action". Both parts are trimmed.
func splitOwner(line string) (owner, action string, ok bool) {
	m := ownerSplitPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	owner = strings.TrimSpace(m[1])
	action = strings.TrimSpace(m[2])
	return owner, action, true
}

// IsSentinel reports whether s is a placeholder rather than real content.
func IsSentinel(s string) bool {
	return s == NoDecisionsSentinel
}

// HasDecisions reports whether the result holds at least one real decision.
func (r Result) HasDecisions() bool {
	return len(realItems(r.Decisions)) > 0
}

// realItems filters out sentinel entries.
func realItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !IsSentinel(item) {
			out = append(out, item)
		}
	}
	return out
}
