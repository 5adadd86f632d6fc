package compatibility

import (
	stderrors "errors"
	"fmt"
	"math"
	"reflect"

	"collabquest/internal/models"
)

const (
	ReasonBothEmpty   = "Both users have no skills listed yet"
	ReasonOneEmpty    = "One user has no skills, limited collaboration potential"
	ReasonDiverse     = "Diverse skill sets • Can learn from each other"
	ReasonNoSkills    = "No skills to compare"
	ReasonUnavailable = "Compatibility calculation unavailable"

	exactWeight         = 50.0
	categoryWeight      = 40.0
	complementWeight    = 10.0
	complementSaturates = 50.0
)

// Outcome says which path produced a result.
type Outcome string

const (
	OutcomeComputed    Outcome = "computed"
	OutcomeEmpty       Outcome = "empty"
	OutcomeFallback    Outcome = "fallback"
	OutcomeUnavailable Outcome = "unavailable"
)

// Score rates how well two skill collections fit together on a 0-100 scale.
// It is commutative and never panics; malformed input degrades to a simpler
// overlap score.
func Score(a, b interface{}) models.CompatibilityResult {
	res, _, _ := evaluate(a, b)
	return res
}

// evaluate returns the result, the path taken and the error that forced a fallback.
func evaluate(a, b interface{}) (res models.CompatibilityResult, outcome Outcome, cause error) {
	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("scoring panicked: %v", r)
			res, outcome = fallbackScore(a, b)
		}
	}()

	res, outcome, cause = score(a, b)
	if cause != nil {
		res, outcome = fallbackScore(a, b)
	}
	return res, outcome, cause
}

func score(a, b interface{}) (models.CompatibilityResult, Outcome, error) {
	skills1, err1 := Normalize(a)
	skills2, err2 := Normalize(b)
	if err := stderrors.Join(err1, err2); err != nil {
		return models.CompatibilityResult{}, "", err
	}

	switch {
	case len(skills1) == 0 && len(skills2) == 0:
		return models.CompatibilityResult{Score: 50, Reason: ReasonBothEmpty}, OutcomeEmpty, nil
	case len(skills1) == 0 || len(skills2) == 0:
		return models.CompatibilityResult{Score: 40, Reason: ReasonOneEmpty}, OutcomeEmpty, nil
	}

	set1, set2 := toSet(skills1), toSet(skills2)
	exact := intersection(set1, set2)

	cats1, cats2 := categorySet(skills1), categorySet(skills2)
	catMatches := intersection(cats1, cats2)
	catTotal := len(cats1) + len(cats2) - catMatches

	exactRatio := float64(exact) / float64(max(len(skills1), len(skills2)))
	catRatio := 0.0
	if catTotal > 0 {
		catRatio = float64(catMatches) / float64(catTotal)
	}
	complementarity := math.Min(complementSaturates, float64(len(skills1)+len(skills2))/2) / complementSaturates

	s := exactRatio*exactWeight + catRatio*categoryWeight + complementarity*complementWeight
	s = math.Max(0, math.Min(100, s))

	return models.CompatibilityResult{Score: round1(s), Reason: reason(exact, catMatches)}, OutcomeComputed, nil
}

func reason(exact, catMatches int) string {
	switch {
	case exact > 0:
		return fmt.Sprintf("%d exact skill match%s • Good collaboration fit", exact, plural(exact, "es", ""))
	case catMatches > 0:
		return fmt.Sprintf("Strong in %d skill categor%s • Complementary strengths", catMatches, plural(catMatches, "ies", "y"))
	}
	return ReasonDiverse
}

// fallbackScore compares the raw elements without normalizing them. If they
// cannot be compared at all the neutral "unavailable" result is returned.
func fallbackScore(a, b interface{}) (res models.CompatibilityResult, outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			res, outcome = models.CompatibilityResult{Score: 50, Reason: ReasonUnavailable}, OutcomeUnavailable
		}
	}()

	set1, ok1 := rawSet(a)
	set2, ok2 := rawSet(b)
	if !ok1 || !ok2 {
		return models.CompatibilityResult{Score: 50, Reason: ReasonUnavailable}, OutcomeUnavailable
	}

	common := intersection(set1, set2)
	total := len(set1) + len(set2) - common
	if total == 0 {
		return models.CompatibilityResult{Score: 50, Reason: ReasonNoSkills}, OutcomeFallback
	}

	s := 40 + float64(common)/float64(total)*50
	return models.CompatibilityResult{
		Score:  round1(s),
		Reason: fmt.Sprintf("%d common skill%s", common, plural(common, "s", "")),
	}, OutcomeFallback
}

// rawSet builds a set of the top-level elements. ok is false when an element
// is not hashable.
func rawSet(raw interface{}) (map[interface{}]struct{}, bool) {
	elems, err := elements(raw)
	if err != nil {
		return nil, false
	}
	set := make(map[interface{}]struct{}, len(elems))
	for _, e := range elems {
		if e != nil && !reflect.TypeOf(e).Comparable() {
			return nil, false
		}
		set[e] = struct{}{}
	}
	return set, true
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func categorySet(tokens []string) map[models.Category]struct{} {
	set := make(map[models.Category]struct{}, len(tokens))
	for _, t := range tokens {
		set[Categorize(t)] = struct{}{}
	}
	return set
}

func intersection[K comparable](a, b map[K]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func plural(n int, many, one string) string {
	if n == 1 {
		return one
	}
	return many
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
