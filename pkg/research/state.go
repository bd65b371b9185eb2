package research

import (
	"fmt"
	"slices"
)

// Field names a ResearchState field that a stage may return in an Update.
type Field string

const (
	FieldTask               Field = "task"
	FieldOriginalTask       Field = "original_task"
	FieldSourceLanguage     Field = "source_language"
	FieldPlan               Field = "plan"
	FieldStepsCompleted     Field = "steps_completed"
	FieldCurrentSearchQuery Field = "current_search_query"
	FieldReferences         Field = "references"
	FieldScrapedURLs        Field = "scraped_urls"
	FieldContent            Field = "content"
	FieldIsSufficient       Field = "is_sufficient"
	FieldReport             Field = "report"
)

// MergePolicy decides how a stage's value for a field is combined with the
// running state.
type MergePolicy int

const (
	// Overwrite replaces the current value.
	Overwrite MergePolicy = iota
	// Append adds the returned items after the current ones.
	Append
	// AppendUnique appends only items not already present, keeping first-seen order.
	AppendUnique
)

func (p MergePolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case Append:
		return "append"
	case AppendUnique:
		return "append-unique"
	default:
		return "unknown"
	}
}

var mergePolicies = map[Field]MergePolicy{
	FieldTask:               Overwrite,
	FieldOriginalTask:       Overwrite,
	FieldSourceLanguage:     Overwrite,
	FieldPlan:               Overwrite,
	FieldStepsCompleted:     Overwrite,
	FieldCurrentSearchQuery: Overwrite,
	FieldReferences:         AppendUnique,
	FieldScrapedURLs:        AppendUnique,
	FieldContent:            Append,
	FieldIsSufficient:       Overwrite,
	FieldReport:             Overwrite,
}

// PolicyFor returns the merge policy registered for field.
func PolicyFor(field Field) (MergePolicy, bool) {
	p, ok := mergePolicies[field]
	return p, ok
}

// Update is the partial result of one stage invocation. An empty Update
// leaves the state untouched.
type Update map[Field]any

// ResearchState is the record threaded through every stage of a run.
type ResearchState struct {
	Task               string   `json:"task"`
	OriginalTask       string   `json:"original_task"`
	SourceLanguage     string   `json:"source_language"`
	Plan               []string `json:"plan"`
	StepsCompleted     int      `json:"steps_completed"`
	CurrentSearchQuery string   `json:"current_search_query"`
	References         []string `json:"references"`
	ScrapedURLs        []string `json:"scraped_urls"`
	Content            []string `json:"content"`
	IsSufficient       bool     `json:"is_sufficient"`
	Report             string   `json:"report"`
}

// NewResearchState returns the initial state for task with every collection empty.
func NewResearchState(task, workingLanguage string) *ResearchState {
	return &ResearchState{
		Task:           task,
		OriginalTask:   task,
		SourceLanguage: workingLanguage,
		Plan:           []string{},
		References:     []string{},
		ScrapedURLs:    []string{},
		Content:        []string{},
	}
}

// Clone returns a deep copy so a stage can never alias the engine's slices.
func (s *ResearchState) Clone() ResearchState {
	c := *s
	c.Plan = slices.Clone(s.Plan)
	c.References = slices.Clone(s.References)
	c.ScrapedURLs = slices.Clone(s.ScrapedURLs)
	c.Content = slices.Clone(s.Content)
	return c
}

// Merge folds u into the state using the per-field policy table. Either every
// field of u is applied or, on error, none is.
func (s *ResearchState) Merge(u Update) error {
	next := s.Clone()
	for field, value := range u {
		policy, ok := mergePolicies[field]
		if !ok {
			return fmt.Errorf("merge: unknown field %q", field)
		}

		var err error
		switch policy {
		case Overwrite:
			err = next.overwrite(field, value)
		case Append, AppendUnique:
			err = next.accumulate(field, policy, value)
		}
		if err != nil {
			return err
		}
	}
	*s = next
	return nil
}

func (s *ResearchState) overwrite(field Field, value any) error {
	switch field {
	case FieldTask:
		return assign(field, value, &s.Task)
	case FieldOriginalTask:
		return assign(field, value, &s.OriginalTask)
	case FieldSourceLanguage:
		return assign(field, value, &s.SourceLanguage)
	case FieldCurrentSearchQuery:
		return assign(field, value, &s.CurrentSearchQuery)
	case FieldReport:
		return assign(field, value, &s.Report)
	case FieldIsSufficient:
		return assign(field, value, &s.IsSufficient)
	case FieldPlan:
		var plan []string
		if err := assign(field, value, &plan); err != nil {
			return err
		}
		s.Plan = slices.Clone(plan)
		return nil
	case FieldStepsCompleted:
		var steps int
		if err := assign(field, value, &steps); err != nil {
			return err
		}
		if steps < s.StepsCompleted {
			return fmt.Errorf("merge: %s cannot decrease from %d to %d", field, s.StepsCompleted, steps)
		}
		s.StepsCompleted = steps
		return nil
	}
	return fmt.Errorf("merge: field %q is not overwritable", field)
}

func (s *ResearchState) accumulate(field Field, policy MergePolicy, value any) error {
	var items []string
	if err := assign(field, value, &items); err != nil {
		return err
	}

	var dst *[]string
	switch field {
	case FieldReferences:
		dst = &s.References
	case FieldScrapedURLs:
		dst = &s.ScrapedURLs
	case FieldContent:
		dst = &s.Content
	default:
		return fmt.Errorf("merge: field %q is not accumulable", field)
	}

	if policy == Append {
		*dst = append(*dst, items...)
		return nil
	}
	*dst = appendUnique(*dst, items)
	return nil
}

func assign[T any](field Field, value any, dst *T) error {
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("merge: field %q expects %T, got %T", field, *dst, value)
	}
	*dst = v
	return nil
}

func appendUnique(dst, items []string) []string {
	seen := make(map[string]bool, len(dst)+len(items))
	for _, item := range dst {
		seen[item] = true
	}
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		dst = append(dst, item)
	}
	return dst
}

// pendingURLs returns references that have not been scraped yet, in reference order.
func pendingURLs(s ResearchState) []string {
	scraped := make(map[string]bool, len(s.ScrapedURLs))
	for _, u := range s.ScrapedURLs {
		scraped[u] = true
	}
	var pending []string
	for _, u := range s.References {
		if !scraped[u] {
			pending = append(pending, u)
		}
	}
	return pending
}
