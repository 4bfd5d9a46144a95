package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// RecurringDefinition is the template a recurring series is generated from.
// Either EndDate or OccurrenceCount bounds the series; when both are zero the
// series is open-ended and only the expansion horizon limits it.
type RecurringDefinition struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      Money       `json:"-"`
	Category    Category    `json:"category"`
	CategoryID  string      `json:"categoryId,omitempty"`
	TagIDs      []string    `json:"tagIds,omitempty"`
	From        *AccountRef `json:"from,omitempty"`
	To          *AccountRef `json:"to,omitempty"`
	Frequency   Frequency   `json:"frequency"`
	StartDate   Date        `json:"startDate"`
	EndDate     Date        `json:"endDate,omitzero"`
	Occurrences int         `json:"occurrences,omitempty"` // implied count, 0 = unbounded
}

// Occurrence is one materialized, dated instance of a recurring definition.
// Occurrences of one definition stay date-ordered and one-to-one with
// frequency steps from the definition's start date.
type Occurrence struct {
	ID            string `json:"id"`
	DefinitionID  string `json:"definitionId"`
	ScheduledDate Date   `json:"scheduledDate"`
	Amount        Money  `json:"-"`
	Status        Status `json:"status"`
	Notes         string `json:"notes,omitempty"`
}

// Expand materializes the definition into occurrences up to the horizon,
// skipping dates that already exist, and returns only the newly created ones.
// The n-th occurrence is always n frequency steps from the start date, so a
// re-expansion after deletes or a pushed horizon fills exactly the gaps.
func (d RecurringDefinition) Expand(existing []Occurrence, horizon Date) []Occurrence {
	if d.StartDate.IsZero() {
		return nil
	}
	end := horizon
	if !d.EndDate.IsZero() {
		end = MinDate(d.EndDate, horizon)
	}

	// One slot per frequency step inside the window. Occurrences stay
	// one-to-one with slots even after a scoped edit moved their dates, so
	// expansion is bounded by the slot count, not by date membership: an
	// existing occurrence fills a slot no matter where it was shifted to.
	var slots []Date
	for step := 0; ; step++ {
		if d.Occurrences > 0 && step >= d.Occurrences {
			break
		}
		on := d.Frequency.Step(d.StartDate, step)
		if on.After(end) {
			break
		}
		slots = append(slots, on)
	}

	seen := make(map[Date]bool, len(existing))
	for _, o := range existing {
		seen[o.ScheduledDate] = true
	}

	// Fill from the last slot backwards: a pushed horizon leaves the trailing
	// slots empty, a deleted event leaves an interior one, and walking
	// backwards reaches both without touching slots a shifted occurrence
	// already accounts for.
	var created []Occurrence
	for i := len(slots) - 1; i >= 0; i-- {
		if len(existing)+len(created) >= len(slots) {
			break
		}
		if seen[slots[i]] {
			continue
		}
		created = append(created, Occurrence{
			ID:            uuid.NewString(),
			DefinitionID:  d.ID,
			ScheduledDate: slots[i],
			Amount:        d.Amount,
			Status:        Scheduled,
		})
	}
	sort.Slice(created, func(i, j int) bool { return created[i].ScheduledDate.Before(created[j].ScheduledDate) })
	return created
}

// Scope is the breadth of a recurring-series edit or delete.
type Scope string

const (
	OnlyEvent        Scope = "only_event"
	FromEventForward Scope = "from_event_forward"
	AllEvents        Scope = "all_events"
)

// ParseScope parses a string into a Scope.
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(s))
	switch scope {
	case OnlyEvent, FromEventForward, AllEvents:
		return scope, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// ResolveScope selects the occurrences an operation applies to: the target
// alone, the target and everything scheduled on or after it, or the whole
// series regardless of date.
func ResolveScope(scope Scope, occurrences []Occurrence, target Occurrence) []Occurrence {
	switch scope {
	case OnlyEvent:
		for _, o := range occurrences {
			if o.ID == target.ID {
				return []Occurrence{o}
			}
		}
		return nil
	case FromEventForward:
		var selected []Occurrence
		for _, o := range occurrences {
			if !o.ScheduledDate.Before(target.ScheduledDate) {
				selected = append(selected, o)
			}
		}
		return selected
	case AllEvents:
		return occurrences
	default:
		return nil
	}
}

// OccurrenceEdit is the set of new values of a scoped edit. Nil fields leave
// the corresponding occurrence field unchanged; a non-nil Date shifts every
// selected occurrence by the same day delta.
type OccurrenceEdit struct {
	Date   *Date
	Amount *Money
	Status *Status
	Notes  *string
}

// DefinitionPatch holds the shared, non-schedule fields of a scoped edit.
// They always update the definition itself, regardless of scope.
type DefinitionPatch struct {
	Description *string
	Category    *Category
	CategoryID  *string
	TagIDs      []string
}

// ScopedEdit is the computed outcome of an edit: the (possibly shifted)
// definition and the mutated copies of the selected occurrences, date-ordered.
// Each occurrence is submitted as an independent mutation request.
type ScopedEdit struct {
	Definition  RecurringDefinition
	Occurrences []Occurrence
}

// ApplyScopedEdit computes the mutations of a scoped occurrence edit. The
// target's status transition is validated up front; a forward or all-events
// edit that selects nothing is a no-op, not an error.
func ApplyScopedEdit(scope Scope, def RecurringDefinition, occurrences []Occurrence, targetID string, edit OccurrenceEdit, patch DefinitionPatch) (ScopedEdit, error) {
	target, err := findOccurrence(occurrences, targetID)
	if err != nil {
		return ScopedEdit{}, err
	}
	if edit.Status != nil && *edit.Status != target.Status && !target.Status.CanTransitionTo(*edit.Status) {
		return ScopedEdit{}, invalidf("occurrence %s cannot move from %s to %s", target.ID, target.Status, *edit.Status)
	}

	deltaDays := 0
	if edit.Date != nil {
		deltaDays = target.ScheduledDate.DaysUntil(*edit.Date)
	}

	result := ScopedEdit{Definition: applyPatch(def, patch)}
	for _, o := range ResolveScope(scope, occurrences, target) {
		o.ScheduledDate = o.ScheduledDate.Add(deltaDays)
		if edit.Amount != nil {
			o.Amount = *edit.Amount
		}
		if edit.Status != nil {
			o.Status = *edit.Status
		}
		if edit.Notes != nil {
			o.Notes = *edit.Notes
		}
		result.Occurrences = append(result.Occurrences, o)
	}
	sort.SliceStable(result.Occurrences, func(i, j int) bool {
		return result.Occurrences[i].ScheduledDate.Before(result.Occurrences[j].ScheduledDate)
	})

	// An all-events shift moves the whole series, so the anchor moves with it.
	if scope == AllEvents && deltaDays != 0 {
		result.Definition.StartDate = result.Definition.StartDate.Add(deltaDays)
		if !result.Definition.EndDate.IsZero() {
			result.Definition.EndDate = result.Definition.EndDate.Add(deltaDays)
		}
	}
	return result, nil
}

// ScopedDelete is the computed outcome of a delete: which occurrences go,
// whether the whole definition goes, and the truncated definition otherwise.
type ScopedDelete struct {
	OccurrenceIDs    []string
	DeleteDefinition bool
	Definition       RecurringDefinition
}

// ApplyScopedDelete computes the deletions of a scoped occurrence delete.
// Deleting the last remaining occurrences deletes the definition itself; a
// forward delete that spares earlier occurrences truncates the definition's
// end date to the day before the target instead.
func ApplyScopedDelete(scope Scope, def RecurringDefinition, occurrences []Occurrence, targetID string) (ScopedDelete, error) {
	target, err := findOccurrence(occurrences, targetID)
	if err != nil {
		return ScopedDelete{}, err
	}

	selected := ResolveScope(scope, occurrences, target)
	result := ScopedDelete{Definition: def}
	for _, o := range selected {
		result.OccurrenceIDs = append(result.OccurrenceIDs, o.ID)
	}

	switch scope {
	case AllEvents:
		result.DeleteDefinition = true
	case OnlyEvent, FromEventForward:
		if len(selected) == len(occurrences) {
			result.DeleteDefinition = true
			break
		}
		if scope == FromEventForward {
			result.Definition.EndDate = target.ScheduledDate.Add(-1)
		}
	}
	return result, nil
}

// RequireRecurring rejects scope operations aimed at a one-time posting
// before any mutation is issued.
func RequireRecurring(p Posting) error {
	if p.PaymentType != Recurring {
		return invalidf("posting %s is not recurring, scoped operations do not apply", p.ID)
	}
	return nil
}

func findOccurrence(occurrences []Occurrence, id string) (Occurrence, error) {
	for _, o := range occurrences {
		if o.ID == id {
			return o, nil
		}
	}
	return Occurrence{}, fmt.Errorf("occurrence %q: %w", id, ErrNotFound)
}

func applyPatch(def RecurringDefinition, patch DefinitionPatch) RecurringDefinition {
	if patch.Description != nil {
		def.Description = *patch.Description
	}
	if patch.Category != nil {
		def.Category = *patch.Category
	}
	if patch.CategoryID != nil {
		def.CategoryID = *patch.CategoryID
	}
	if patch.TagIDs != nil {
		def.TagIDs = patch.TagIDs
	}
	return def
}
