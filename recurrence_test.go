package ledger

import (
	"errors"
	"testing"
	"time"
)

func monthlyDef(amount Money) RecurringDefinition {
	return RecurringDefinition{
		ID:          "def1",
		Description: "gym",
		Amount:      amount,
		Category:    CategorySubscription,
		Frequency:   Monthly,
		StartDate:   NewDate(2024, time.January, 1),
		Occurrences: 6,
	}
}

func TestExpand(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	horizon := NewDate(2024, time.December, 31)

	created := def.Expand(nil, horizon)
	if len(created) != 6 {
		t.Fatalf("len(created) = %d, want 6", len(created))
	}
	for i, o := range created {
		want := NewDate(2024, time.Month(i+1), 1)
		if o.ScheduledDate != want {
			t.Errorf("occurrence %d on %v, want %v", i, o.ScheduledDate, want)
		}
		if o.Status != Scheduled {
			t.Errorf("occurrence %d status = %s, want scheduled", i, o.Status)
		}
		if !o.Amount.Equal(def.Amount) {
			t.Errorf("occurrence %d amount = %v", i, o.Amount)
		}
		if o.ID == "" || o.DefinitionID != def.ID {
			t.Errorf("occurrence %d ids = %q/%q", i, o.ID, o.DefinitionID)
		}
	}
}

func TestExpandFillsOnlyGaps(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	horizon := NewDate(2024, time.December, 31)
	existing := def.Expand(nil, horizon)

	// drop March, re-expansion recreates exactly it
	var kept []Occurrence
	for _, o := range existing {
		if o.ScheduledDate.Month() != time.March {
			kept = append(kept, o)
		}
	}
	created := def.Expand(kept, horizon)
	if len(created) != 1 {
		t.Fatalf("len(created) = %d, want only the missing March", len(created))
	}
	if created[0].ScheduledDate != NewDate(2024, time.March, 1) {
		t.Errorf("recreated on %v, want March 1", created[0].ScheduledDate)
	}

	// and a full set expands to nothing
	if again := def.Expand(existing, horizon); len(again) != 0 {
		t.Errorf("re-expansion of a full set created %d occurrences", len(again))
	}
}

// After a forward shift moved occurrences off their canonical dates, every
// slot is still filled, so re-expansion must not recreate the old dates.
func TestExpandAfterShiftCreatesNothing(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	horizon := NewDate(2024, time.December, 31)
	occurrences := def.Expand(nil, horizon)
	target := occurrences[2] // 2024-03-01

	newDate := NewDate(2024, time.March, 5)
	result, err := ApplyScopedEdit(FromEventForward, def, occurrences, target.ID, OccurrenceEdit{Date: &newDate}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("ApplyScopedEdit() error = %v", err)
	}

	shifted := make(map[string]Occurrence, len(result.Occurrences))
	for _, o := range result.Occurrences {
		shifted[o.ID] = o
	}
	applied := make([]Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if s, ok := shifted[o.ID]; ok {
			o = s
		}
		applied = append(applied, o)
	}

	if created := result.Definition.Expand(applied, horizon); len(created) != 0 {
		t.Errorf("re-expansion after a shift created %d occurrences: %v", len(created), created)
	}
}

// A pushed horizon after a shift fills only the trailing slots.
func TestExpandAfterShiftFillsOnlyNewSlots(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	def.Occurrences = 8
	occurrences := def.Expand(nil, NewDate(2024, time.June, 30)) // six slots

	newDate := NewDate(2024, time.March, 5)
	result, err := ApplyScopedEdit(FromEventForward, def, occurrences, occurrences[2].ID, OccurrenceEdit{Date: &newDate}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("ApplyScopedEdit() error = %v", err)
	}
	shifted := make(map[string]Occurrence, len(result.Occurrences))
	for _, o := range result.Occurrences {
		shifted[o.ID] = o
	}
	applied := make([]Occurrence, 0, len(occurrences))
	for _, o := range occurrences {
		if s, ok := shifted[o.ID]; ok {
			o = s
		}
		applied = append(applied, o)
	}

	created := result.Definition.Expand(applied, NewDate(2024, time.December, 31))
	if len(created) != 2 {
		t.Fatalf("len(created) = %d, want the two new slots", len(created))
	}
	if created[0].ScheduledDate != NewDate(2024, time.July, 1) || created[1].ScheduledDate != NewDate(2024, time.August, 1) {
		t.Errorf("created on %v and %v, want July 1 and August 1", created[0].ScheduledDate, created[1].ScheduledDate)
	}
}

// A monthly definition anchored on the 31st lands once in every month,
// clamped to the short months' last day.
func TestExpandMonthEndAnchor(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	def.StartDate = NewDate(2024, time.January, 31)
	def.Occurrences = 4

	created := def.Expand(nil, NewDate(2024, time.December, 31))
	wantDates := []Date{
		NewDate(2024, time.January, 31),
		NewDate(2024, time.February, 29),
		NewDate(2024, time.March, 31),
		NewDate(2024, time.April, 30),
	}
	if len(created) != len(wantDates) {
		t.Fatalf("len(created) = %d, want %d", len(created), len(wantDates))
	}
	for i, o := range created {
		if o.ScheduledDate != wantDates[i] {
			t.Errorf("occurrence %d on %v, want %v", i, o.ScheduledDate, wantDates[i])
		}
	}
}

func TestExpandRespectsHorizonAndEndDate(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	def.Occurrences = 0
	def.EndDate = NewDate(2024, time.April, 30)

	created := def.Expand(nil, NewDate(2024, time.December, 31))
	if len(created) != 4 {
		t.Errorf("len(created) = %d, want 4 bounded by the end date", len(created))
	}

	created = def.Expand(nil, NewDate(2024, time.February, 15))
	if len(created) != 2 {
		t.Errorf("len(created) = %d, want 2 bounded by the horizon", len(created))
	}
}

// Editing the March occurrence to four days later with forward scope shifts
// March through June and leaves January and February alone.
func TestScopedEditForwardShift(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))
	target := occurrences[2] // 2024-03-01

	newDate := NewDate(2024, time.March, 5)
	result, err := ApplyScopedEdit(FromEventForward, def, occurrences, target.ID, OccurrenceEdit{Date: &newDate}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("ApplyScopedEdit() error = %v", err)
	}

	if len(result.Occurrences) != 4 {
		t.Fatalf("len(result.Occurrences) = %d, want March through June", len(result.Occurrences))
	}
	wantDates := []Date{
		NewDate(2024, time.March, 5),
		NewDate(2024, time.April, 5),
		NewDate(2024, time.May, 5),
		NewDate(2024, time.June, 5),
	}
	for i, o := range result.Occurrences {
		if o.ScheduledDate != wantDates[i] {
			t.Errorf("occurrence %d on %v, want %v", i, o.ScheduledDate, wantDates[i])
		}
	}
	if result.Definition.StartDate != def.StartDate {
		t.Errorf("forward edit moved the start date to %v", result.Definition.StartDate)
	}
}

// An all-events shift by d then by -d restores every original date.
func TestScopedEditAllEventsShiftRoundTrip(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))
	target := occurrences[2]

	forward := target.ScheduledDate.Add(4)
	shifted, err := ApplyScopedEdit(AllEvents, def, occurrences, target.ID, OccurrenceEdit{Date: &forward}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("shift error = %v", err)
	}
	if shifted.Definition.StartDate != def.StartDate.Add(4) {
		t.Errorf("all-events shift should move the anchor, got %v", shifted.Definition.StartDate)
	}

	var shiftedTarget Occurrence
	for _, o := range shifted.Occurrences {
		if o.ID == target.ID {
			shiftedTarget = o
		}
	}
	back := shiftedTarget.ScheduledDate.Add(-4)
	restored, err := ApplyScopedEdit(AllEvents, shifted.Definition, shifted.Occurrences, target.ID, OccurrenceEdit{Date: &back}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("unshift error = %v", err)
	}

	byID := make(map[string]Date)
	for _, o := range restored.Occurrences {
		byID[o.ID] = o.ScheduledDate
	}
	for _, o := range occurrences {
		if byID[o.ID] != o.ScheduledDate {
			t.Errorf("occurrence %s restored to %v, want %v", o.ID, byID[o.ID], o.ScheduledDate)
		}
	}
	if restored.Definition.StartDate != def.StartDate {
		t.Errorf("anchor restored to %v, want %v", restored.Definition.StartDate, def.StartDate)
	}
}

func TestScopedEditValidatesStatusTransition(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))
	target := occurrences[0]

	bad := Reconciled // scheduled cannot jump to reconciled
	_, err := ApplyScopedEdit(OnlyEvent, def, occurrences, target.ID, OccurrenceEdit{Status: &bad}, DefinitionPatch{})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}

	good := Processed
	result, err := ApplyScopedEdit(OnlyEvent, def, occurrences, target.ID, OccurrenceEdit{Status: &good}, DefinitionPatch{})
	if err != nil {
		t.Fatalf("valid transition rejected: %v", err)
	}
	if result.Occurrences[0].Status != Processed {
		t.Errorf("status = %s, want processed", result.Occurrences[0].Status)
	}
}

func TestScopedEditSharedFieldsAlwaysUpdateDefinition(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))

	desc := "gym (new price)"
	result, err := ApplyScopedEdit(OnlyEvent, def, occurrences, occurrences[4].ID, OccurrenceEdit{}, DefinitionPatch{Description: &desc})
	if err != nil {
		t.Fatalf("ApplyScopedEdit() error = %v", err)
	}
	if result.Definition.Description != desc {
		t.Errorf("Description = %q, want the patch applied", result.Definition.Description)
	}
	if len(result.Occurrences) != 1 {
		t.Errorf("len(result.Occurrences) = %d, want only the target", len(result.Occurrences))
	}
}

func TestScopedDelete(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))

	// forward delete from March truncates the series to February
	result, err := ApplyScopedDelete(FromEventForward, def, occurrences, occurrences[2].ID)
	if err != nil {
		t.Fatalf("ApplyScopedDelete() error = %v", err)
	}
	if len(result.OccurrenceIDs) != 4 || result.DeleteDefinition {
		t.Errorf("forward delete = %+v", result)
	}
	if result.Definition.EndDate != NewDate(2024, time.February, 29) {
		t.Errorf("EndDate = %v, want the day before the target", result.Definition.EndDate)
	}

	// all-events deletes the definition itself
	result, err = ApplyScopedDelete(AllEvents, def, occurrences, occurrences[2].ID)
	if err != nil {
		t.Fatalf("ApplyScopedDelete() error = %v", err)
	}
	if !result.DeleteDefinition {
		t.Error("all-events delete should remove the definition")
	}

	// deleting the only occurrence removes the definition too
	result, err = ApplyScopedDelete(OnlyEvent, def, occurrences[:1], occurrences[0].ID)
	if err != nil {
		t.Fatalf("ApplyScopedDelete() error = %v", err)
	}
	if !result.DeleteDefinition {
		t.Error("deleting the last occurrence should remove the definition")
	}
}

func TestScopedOpsRejectUnknownTarget(t *testing.T) {
	def := monthlyDef(M(20, "USD"))
	occurrences := def.Expand(nil, NewDate(2024, time.December, 31))

	_, err := ApplyScopedEdit(OnlyEvent, def, occurrences, "nope", OccurrenceEdit{}, DefinitionPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("edit error = %v, want ErrNotFound", err)
	}
	_, err = ApplyScopedDelete(OnlyEvent, def, occurrences, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("delete error = %v, want ErrNotFound", err)
	}
}

func TestRequireRecurring(t *testing.T) {
	oneTime := Posting{ID: "p1", PaymentType: OneTime}
	if err := RequireRecurring(oneTime); !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	recurring := Posting{ID: "p2", PaymentType: Recurring}
	if err := RequireRecurring(recurring); err != nil {
		t.Errorf("recurring posting rejected: %v", err)
	}
}

func TestParseScope(t *testing.T) {
	for _, s := range []string{"only_event", "from_event_forward", "all_events"} {
		if _, err := ParseScope(s); err != nil {
			t.Errorf("ParseScope(%q) error = %v", s, err)
		}
	}
	if _, err := ParseScope("everything"); err == nil {
		t.Error("ParseScope should reject unknown scopes")
	}
}
