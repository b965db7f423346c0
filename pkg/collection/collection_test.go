package collection_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/field"
	"github.com/goliatone/go-formbuilder/pkg/position"
	"github.com/goliatone/go-formbuilder/pkg/testsupport"
)

func ids(records []field.Record) []string {
	out := make([]string, len(records))
	for idx, rec := range records {
		out[idx] = rec.FieldID()
	}
	return out
}

func sequentialIDs() field.IDGenerator {
	n := 0
	return func(kind field.Kind) string {
		n++
		return fmt.Sprintf("gen-%d-%s", n, kind)
	}
}

func sampleRecords() []field.Record {
	return []field.Record{
		&field.Title{Base: field.Base{ID: "T"}, Title: "About you"},
		&field.Text{Base: field.Base{ID: "S", Rules: field.Rules{Required: field.Bool(true)}}, Heading: "Name"},
		&field.Multi{
			Base:     field.Base{ID: "M"},
			Heading:  "Traits",
			Options:  []string{"a", "b", "c"},
			Selected: map[int]bool{0: true, 2: true},
		},
	}
}

func newLoaded(t *testing.T, opts ...collection.Option) *collection.Collection {
	t.Helper()
	c := collection.New(opts...)
	if err := c.Load(sampleRecords()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestLoadRejectsDuplicateAndMissingIDs(t *testing.T) {
	c := newLoaded(t)

	dup := []field.Record{
		&field.Title{Base: field.Base{ID: "X"}},
		&field.Text{Base: field.Base{ID: "X"}},
	}
	if err := c.Load(dup); !errors.Is(err, collection.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	for _, missing := range [][]field.Record{
		{&field.Text{}},
		{nil},
		{(*field.Title)(nil)},
		{&field.Text{Base: field.Base{ID: "ok"}}, (*field.Multi)(nil)},
	} {
		if err := c.Load(missing); !errors.Is(err, collection.ErrMissingID) {
			t.Fatalf("Load(%#v): expected ErrMissingID, got %v", missing, err)
		}
	}
	if diff := cmp.Diff([]string{"T", "S", "M"}, ids(c.Records())); diff != "" {
		t.Fatalf("failed load changed state (-want +got):\n%s", diff)
	}
}

func TestLoadClearsSelectionAndCopiesInput(t *testing.T) {
	c := newLoaded(t)
	c.Select("S")

	input := sampleRecords()
	if err := c.Load(input); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := c.SelectedID(); got != "" {
		t.Fatalf("expected selection cleared on load, got %q", got)
	}

	input[1].(*field.Text).Heading = "mutated outside"
	rec, _ := c.Find("S")
	if got := rec.(*field.Text).Heading; got != "Name" {
		t.Fatalf("collection shares records with caller: heading %q", got)
	}
}

func TestSelectToggle(t *testing.T) {
	c := newLoaded(t)

	if !c.Select("S") {
		t.Fatalf("select S refused")
	}
	c.Select("S")
	if _, ok := c.Selected(); ok {
		t.Fatalf("second select of same id must clear selection")
	}

	c.Select("S")
	c.Select("M")
	rec, ok := c.Selected()
	if !ok || rec.FieldID() != "M" {
		t.Fatalf("expected selection M, got %v", rec)
	}

	if c.Select("missing") {
		t.Fatalf("unknown id must be refused")
	}
	if c.SelectedID() != "M" {
		t.Fatalf("unknown id changed selection to %q", c.SelectedID())
	}
}

func TestSelectFirstRecord(t *testing.T) {
	c := newLoaded(t)
	if !c.Select("T") {
		t.Fatalf("record at index 0 must be selectable")
	}
	if !c.UpdateField("T", field.AttrTitle, "Welcome") {
		t.Fatalf("record at index 0 must be editable")
	}
	rec, _ := c.Selected()
	if got := field.Heading(rec); got != "Welcome" {
		t.Fatalf("selected title = %q, want Welcome", got)
	}
}

func TestUpdateFieldVariantIsolation(t *testing.T) {
	var diags []collection.Diagnostic
	c := newLoaded(t, collection.WithDiagnostics(func(d collection.Diagnostic) {
		diags = append(diags, d)
	}))
	before, _ := c.Find("S")

	if c.UpdateField("S", field.AttrTitle, "nope") {
		t.Fatalf("title attribute accepted on short record")
	}
	after, _ := c.Find("S")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("short record changed (-want +got):\n%s", diff)
	}
	if len(diags) != 1 || diags[0].Reason != collection.ReasonInvalidField {
		t.Fatalf("expected one invalid_field diagnostic, got %+v", diags)
	}
	if !errors.Is(diags[0], field.ErrInvalidAttribute) {
		t.Fatalf("diagnostic does not unwrap to ErrInvalidAttribute")
	}
}

func TestUpdateRuleTypeSafety(t *testing.T) {
	c := newLoaded(t)

	applied, err := c.UpdateRule("S", field.RuleMinLength, "abc")
	if err != nil || applied {
		t.Fatalf("wrong type: applied=%v err=%v", applied, err)
	}
	rec, _ := c.Find("S")
	if rec.FieldRules().MinLength != nil {
		t.Fatalf("minLength changed on type mismatch")
	}

	applied, err = c.UpdateRule("S", field.RuleMinLength, 5)
	if err != nil || !applied {
		t.Fatalf("valid update: applied=%v err=%v", applied, err)
	}
	rec, _ = c.Find("S")
	if got := rec.FieldRules().MinLength; got == nil || *got != 5 {
		t.Fatalf("minLength = %v, want 5", got)
	}
}

func TestUpdateRuleUnsupported(t *testing.T) {
	c := newLoaded(t)

	if _, err := c.UpdateRule("S", field.RuleValueAsNumber, true); !errors.Is(err, field.ErrUnsupportedRule) {
		t.Fatalf("expected ErrUnsupportedRule for valueAsNumber, got %v", err)
	}
	if _, err := c.UpdateRule("S", "pattern", ".*"); !errors.Is(err, field.ErrUnsupportedRule) {
		t.Fatalf("expected ErrUnsupportedRule for unknown name, got %v", err)
	}

	for _, name := range field.RuleNames() {
		if name == field.RuleValueAsNumber {
			continue
		}
		if _, err := c.UpdateRule("S", name, nil); err != nil {
			t.Fatalf("rule %q should be editable, got %v", name, err)
		}
	}

	applied, err := c.UpdateRule("M", field.RuleMaxLength, 3)
	if err != nil || applied {
		t.Fatalf("maxLength on multi: applied=%v err=%v", applied, err)
	}
	applied, err = c.UpdateRule("M", field.RuleRequired, true)
	if err != nil || !applied {
		t.Fatalf("required on multi: applied=%v err=%v", applied, err)
	}
}

func TestAppendOptionEmptyGuard(t *testing.T) {
	var diags []collection.Diagnostic
	c := collection.New(collection.WithDiagnostics(func(d collection.Diagnostic) {
		diags = append(diags, d)
	}))
	if err := c.Load([]field.Record{
		&field.Multi{Base: field.Base{ID: "M"}, Options: []string{"a", ""}},
	}); err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.AppendOption("M") {
		t.Fatalf("append accepted while an option is empty")
	}
	rec, _ := c.Find("M")
	if got := len(rec.(*field.Multi).Options); got != 2 {
		t.Fatalf("options length = %d, want 2", got)
	}
	if len(diags) != 1 || !errors.Is(diags[0], collection.ErrEmptyOption) {
		t.Fatalf("expected empty option diagnostic, got %+v", diags)
	}

	c.UpdateOption("M", 1, "b")
	if !c.AppendOption("M") {
		t.Fatalf("append refused after filling options")
	}
	rec, _ = c.Find("M")
	if diff := cmp.Diff([]string{"a", "b", ""}, rec.(*field.Multi).Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendOptionSelectionSeesMutation(t *testing.T) {
	c := newLoaded(t)
	c.Select("M")
	c.AppendOption("M")

	rec, ok := c.Selected()
	if !ok {
		t.Fatalf("selection lost after append")
	}
	if got := len(rec.(*field.Multi).Options); got != 4 {
		t.Fatalf("selected record has %d options, want 4", got)
	}
}

func TestOptionOperationsOnOtherVariants(t *testing.T) {
	var reasons []collection.Reason
	c := newLoaded(t, collection.WithDiagnostics(func(d collection.Diagnostic) {
		reasons = append(reasons, d.Reason)
	}))

	if c.AppendOption("T") || c.UpdateOption("S", 0, "x") || c.DeleteOption("T", 0) {
		t.Fatalf("option operation applied to non-multi record")
	}
	want := []collection.Reason{
		collection.ReasonInvalidVariant,
		collection.ReasonInvalidVariant,
		collection.ReasonInvalidVariant,
	}
	if diff := cmp.Diff(want, reasons); diff != "" {
		t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateOptionBounds(t *testing.T) {
	c := newLoaded(t)
	if c.UpdateOption("M", 3, "x") || c.UpdateOption("M", -1, "x") {
		t.Fatalf("out of range option index accepted")
	}
	if !c.UpdateOption("M", 0, "first") {
		t.Fatalf("update option 0 refused")
	}
	rec, _ := c.Find("M")
	if diff := cmp.Diff([]string{"first", "b", "c"}, rec.(*field.Multi).Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteOptionShiftsSelection(t *testing.T) {
	c := newLoaded(t)
	if c.DeleteOption("M", 5) {
		t.Fatalf("out of range delete accepted")
	}
	if !c.DeleteOption("M", 0) {
		t.Fatalf("delete option refused")
	}
	rec, _ := c.Find("M")
	multi := rec.(*field.Multi)
	if diff := cmp.Diff([]string{"b", "c"}, multi.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[int]bool{1: true}, multi.Selected); diff != "" {
		t.Fatalf("selected mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteFieldClearsSelection(t *testing.T) {
	c := newLoaded(t)
	c.Select("M")
	if !c.DeleteField("M") {
		t.Fatalf("delete refused")
	}
	if c.SelectedID() != "" {
		t.Fatalf("selection still points at deleted record")
	}
	if c.DeleteField("M") {
		t.Fatalf("second delete must be a no-op")
	}
}

func TestInsertionNonDestructive(t *testing.T) {
	c := newLoaded(t, collection.WithIDGenerator(sequentialIDs()))
	before := c.Records()

	id, err := c.InsertFieldAfter(field.KindShort, "S")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id != "gen-1-short" {
		t.Fatalf("unexpected id %q", id)
	}

	after := c.Records()
	if diff := cmp.Diff([]string{"T", "S", id, "M"}, ids(after)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	kept := []field.Record{after[0], after[1], after[3]}
	if diff := cmp.Diff(before, kept); diff != "" {
		t.Fatalf("existing records changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&field.Text{Base: field.Base{ID: id}}, after[2]); diff != "" {
		t.Fatalf("new record mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertAtEnd(t *testing.T) {
	c := newLoaded(t, collection.WithIDGenerator(sequentialIDs()))

	endID, err := c.InsertFieldAfter(field.KindMulti, collection.End)
	if err != nil {
		t.Fatalf("insert at end: %v", err)
	}
	strayID, err := c.InsertFieldAfter(field.KindLong, "no-such-field")
	if err != nil {
		t.Fatalf("insert after unknown id: %v", err)
	}
	if diff := cmp.Diff([]string{"T", "S", "M", endID, strayID}, ids(c.Records())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.InsertFieldAfter("dropdown", collection.End); !errors.Is(err, field.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("len = %d, want 5", c.Len())
	}
}

func TestMovePreservesSetAndRoundTrips(t *testing.T) {
	base := []field.Record{
		&field.Title{Base: field.Base{ID: "A"}},
		&field.Text{Base: field.Base{ID: "B"}},
		&field.Text{Base: field.Base{ID: "C"}, Long: true},
		&field.Multi{Base: field.Base{ID: "D"}},
		&field.Text{Base: field.Base{ID: "E"}},
	}
	original := ids(base)

	for _, from := range original {
		for _, to := range original {
			c := collection.New()
			if err := c.Load(base); err != nil {
				t.Fatalf("load: %v", err)
			}
			fromIdx := strings.Index(strings.Join(original, ""), from)

			if !c.MoveField(from, to) {
				t.Fatalf("move %s->%s refused", from, to)
			}
			moved := ids(c.Records())

			var rest, movedRest []string
			for _, id := range original {
				if id != from {
					rest = append(rest, id)
				}
			}
			for _, id := range moved {
				if id != from {
					movedRest = append(movedRest, id)
				}
			}
			if diff := cmp.Diff(rest, movedRest); diff != "" {
				t.Fatalf("move %s->%s reordered other records (-want +got):\n%s", from, to, diff)
			}

			back := moved[fromIdx]
			if !c.MoveField(from, back) {
				t.Fatalf("move back %s->%s refused", from, back)
			}
			if diff := cmp.Diff(original, ids(c.Records())); diff != "" {
				t.Fatalf("round trip %s->%s mismatch (-want +got):\n%s", from, to, diff)
			}
		}
	}
}

func TestMoveUnknownIDs(t *testing.T) {
	c := newLoaded(t)
	if c.MoveField("T", "nope") || c.MoveField("nope", "T") {
		t.Fatalf("move with unknown id applied")
	}
	if diff := cmp.Diff([]string{"T", "S", "M"}, ids(c.Records())); diff != "" {
		t.Fatalf("order changed (-want +got):\n%s", diff)
	}
}

func TestScenarioLoadEditRuleDelete(t *testing.T) {
	c := collection.New()
	err := c.Load([]field.Record{
		&field.Title{Base: field.Base{ID: "T"}},
		&field.Text{Base: field.Base{ID: "S", Rules: field.Rules{Required: field.Bool(true)}}},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	c.UpdateField("S", field.AttrHeading, "Name?")
	rec, _ := c.Find("S")
	if got := rec.(*field.Text).Heading; got != "Name?" {
		t.Fatalf("heading = %q, want Name?", got)
	}

	if _, err := c.UpdateRule("S", field.RuleRequired, false); err != nil {
		t.Fatalf("update rule: %v", err)
	}
	rec, _ = c.Find("S")
	if got := rec.FieldRules().Required; got == nil || *got {
		t.Fatalf("required = %v, want false", got)
	}

	c.DeleteField("T")
	if c.SelectedID() != "" {
		t.Fatalf("selection changed to %q", c.SelectedID())
	}
	if diff := cmp.Diff([]string{"S"}, ids(c.Records())); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestObserversReceiveSnapshots(t *testing.T) {
	var snaps []collection.Snapshot
	c := newLoaded(t, collection.WithObserver(collection.ObserverFunc(func(s collection.Snapshot) {
		snaps = append(snaps, s)
	})))

	c.Select("S")
	c.UpdateField("S", field.AttrHeading, "Full name")
	c.UpdateField("S", field.AttrTitle, "ignored")

	// load, select, update; the refused update notifies nobody
	if len(snaps) != 3 {
		t.Fatalf("observer called %d times, want 3", len(snaps))
	}
	last := snaps[2]
	sel, ok := last.Selected()
	if !ok || sel.(*field.Text).Heading != "Full name" {
		t.Fatalf("snapshot selection = %+v", sel)
	}

	last.Records[1].(*field.Text).Heading = "tampered"
	rec, _ := c.Find("S")
	if rec.(*field.Text).Heading != "Full name" {
		t.Fatalf("snapshot shares state with collection")
	}
}

func TestRefusalsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	c := newLoaded(t, collection.WithLogger(logger))

	c.DeleteField("ghost")
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "reason=not_found") || !strings.Contains(out, "id=ghost") {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestApplyIntents(t *testing.T) {
	c := newLoaded(t, collection.WithIDGenerator(sequentialIDs()))

	res, err := c.Apply(collection.Intent{Type: collection.IntentInsert, TemplateKind: "long", AfterID: "T"})
	if err != nil || !res.Applied || res.ID != "gen-1-long" {
		t.Fatalf("insert: res=%+v err=%v", res, err)
	}

	res, err = c.Apply(collection.Intent{Type: collection.IntentUpdateRule, ID: "S", Name: "maxLength", Value: float64(40)})
	if err != nil || !res.Applied {
		t.Fatalf("update rule: res=%+v err=%v", res, err)
	}

	res, err = c.Apply(collection.Intent{Type: collection.IntentUpdateField, ID: "S", Name: "heading", Value: 42})
	if err != nil || res.Applied || res.Diagnostic == nil || res.Diagnostic.Reason != collection.ReasonTypeMismatch {
		t.Fatalf("update field with number: res=%+v err=%v", res, err)
	}

	res, err = c.Apply(collection.Intent{Type: collection.IntentReorder, FromID: "M", ToID: "T"})
	if err != nil || !res.Applied {
		t.Fatalf("reorder: res=%+v err=%v", res, err)
	}
	if diff := cmp.Diff([]string{"M", "T", "gen-1-long", "S"}, ids(c.Records())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	res, err = c.Apply(collection.Intent{Type: collection.IntentDeleteField, ID: "ghost"})
	if err != nil || res.Applied || res.Diagnostic == nil || !errors.Is(*res.Diagnostic, collection.ErrNotFound) {
		t.Fatalf("delete ghost: res=%+v err=%v", res, err)
	}

	if _, err := c.Apply(collection.Intent{Type: "explode"}); !errors.Is(err, collection.ErrUnknownIntent) {
		t.Fatalf("expected ErrUnknownIntent, got %v", err)
	}
	if _, err := c.Apply(collection.Intent{Type: collection.IntentUpdateRule, ID: "S", Name: "valueAsNumber", Value: true}); !errors.Is(err, field.ErrUnsupportedRule) {
		t.Fatalf("expected ErrUnsupportedRule, got %v", err)
	}
}

func TestOutOfRangeDiagnosticUnwraps(t *testing.T) {
	var got collection.Diagnostic
	c := newLoaded(t, collection.WithDiagnostics(func(d collection.Diagnostic) { got = d }))
	c.DeleteOption("M", 9)
	if !errors.Is(got, position.ErrOutOfRange) {
		t.Fatalf("diagnostic %+v does not unwrap to ErrOutOfRange", got)
	}
}

func TestRecorderSeesEditingSession(t *testing.T) {
	recorder := &testsupport.SnapshotRecorder{}
	c := testsupport.MustCollection(t, testsupport.Records(), collection.WithObserver(recorder))

	session := []collection.Intent{
		{Type: collection.IntentSelect, ID: "M"},
		{Type: collection.IntentAppendOption, ID: "M"},
		{Type: collection.IntentAppendOption, ID: "M"},
		{Type: collection.IntentUpdateOption, ID: "M", Index: 3, Value: "Kind"},
		{Type: collection.IntentDeleteOption, ID: "M", Index: 0},
	}
	for _, in := range session {
		if _, err := c.Apply(in); err != nil {
			t.Fatalf("apply %s: %v", in.Type, err)
		}
	}

	// load plus four applied intents; the second append is refused
	snapshots := recorder.Snapshots()
	if len(snapshots) != 5 {
		t.Fatalf("recorded %d snapshots, want 5", len(snapshots))
	}
	sel, ok := snapshots[4].Selected()
	if !ok {
		t.Fatalf("expected M to stay selected")
	}
	if diff := cmp.Diff([]string{"Patient", "Bold", "Kind"}, sel.(*field.Multi).Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
