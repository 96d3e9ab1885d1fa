package params

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/modellerbridge/internal/testutil/testlog"
)

func TestBreakIntoParametersQuotedToken(t *testing.T) {
	testlog.Start(t)

	got := BreakIntoParameters(`a "b c" d`)
	want := []string{"a", "b c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: got=%q want=%q", got, want)
	}
}

func TestBreakIntoParametersCollapsesWhitespace(t *testing.T) {
	testlog.Start(t)

	got := BreakIntoParameters("  mf10 \t  3   true  ")
	want := []string{"mf10", "3", "true"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: got=%q want=%q", got, want)
	}
}

func TestBreakIntoParametersUnterminatedQuoteFlushes(t *testing.T) {
	testlog.Start(t)

	got := BreakIntoParameters(`1 "C:\some path\file.csv`)
	want := []string{"1", `C:\some path\file.csv`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: got=%q want=%q", got, want)
	}
}

func TestBreakIntoParametersEdgeCases(t *testing.T) {
	testlog.Start(t)

	if got := BreakIntoParameters(""); len(got) != 0 {
		t.Fatalf("expected no tokens, got %q", got)
	}
	if got := BreakIntoParameters(`""`); !reflect.DeepEqual(got, []string{""}) {
		t.Fatalf("expected one empty token, got %q", got)
	}
	if got := BreakIntoParameters(`a "`); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("expected bare open quote to be dropped, got %q", got)
	}
	if got := BreakIntoParameters(`"x"y`); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("expected quote to close token, got %q", got)
	}
	if got := BreakIntoParameters("trailing\n"); !reflect.DeepEqual(got, []string{"trailing"}) {
		t.Fatalf("expected newline to close token, got %q", got)
	}
}

func TestReconcileReordersIntoDeclaredOrder(t *testing.T) {
	testlog.Start(t)

	got, err := Reconcile("tmg.test", []string{"x", "y", "z"}, []string{"z", "x", "y"}, []string{"3", "1", "2"})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("unexpected order: %q", got)
	}
}

func TestReconcileUnknownNameNamesBothSides(t *testing.T) {
	testlog.Start(t)

	_, err := Reconcile("tmg.test", []string{"x", "y"}, []string{"x", "w"}, []string{"1", "2"})
	if !errors.Is(err, ErrUnknownParameterName) {
		t.Fatalf("expected ErrUnknownParameterName, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "'w'") || !strings.Contains(msg, "'y'") {
		t.Fatalf("expected message to name w and y: %q", msg)
	}
}

func TestReconcileCountMismatch(t *testing.T) {
	testlog.Start(t)

	_, err := Reconcile("tmg.test", []string{"x", "y"}, []string{"x"}, []string{"1"})
	if !errors.Is(err, ErrParameterCountMismatch) {
		t.Fatalf("expected ErrParameterCountMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "'y' was not sent") {
		t.Fatalf("expected missing parameter in message: %q", err.Error())
	}

	_, err = Reconcile("tmg.test", []string{"x"}, []string{"x", "q"}, []string{"1", "2"})
	if !errors.Is(err, ErrParameterCountMismatch) {
		t.Fatalf("expected ErrParameterCountMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "'q'") {
		t.Fatalf("expected extra parameter in message: %q", err.Error())
	}

	_, err = Reconcile("tmg.test", []string{"x"}, []string{"x"}, []string{"1", "2"})
	if !errors.Is(err, ErrParameterCountMismatch) {
		t.Fatalf("expected ErrParameterCountMismatch for ragged lists, got %v", err)
	}
}

func TestReconcileRejectsDuplicateNames(t *testing.T) {
	testlog.Start(t)

	_, err := Reconcile("tmg.test", []string{"x", "y"}, []string{"x", "x"}, []string{"1", "2"})
	if !errors.Is(err, ErrDuplicateParameterName) {
		t.Fatalf("expected ErrDuplicateParameterName, got %v", err)
	}
}

func TestParseBoolPrefixes(t *testing.T) {
	testlog.Start(t)

	for _, raw := range []string{"TRUE", "tru", "Tr", "t"} {
		v, err := ParseBool(raw)
		if err != nil || !v {
			t.Fatalf("expected %q to be true: %v %v", raw, v, err)
		}
	}
	for _, raw := range []string{"False", "fal", "FALS", "f"} {
		v, err := ParseBool(raw)
		if err != nil || v {
			t.Fatalf("expected %q to be false: %v %v", raw, v, err)
		}
	}
	for _, raw := range []string{"no", "yes", "1", "", "truee"} {
		if _, err := ParseBool(raw); !errors.Is(err, ErrTypeConversion) {
			t.Fatalf("expected %q to fail conversion, got %v", raw, err)
		}
	}
}

func TestCoerceConvertsDeclaredTypes(t *testing.T) {
	testlog.Start(t)

	specs := []Spec{
		{Name: "scenario", Type: "int"},
		{Name: "weight", Type: "float"},
		{Name: "label", Type: "string"},
		{Name: "skim", Type: "bool"},
	}
	values, err := Coerce("tmg.test", specs, []string{" 12 ", "3.14", "peak hour", "TRUE"})
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if values[0].Typed != int64(12) {
		t.Fatalf("unexpected int: %#v", values[0].Typed)
	}
	if values[1].Typed != 3.14 {
		t.Fatalf("unexpected float: %#v", values[1].Typed)
	}
	if values[2].Typed != "peak hour" {
		t.Fatalf("unexpected string: %#v", values[2].Typed)
	}
	if values[3].Typed != true {
		t.Fatalf("unexpected bool: %#v", values[3].Typed)
	}
	if values[1].Kind != KindFloat || values[1].Name != "weight" || values[1].Raw != "3.14" {
		t.Fatalf("unexpected value metadata: %+v", values[1])
	}

	if v, err := Coerce("tmg.test", []Spec{{Name: "w", Type: "float"}}, []string{"1e-3"}); err != nil || v[0].Typed != 0.001 {
		t.Fatalf("unexpected scientific float: %+v %v", v, err)
	}
}

func TestCoerceFailures(t *testing.T) {
	testlog.Start(t)

	_, err := Coerce("tmg.test", []Spec{{Name: "n", Type: "int"}}, []string{"abc"})
	if !errors.Is(err, ErrTypeConversion) {
		t.Fatalf("expected ErrTypeConversion, got %v", err)
	}
	if err.Error() != "Unable to convert 'abc' to an integer!" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	_, err = Coerce("tmg.test", []Spec{{Name: "f", Type: "float"}}, []string{"1.2.3"})
	if !errors.Is(err, ErrTypeConversion) {
		t.Fatalf("expected ErrTypeConversion for float, got %v", err)
	}

	_, err = Coerce("tmg.test", []Spec{{Name: "n", Type: "int"}, {Name: "m", Type: "matrix"}}, []string{"1", "mf10"})
	if !errors.Is(err, ErrUnsupportedParameterType) {
		t.Fatalf("expected ErrUnsupportedParameterType, got %v", err)
	}

	_, err = Coerce("tmg.test", []Spec{{Name: "n", Type: "int"}}, []string{"1", "2"})
	if !errors.Is(err, ErrParameterCountMismatch) {
		t.Fatalf("expected ErrParameterCountMismatch, got %v", err)
	}
}

func TestFromPositionalAndNamedAgree(t *testing.T) {
	testlog.Start(t)

	specs := []Spec{{Name: "x", Type: "int"}, {Name: "y", Type: "string"}, {Name: "z", Type: "bool"}}

	positional, err := FromPositional("tmg.test", specs, `1 "two words" f`)
	if err != nil {
		t.Fatalf("positional: %v", err)
	}
	named, err := FromNamed("tmg.test", specs, []string{"z", "y", "x"}, []string{"f", "two words", "1"})
	if err != nil {
		t.Fatalf("named: %v", err)
	}
	if !reflect.DeepEqual(positional, named) {
		t.Fatalf("modes disagree: positional=%+v named=%+v", positional, named)
	}
	if got := Describe(named); got != "{x:1},{y:two words},{z:f}" {
		t.Fatalf("unexpected description: %q", got)
	}
}
