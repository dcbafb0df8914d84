package hl7

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_HeaderType(t *testing.T) {
	m := mustParse(t, header)

	for path, want := range map[string]string{
		"MSH.1":   "|",
		"MSH.2":   `^~\&`,
		"MSH.3":   "EPIC",
		"MSH.9":   "ADT^A04",
		"MSH.9.1": "ADT",
		"MSH.9.2": "A04",
		"MSH.10":  "1817457",
		"MSH.12":  "2.5",
		"MSH.13":  "",
		"MSH.50":  "",
	} {
		got, err := m.Get(path)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", path, err)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", path, got, want)
		}
	}

	code, trigger := m.Type()
	if code != "ADT" || trigger != "A04" {
		t.Errorf("Type() = %q, %q", code, trigger)
	}
	if m.ControlID() != "1817457" || m.Version() != "2.5" {
		t.Errorf("ControlID() = %q, Version() = %q", m.ControlID(), m.Version())
	}
}

func TestBuild_FreshMessage(t *testing.T) {
	m := New()
	if _, err := m.CreateSegment("MSH"); err != nil {
		t.Fatalf("CreateSegment() error: %v", err)
	}
	err := m.Set("MSH", Composite{
		"MSH.9": Composite{"MSH.9.1": Scalar("ADT"), "MSH.9.2": Scalar("A08")},
	})
	if err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got := m.Build()
	if want := `MSH|^~\&|||||||ADT^A08`; got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
	if fields := strings.Split(got, "|"); fields[8] != "ADT^A08" {
		t.Errorf("field 9 = %q, want ADT^A08", fields[8])
	}
}

func TestSet_FlatAndNestedEquivalent(t *testing.T) {
	forms := []Composite{
		{"MSH.9.1": Scalar("ADT"), "MSH.9.2": Scalar("A08")},
		{"MSH.9": Composite{"MSH.9.1": Scalar("ADT"), "MSH.9.2": Scalar("A08")}},
		{"MSH.9": Composite{"1": Scalar("ADT"), "2": Scalar("A08")}},
		{"MSH.9": Scalar("ADT^A08")},
	}

	var builds []string
	for _, values := range forms {
		m := New()
		_, _ = m.CreateSegment("MSH")
		if err := m.Set("MSH", values); err != nil {
			t.Fatalf("Set(%v) error: %v", values, err)
		}
		builds = append(builds, m.Build())
	}
	for i := 1; i < len(builds); i++ {
		if builds[i] != builds[0] {
			t.Errorf("form %d built %q, form 0 built %q", i, builds[i], builds[0])
		}
	}
}

func TestSet_Errors(t *testing.T) {
	m := mustParse(t, adt)
	tests := []struct {
		name     string
		selector string
		values   Composite
		want     error
	}{
		{"missing segment", "OBR", Composite{"OBR.1": Scalar("1")}, ErrSegmentNotFound},
		{"missing occurrence", "NK1[2]", Composite{"NK1.1": Scalar("1")}, ErrSegmentNotFound},
		{"bad selector", "nk1", Composite{}, ErrMalformedPath},
		{"bad key", "PID", Composite{"PID.x": Scalar("1")}, ErrMalformedPath},
		{"wrong segment", "PID", Composite{"NK1.1": Scalar("1")}, ErrMalformedPath},
		{"segment only key", "PID", Composite{"PID": Scalar("1")}, ErrMalformedPath},
		{"occurrence in key", "PID", Composite{"PID[1].1": Scalar("1")}, ErrMalformedPath},
		{"relative at top", "PID", Composite{"1": Scalar("1")}, ErrMalformedPath},
		{"child outside parent", "PID", Composite{"PID.5": Composite{"PID.6.1": Scalar("x")}}, ErrMalformedPath},
		{"nil composite value", "PID", Composite{"PID.5": Composite{"PID.5.1": nil}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Set(tt.selector, tt.values)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Set() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Set() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSet_MalformedKeyLeavesSegmentUntouched(t *testing.T) {
	m := mustParse(t, adt)
	before := m.Build()
	err := m.Set("PID", Composite{"PID.5.1": Scalar("ROE"), "PID.bad": Scalar("x")})
	if err == nil {
		t.Fatal("Set() should fail")
	}
	if after := m.Build(); after != before {
		t.Errorf("Build() changed after failed Set:\n%s", cmp.Diff(before, after))
	}
}

func TestSet_OccurrenceSelector(t *testing.T) {
	m := New()
	_, _ = m.CreateSegment("MSH")
	_, _ = m.CreateSegment("OBX")
	_, _ = m.CreateSegment("OBX")

	if err := m.Set("OBX[2]", Composite{"OBX.1": Scalar("2")}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := m.SetPath("OBX.1", "1"); err != nil {
		t.Fatalf("SetPath() error: %v", err)
	}
	if got := m.Build(); got != "MSH|^~\\&\rOBX|1\rOBX|2" {
		t.Errorf("Build() = %q", got)
	}
	if got, _ := m.Get("OBX[2].1"); got != "2" {
		t.Errorf("Get(OBX[2].1) = %q", got)
	}
}

func TestSegments(t *testing.T) {
	m := mustParse(t, adt+"NK1|2|ROE^ANN\n")

	if got := m.Segments("OBR"); got == nil || len(got) != 0 {
		t.Errorf("Segments(OBR) = %v, want empty non-nil", got)
	}

	var names []string
	for _, s := range m.Segments() {
		names = append(names, s.Name())
	}
	if diff := cmp.Diff([]string{"MSH", "PID", "NK1", "PV1", "NK1"}, names); diff != "" {
		t.Errorf("Segments() mismatch (-want +got):\n%s", diff)
	}

	kin := m.Segments("NK1")
	if len(kin) != 2 || kin[1].Field(1) != "2" {
		t.Errorf("Segments(NK1) = %d segments", len(kin))
	}

	both := m.Segments("PID", "PV1")
	if len(both) != 2 || both[0].Name() != "PID" || both[1].Name() != "PV1" {
		t.Errorf("Segments(PID, PV1) wrong")
	}

	// Each call returns a fresh slice.
	kin[0] = nil
	if m.Segments("NK1")[0] == nil {
		t.Error("Segments() should not share its slice")
	}
}

func TestGet_Errors(t *testing.T) {
	m := mustParse(t, adt)
	if _, err := m.Get("OBR.1"); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("Get(OBR.1) error = %v, want ErrSegmentNotFound", err)
	}
	var se *SegmentError
	if _, err := m.Get("NK1[3].1"); !errors.As(err, &se) || se.Selector != "NK1[3]" {
		t.Errorf("Get(NK1[3].1) error = %v, want SegmentError for NK1[3]", err)
	}
	if _, err := m.Get("PID..1"); !errors.Is(err, ErrMalformedPath) {
		t.Errorf("Get(PID..1) error = %v, want ErrMalformedPath", err)
	}
	if got, err := m.Get("PID.50"); err != nil || got != "" {
		t.Errorf("Get(PID.50) = %q, %v", got, err)
	}
}

func TestTextAndSetText(t *testing.T) {
	m := New()
	_, _ = m.CreateSegment("MSH")
	_, _ = m.CreateSegment("NTE")

	if err := m.SetText("NTE.3", "Pain 7|10 & rising^"); err != nil {
		t.Fatalf("SetText() error: %v", err)
	}
	if got, _ := m.Get("NTE.3"); got != `Pain 7\F\10 \T\ rising\S\` {
		t.Errorf("Get(NTE.3) = %q", got)
	}
	if got, _ := m.Text("NTE.3"); got != "Pain 7|10 & rising^" {
		t.Errorf("Text(NTE.3) = %q", got)
	}
	if got, _ := m.Get("NTE.3.1"); got != `Pain 7\F\10 \T\ rising\S\` {
		t.Errorf("Get(NTE.3.1) = %q, escaped text should stay one component", got)
	}
}

func TestInsertAndRemoveSegment(t *testing.T) {
	m := mustParse(t, adt)

	evn, err := m.InsertSegment(1, "EVN")
	if err != nil {
		t.Fatalf("InsertSegment() error: %v", err)
	}
	_ = evn.SetField(1, "A04")
	if s, _ := m.SegmentAt(1); s.Name() != "EVN" {
		t.Errorf("SegmentAt(1) = %s", s.Name())
	}
	if _, err := m.InsertSegment(99, "EVN"); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("InsertSegment(99) error = %v", err)
	}
	if _, err := m.InsertSegment(0, "evn"); !errors.Is(err, ErrMalformedPath) {
		t.Errorf("InsertSegment(evn) error = %v", err)
	}

	if err := m.RemoveSegment(evn); err != nil {
		t.Fatalf("RemoveSegment() error: %v", err)
	}
	if err := m.RemoveSegment(evn); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("second RemoveSegment() error = %v", err)
	}
	if err := m.RemoveSegment(nil); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("RemoveSegment(nil) error = %v", err)
	}
	if got := m.Build(); got != strings.Join(adtLines, "\r") {
		t.Errorf("Build() after insert/remove = %q", got)
	}
	if _, err := m.SegmentAt(-1); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("SegmentAt(-1) error = %v", err)
	}
}

func TestSetAt(t *testing.T) {
	m := mustParse(t, adt)
	if err := m.SetAt(2, Composite{"NK1.3": Scalar("MTH")}); err != nil {
		t.Fatalf("SetAt() error: %v", err)
	}
	if got, _ := m.Get("NK1.3"); got != "MTH" {
		t.Errorf("Get(NK1.3) = %q", got)
	}
	if err := m.SetAt(2, Composite{"PID.3": Scalar("MTH")}); !errors.Is(err, ErrMalformedPath) {
		t.Errorf("SetAt() with wrong segment error = %v", err)
	}
	if err := m.SetAt(10, Composite{}); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("SetAt(10) error = %v", err)
	}
}

func TestDelimiters_FreshMessageAdoptsHeader(t *testing.T) {
	m := New()
	_, _ = m.CreateSegment("MSH")
	if err := m.SetPath("MSH.2", `$*!%`); err != nil {
		t.Fatalf("SetPath(MSH.2) error: %v", err)
	}
	if err := m.SetPath("MSH.1", "#"); err != nil {
		t.Fatalf("SetPath(MSH.1) error: %v", err)
	}
	_ = m.Set("MSH", Composite{"MSH.9": Scalar("ADT$A08")})

	if got := m.Build(); got != "MSH#$*!%#######ADT$A08" {
		t.Errorf("Build() = %q", got)
	}
	if got, _ := m.Get("MSH.9.2"); got != "A08" {
		t.Errorf("Get(MSH.9.2) = %q", got)
	}
}

func TestDelimiters_LockedAfterParse(t *testing.T) {
	m := mustParse(t, header)
	if err := m.SetPath("MSH.1", "#"); !errors.Is(err, ErrDelimitersLocked) {
		t.Errorf("SetPath(MSH.1) error = %v, want ErrDelimitersLocked", err)
	}
	if err := m.SetPath("MSH.2", `^~\&`); err != nil {
		t.Errorf("SetPath(MSH.2) with identical value error: %v", err)
	}
	if err := m.Parse(strings.Replace(header, "|", "#", -1)); !errors.Is(err, ErrDelimitersLocked) {
		t.Errorf("Parse() with new delimiters error = %v, want ErrDelimitersLocked", err)
	}
	if err := m.Parse(adt); err != nil {
		t.Errorf("Parse() with same delimiters error: %v", err)
	}
	if len(m.Segments()) != 4 {
		t.Errorf("Segments() = %d after re-parse", len(m.Segments()))
	}
}

func TestWithDelimiters(t *testing.T) {
	d := Delimiters{Field: '#', Component: '$', Repetition: '*', Escape: '!', SubComponent: '%'}
	m := New(WithDelimiters(d), WithSegmentTerminator("\n"))
	_, _ = m.CreateSegment("MSH")
	_, _ = m.CreateSegment("PID")
	_ = m.SetPath("PID.5", "DOE$JOHN")

	if got := m.Build(); got != "MSH#$*!%\nPID#####DOE$JOHN" {
		t.Errorf("Build() = %q", got)
	}
	if m.Delimiters() != d {
		t.Errorf("Delimiters() = %+v", m.Delimiters())
	}
}

func TestMessage_Clone(t *testing.T) {
	m := mustParse(t, adt)
	c := m.Clone()
	_ = c.SetPath("PID.5.1", "ROE")

	if got, _ := m.Get("PID.5.1"); got != "DOE" {
		t.Errorf("original PID.5.1 = %q after clone edit", got)
	}
	if got, _ := c.Get("PID.5.1"); got != "ROE" {
		t.Errorf("clone PID.5.1 = %q", got)
	}
	if err := c.SetPath("MSH.1", "#"); !errors.Is(err, ErrDelimitersLocked) {
		t.Errorf("clone should keep delimiters locked, got %v", err)
	}
}

func TestCreateSegment_Invalid(t *testing.T) {
	m := New()
	for _, name := range []string{"", "PI", "PIDX", "pid", "1ID"} {
		if _, err := m.CreateSegment(name); !errors.Is(err, ErrMalformedPath) {
			t.Errorf("CreateSegment(%q) error = %v", name, err)
		}
	}
}

func TestMessage_String(t *testing.T) {
	m := mustParse(t, header)
	if m.String() != header {
		t.Errorf("String() = %q, want %q", m.String(), header)
	}
}

func TestSetText_LineBreaksSurviveBuild(t *testing.T) {
	m := mustParse(t, "MSH|^~\\&|A\rNTE|1||x\\X0D\\y")

	text, err := m.Text("NTE.3")
	if err != nil || text != "x\ry" {
		t.Fatalf("Text(NTE.3) = %q, %v", text, err)
	}
	if err := m.SetText("NTE.3", text); err != nil {
		t.Fatalf("SetText() error: %v", err)
	}
	if err := m.SetText("NTE.4", "line1\r\nline2"); err != nil {
		t.Fatalf("SetText() error: %v", err)
	}

	out := mustParse(t, m.Build())
	if n := len(out.Segments()); n != 2 {
		t.Fatalf("len(Segments()) = %d, want 2", n)
	}
	if got, _ := out.Get("NTE.3"); got != `x\X0D\y` {
		t.Errorf("Get(NTE.3) = %q", got)
	}
	if got, _ := out.Text("NTE.4"); got != "line1\r\nline2" {
		t.Errorf("Text(NTE.4) = %q", got)
	}
}

func TestSetPath_RejectsDelimitersAboveLevel(t *testing.T) {
	tests := []struct {
		path, value string
	}{
		{"PID.1", "a|b"},
		{"PID.1", "a\rb"},
		{"PID.1", "a\nb"},
		{"PID.3[2]", "a~b"},
		{"PID.5.1", "a~b"},
		{"PID.5.1", "a|b"},
		{"PID.5.1.2", "a^b"},
		{"PID.5.1.2", "a~b"},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.value, func(t *testing.T) {
			m := mustParse(t, "MSH|^~\\&|A\rPID|1|2|3")
			if err := m.SetPath(tt.path, tt.value); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("SetPath(%q, %q) error = %v, want ErrInvalidValue", tt.path, tt.value, err)
			}
			if got := m.Build(); got != "MSH|^~\\&|A\rPID|1|2|3" {
				t.Errorf("Build() = %q, want message unchanged", got)
			}
		})
	}
}

func TestSetPath_AcceptsDelimitersBelowLevel(t *testing.T) {
	m := mustParse(t, "MSH|^~\\&|A\rPID|1|2|3")
	for path, value := range map[string]string{
		"PID.5":    "DOE^JOHN~ROE^ANN",
		"PID.3[2]": "X^Y&Z",
		"PID.6.1":  "a&b",
	} {
		if err := m.SetPath(path, value); err != nil {
			t.Errorf("SetPath(%q, %q) error: %v", path, value, err)
		}
	}
	out := mustParse(t, m.Build())
	if got, _ := out.Get("PID.3"); got != "3~X^Y&Z" {
		t.Errorf("Get(PID.3) = %q", got)
	}
	if got, _ := out.Get("PID.5[2].2"); got != "ANN" {
		t.Errorf("Get(PID.5[2].2) = %q", got)
	}
}

func TestSet_InvalidValueLeavesSegmentUntouched(t *testing.T) {
	m := mustParse(t, "MSH|^~\\&|A\rPID|1|2|3")
	err := m.Set("PID", Composite{
		"PID.2": Scalar("changed"),
		"PID.4": Scalar("bad|value"),
	})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Set() error = %v, want ErrInvalidValue", err)
	}
	if got, _ := m.Get("PID.2"); got != "2" {
		t.Errorf("Get(PID.2) = %q, want untouched", got)
	}
}
