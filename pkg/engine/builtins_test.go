package engine

import (
	"strings"
	"testing"

	"github.com/chazu/masonry/pkg/scene"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box "wall" :material "brick")`,
			expect: `(box "wall" "__kw_material" "brick")`,
		},
		{
			name:   "multiple keywords",
			input:  `(box :length 400 :width 20)`,
			expect: `(box "__kw_length" 400 "__kw_width" 20)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "kebab-case in string preserved",
			input:  `(box "door-frame" :length 1 :width 1 :height 1)`,
			expect: `(box "door-frame" "__kw_length" 1 "__kw_width" 1 "__kw_height" 1)`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(make-hole w :depth 8)`,
			expect: `(make_hole w "__kw_depth" 8)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "minus before number preserved",
			input:  `(- x 1)`,
			expect: `(- x 1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:sill-height`,
			expect: `"__kw_sill-height"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// evaluate runs source and fails the test on any error.
func evaluate(t *testing.T, source string) *scene.Scene {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil scene")
	}
	return s
}

// evaluateErr runs source, expects eval errors, and returns them joined.
func evaluateErr(t *testing.T, source string) string {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	msgs := make([]string, len(evalErrs))
	for i, e := range evalErrs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func vecEq(a, b scene.Vec3) bool {
	const eps = 1e-9
	d := a.Sub(b)
	return d.X < eps && d.X > -eps && d.Y < eps && d.Y > -eps && d.Z < eps && d.Z > -eps
}

// ---------------------------------------------------------------------------
// Box tests
// ---------------------------------------------------------------------------

func TestSimpleBox(t *testing.T) {
	s := evaluate(t, `(box "wall" :length 400 :width 20 :height 250 :material "brick")`)

	if s.BoxCount() != 1 {
		t.Fatalf("expected 1 box, got %d", s.BoxCount())
	}
	b := s.Lookup("wall")
	if b == nil {
		t.Fatal("expected box named wall")
	}
	if b.Length() != 400 || b.Width() != 20 || b.Height() != 250 {
		t.Errorf("dimensions = %gx%gx%g, want 400x20x250", b.Length(), b.Width(), b.Height())
	}
	if b.Material != "brick" {
		t.Errorf("material = %q, want brick", b.Material)
	}
	if len(s.Roots()) != 0 {
		t.Errorf("an unplaced box should not be a root, got %d roots", len(s.Roots()))
	}
}

func TestBoxFloatDimensions(t *testing.T) {
	s := evaluate(t, `(box "slab" :length 2.5 :width 1.25 :height 0.2)`)
	b := s.MustLookup("slab")
	if b.Length() != 2.5 || b.Width() != 1.25 || b.Height() != 0.2 {
		t.Errorf("dimensions = %gx%gx%g", b.Length(), b.Width(), b.Height())
	}
}

func TestBoxErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing height", `(box "a" :length 1 :width 1)`, "missing :height"},
		{"zero length", `(box "a" :length 0 :width 1 :height 1)`, "invalid box dimensions"},
		{"string dimension", `(box "a" :length "x" :width 1 :height 1)`, "expected number"},
		{"numeric material", `(box "a" :length 1 :width 1 :height 1 :material 3)`, "expected string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evaluateErr(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error %q does not mention %q", msg, tt.want)
			}
		})
	}
}

func TestVariableReference(t *testing.T) {
	source := `
(def h 250)
(def wall (box "wall" :length 400 :width 20 :height h))
(place wall :at (vec3 0 0 0))
`
	s := evaluate(t, source)
	if got := s.MustLookup("wall").Height(); got != 250 {
		t.Errorf("height = %g, want 250", got)
	}
	if len(s.Roots()) != 1 {
		t.Errorf("expected 1 root, got %d", len(s.Roots()))
	}
}

// ---------------------------------------------------------------------------
// Positioning tests
// ---------------------------------------------------------------------------

func TestPlaceMakesRoot(t *testing.T) {
	s := evaluate(t, `
(box "a" :length 1 :width 1 :height 1)
(place (part "a") :at (vec3 10 0 0))
`)
	roots := s.Roots()
	if len(roots) != 1 || roots[0].Name != "a" {
		t.Fatalf("roots = %v, want [a]", roots)
	}
	if got := roots[0].AbsolutePosition(); !vecEq(got, scene.Vec3{X: 10}) {
		t.Errorf("position = %v, want (10, 0, 0)", got)
	}
}

func TestAttachChain(t *testing.T) {
	s := evaluate(t, `
(box "a" :length 1 :width 1 :height 1)
(box "b" :length 1 :width 1 :height 1)
(box "c" :length 1 :width 1 :height 1)
(attach (part "b") (part "a") :offset (vec3 1 2 3))
(attach (part "c") (part "b") :offset (vec3 0 0 5))
(place (part "a") :at (vec3 10 0 0))
`)
	tests := []struct {
		name string
		want scene.Vec3
	}{
		{"a", scene.Vec3{X: 10}},
		{"b", scene.Vec3{X: 11, Y: 2, Z: 3}},
		{"c", scene.Vec3{X: 11, Y: 2, Z: 8}},
	}
	for _, tt := range tests {
		if got := s.MustLookup(tt.name).AbsolutePosition(); !vecEq(got, tt.want) {
			t.Errorf("%s position = %v, want %v", tt.name, got, tt.want)
		}
	}
	if ref := s.MustLookup("c").Reference(); ref == nil || ref.Name != "b" {
		t.Errorf("c reference = %v, want b", ref)
	}
}

func TestAttachRelative(t *testing.T) {
	s := evaluate(t, `
(def wall (box "wall" :length 400 :width 20 :height 250))
(def lintel (box "lintel" :length 100 :width 20 :height 10))
(attach-relative lintel wall :factor (vec3 0.5 0 1))
(place wall :at (vec3 0 0 0))
`)
	got := s.MustLookup("lintel").AbsolutePosition()
	if !vecEq(got, scene.Vec3{X: 200, Z: 250}) {
		t.Errorf("lintel position = %v, want (200, 0, 250)", got)
	}
}

func TestAddChildStatic(t *testing.T) {
	s := evaluate(t, `
(def house (box "house" :length 10 :width 10 :height 10))
(def chimney (box "chimney" :length 1 :width 1 :height 3))
(add-child house chimney :offset (vec3 2 2 10))
(place house :at (vec3 5 0 0))
`)
	house := s.MustLookup("house")
	children := house.StaticChildren()
	if len(children) != 1 {
		t.Fatalf("expected 1 static child, got %d", len(children))
	}
	if children[0].Box.Name != "chimney" {
		t.Errorf("static child = %s, want chimney", children[0].Box.Name)
	}
	if !vecEq(children[0].Offset, scene.Vec3{X: 2, Y: 2, Z: 10}) {
		t.Errorf("static offset = %v", children[0].Offset)
	}
	// Static children are not propagated.
	if got := s.MustLookup("chimney").AbsolutePosition(); !got.IsZero() {
		t.Errorf("chimney position = %v, want zero until export", got)
	}
}

func TestAttachErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "self attachment",
			source: `(def a (box "a" :length 1 :width 1 :height 1))
(attach a a)`,
			want: "invalid reference",
		},
		{
			name: "cycle",
			source: `(def a (box "a" :length 1 :width 1 :height 1))
(def b (box "b" :length 1 :width 1 :height 1))
(attach b a)
(attach a b)`,
			want: "cycle",
		},
		{
			name: "place attached box",
			source: `(def a (box "a" :length 1 :width 1 :height 1))
(def b (box "b" :length 1 :width 1 :height 1))
(attach b a)
(place b :at (vec3 1 1 1))`,
			want: "invalid reference",
		},
		{
			name:   "missing reference",
			source: `(attach (box "a" :length 1 :width 1 :height 1))`,
			want:   "requires a reference box",
		},
		{
			name:   "number as box",
			source: `(attach 3 4)`,
			want:   "expected box",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evaluateErr(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error %q does not mention %q", msg, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Aperture tests
// ---------------------------------------------------------------------------

func TestMakeHole(t *testing.T) {
	s := evaluate(t, `
(def w (box "w" :length 10 :width 20 :height 10))
(make-hole w :x 2 :y 0 :length 4 :width 20 :depth 8)
`)
	aps := s.MustLookup("w").Apertures()
	if len(aps) != 1 {
		t.Fatalf("expected 1 aperture, got %d", len(aps))
	}
	want := scene.Aperture{X: 2, Y: 0, Z: 0, Length: 4, Width: 20, Depth: 8}
	if aps[0] != want {
		t.Errorf("aperture = %+v, want %+v", aps[0], want)
	}
}

func TestMakeRecessedHole(t *testing.T) {
	s := evaluate(t, `
(def w (box "w" :length 10 :width 10 :height 10))
(make-hole w :x 1 :y 1 :z 2 :length 2 :width 2 :depth 3)
`)
	aps := s.MustLookup("w").Apertures()
	if len(aps) != 1 {
		t.Fatalf("expected 1 aperture, got %d", len(aps))
	}
	if aps[0].Z != 2 || aps[0].Depth != 3 {
		t.Errorf("aperture = %+v, want z=2 depth=3", aps[0])
	}
}

func TestMakeHoleErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "negative x",
			source: `(make-hole (box "w" :length 10 :width 10 :height 10) :x -1 :y 0 :length 1 :width 1 :depth 1)`,
			want:   "out of bounds",
		},
		{
			name:   "past footprint",
			source: `(make-hole (box "w" :length 10 :width 10 :height 10) :x 8 :y 0 :length 4 :width 1 :depth 1)`,
			want:   "out of bounds",
		},
		{
			name:   "too deep",
			source: `(make-hole (box "w" :length 10 :width 10 :height 10) :x 0 :y 0 :length 1 :width 1 :depth 11)`,
			want:   "depth exceeds",
		},
		{
			name:   "recess too deep",
			source: `(make-hole (box "w" :length 10 :width 10 :height 10) :x 0 :y 0 :z 5 :length 1 :width 1 :depth 6)`,
			want:   "depth exceeds",
		},
		{
			name:   "missing depth",
			source: `(make-hole (box "w" :length 10 :width 10 :height 10) :x 0 :y 0 :length 1 :width 1)`,
			want:   "missing :depth",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evaluateErr(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error %q does not mention %q", msg, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Rotation tests
// ---------------------------------------------------------------------------

func TestRotateAccumulates(t *testing.T) {
	s := evaluate(t, `
(def b (box "b" :length 1 :width 1 :height 1))
(rotate b :z 30)
(rotate b :z 60 :x 10)
`)
	got := s.MustLookup("b").Rotation()
	if !vecEq(got, scene.Vec3{X: 10, Z: 90}) {
		t.Errorf("rotation = %v, want (10, 0, 90)", got)
	}
}

func TestSetRotationReplaces(t *testing.T) {
	s := evaluate(t, `
(def b (box "b" :length 1 :width 1 :height 1))
(rotate b :x 45 :y 45)
(set-rotation b :z 45)
`)
	got := s.MustLookup("b").Rotation()
	if !vecEq(got, scene.Vec3{Z: 45}) {
		t.Errorf("rotation = %v, want (0, 0, 45)", got)
	}
}

func TestRotationNotInherited(t *testing.T) {
	s := evaluate(t, `
(def a (box "a" :length 1 :width 1 :height 1))
(def b (box "b" :length 1 :width 1 :height 1))
(attach b a :offset (vec3 1 0 0))
(rotate a :z 90)
(place a :at (vec3 0 0 0))
`)
	if got := s.MustLookup("b").Rotation(); !got.IsZero() {
		t.Errorf("attached box rotation = %v, want zero", got)
	}
	if got := s.MustLookup("b").AbsolutePosition(); !vecEq(got, scene.Vec3{X: 1}) {
		t.Errorf("attached box position = %v, want (1, 0, 0)", got)
	}
}

// ---------------------------------------------------------------------------
// Lookup and vec3 tests
// ---------------------------------------------------------------------------

func TestPartLookupError(t *testing.T) {
	msg := evaluateErr(t, `(part "nonexistent")`)
	if !strings.Contains(msg, "no box named") {
		t.Errorf("error %q should mention the missing box", msg)
	}
}

func TestVec3(t *testing.T) {
	s := evaluate(t, `
(def v (vec3 1.5 2 -3))
(place (box "a" :length 1 :width 1 :height 1) :at v)
`)
	if got := s.MustLookup("a").AbsolutePosition(); !vecEq(got, scene.Vec3{X: 1.5, Y: 2, Z: -3}) {
		t.Errorf("position = %v, want (1.5, 2, -3)", got)
	}
}

func TestVec3Arity(t *testing.T) {
	msg := evaluateErr(t, `(vec3 1 2)`)
	if !strings.Contains(msg, "exactly 3 arguments") {
		t.Errorf("error %q should mention arity", msg)
	}
}

func TestFullHouseExample(t *testing.T) {
	source := `
;; A wall with a window and a door, a roof slab riding on top.
(def wall (box "front-wall" :length 400 :width 20 :height 250 :material "brick"))
(make-hole wall :x 40 :y 0 :z 90 :length 100 :width 20 :depth 110)
(make-hole wall :x 250 :y 0 :length 90 :width 20 :depth 210)

(def roof (box "roof" :length 420 :width 300 :height 15 :material "slate"))
(attach roof wall :offset (vec3 -10 -140 250))

(def sill (box "sill" :length 110 :width 25 :height 5 :material "oak"))
(add-child wall sill :offset (vec3 35 -5 85))

(place wall :at (vec3 0 0 0))
`
	s := evaluate(t, source)

	if s.BoxCount() != 3 {
		t.Fatalf("expected 3 boxes, got %d", s.BoxCount())
	}
	wall := s.MustLookup("front-wall")
	if len(wall.Apertures()) != 2 {
		t.Errorf("expected 2 apertures, got %d", len(wall.Apertures()))
	}
	if got := s.MustLookup("roof").AbsolutePosition(); !vecEq(got, scene.Vec3{X: -10, Y: -140, Z: 250}) {
		t.Errorf("roof position = %v", got)
	}
	if res := scene.Validate(s); !res.OK() {
		t.Errorf("expected valid scene, got %v", res.Errors)
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	s := evaluate(t, `
(def l (* 2 200))
(def h (- 300 50))
(box "wall" :length l :width 20 :height h)
`)
	b := s.MustLookup("wall")
	if b.Length() != 400 || b.Height() != 250 {
		t.Errorf("dimensions = %gx%gx%g, want 400x20x250", b.Length(), b.Width(), b.Height())
	}
}
