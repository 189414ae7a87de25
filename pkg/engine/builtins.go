package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/masonry/pkg/scene"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpBox wraps a *scene.Box so it can be passed between builtins.
type sexpBox struct {
	box *scene.Box
}

func (b *sexpBox) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(box %q %gx%gx%g)", b.box.Label(), b.box.Length(), b.box.Width(), b.box.Height())
}
func (b *sexpBox) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a scene.Vec3.
type sexpVec3 struct {
	vec scene.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	fn         string
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(fn string, args []zygo.Sexp) kwArgs {
	result := kwArgs{fn: fn, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// A trailing keyword is a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword key as a number, or def when it is absent.
func (pa kwArgs) float(key string, def float64) (float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return f, nil
}

// requireFloat is float for keywords without a default.
func (pa kwArgs) requireFloat(key string) (float64, error) {
	if _, ok := pa.kw[key]; !ok {
		return 0, fmt.Errorf("%s: missing :%s", pa.fn, key)
	}
	return pa.float(key, 0)
}

// vec returns keyword key as a vector, or the zero vector when absent.
func (pa kwArgs) vec(key string) (scene.Vec3, error) {
	v, ok := pa.kw[key]
	if !ok {
		return scene.Vec3{}, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return scene.Vec3{}, fmt.Errorf("%s: %s: %w", pa.fn, key, err)
	}
	return vec, nil
}

// axes reads :x, :y and :z, each defaulting to zero.
func (pa kwArgs) axes() (scene.Vec3, error) {
	var out scene.Vec3
	var err error
	if out.X, err = pa.float("x", 0); err != nil {
		return out, err
	}
	if out.Y, err = pa.float("y", 0); err != nil {
		return out, err
	}
	out.Z, err = pa.float("z", 0)
	return out, err
}

// box returns positional argument i as a box.
func (pa kwArgs) box(i int, what string) (*scene.Box, error) {
	if i >= len(pa.positional) {
		return nil, fmt.Errorf("%s requires a %s box", pa.fn, what)
	}
	b, err := toBox(pa.positional[i])
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", pa.fn, what, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBox extracts a box from a sexpBox.
func toBox(s zygo.Sexp) (*scene.Box, error) {
	if b, ok := s.(*sexpBox); ok {
		return b.box, nil
	}
	return nil, fmt.Errorf("expected box, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (scene.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return scene.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is the signature shared by all scene builtins. It receives the
// already-parsed arguments.
type builtin func(s *scene.Scene, pa kwArgs) (zygo.Sexp, error)

// builtins maps script names (after kebab-case conversion) to their
// implementations.
var builtins = map[string]builtin{
	"box":             boxBuiltin,
	"place":           placeBuiltin,
	"attach":          attachBuiltin,
	"attach_relative": attachRelativeBuiltin,
	"add_child":       addChildBuiltin,
	"make_hole":       makeHoleBuiltin,
	"rotate":          rotateBuiltin,
	"set_rotation":    setRotationBuiltin,
	"part":            partBuiltin,
	"vec3":            vec3Builtin,
}

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins operate on s, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	for name, fn := range builtins {
		fn := fn
		display := strings.ReplaceAll(name, "_", "-")
		env.AddFunction(name, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			return fn(s, parseArgs(display, args))
		})
	}
}

// (box "wall" :length 400 :width 20 :height 250 :material "brick")
func boxBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	var name string
	if len(pa.positional) > 0 {
		n, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: name: %w", err)
		}
		name = n
	}
	l, err := pa.requireFloat("length")
	if err != nil {
		return zygo.SexpNull, err
	}
	w, err := pa.requireFloat("width")
	if err != nil {
		return zygo.SexpNull, err
	}
	h, err := pa.requireFloat("height")
	if err != nil {
		return zygo.SexpNull, err
	}
	var material string
	if v, ok := pa.kw["material"]; ok {
		if material, err = toString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("box: material: %w", err)
		}
	}

	b, err := s.NewBox(name, l, w, h, material)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: %w", err)
	}
	return &sexpBox{box: b}, nil
}

// (place b :at (vec3 0 0 0)) makes b a root at an absolute position.
func placeBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	b, err := pa.box(0, "root")
	if err != nil {
		return zygo.SexpNull, err
	}
	at, err := pa.vec("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := b.SetAbsolutePosition(at.X, at.Y, at.Z); err != nil {
		return zygo.SexpNull, fmt.Errorf("place: %w", err)
	}
	s.AddRoot(b)
	return &sexpBox{box: b}, nil
}

// (attach child ref :offset (vec3 1 2 3))
func attachBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	child, ref, err := pair(pa, "child", "reference")
	if err != nil {
		return zygo.SexpNull, err
	}
	off, err := pa.vec("offset")
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := child.Attach(ref, off.X, off.Y, off.Z); err != nil {
		return zygo.SexpNull, fmt.Errorf("attach: %w", err)
	}
	return &sexpBox{box: child}, nil
}

// (attach-relative child ref :factor (vec3 0.5 0 1))
func attachRelativeBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	child, ref, err := pair(pa, "child", "reference")
	if err != nil {
		return zygo.SexpNull, err
	}
	f, err := pa.vec("factor")
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := child.AttachRelative(ref, f.X, f.Y, f.Z); err != nil {
		return zygo.SexpNull, fmt.Errorf("attach-relative: %w", err)
	}
	return &sexpBox{box: child}, nil
}

// (add-child parent child :offset (vec3 0 0 10))
func addChildBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	parent, child, err := pair(pa, "parent", "child")
	if err != nil {
		return zygo.SexpNull, err
	}
	off, err := pa.vec("offset")
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := parent.AddStaticChild(child, off.X, off.Y, off.Z); err != nil {
		return zygo.SexpNull, fmt.Errorf("add-child: %w", err)
	}
	return &sexpBox{box: child}, nil
}

// (make-hole b :x 2 :y 0 [:z 1] :length 4 :width 20 :depth 8)
//
// Without :z the cut starts at the near face.
func makeHoleBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	b, err := pa.box(0, "target")
	if err != nil {
		return zygo.SexpNull, err
	}
	var vals [5]float64
	for i, key := range []string{"x", "y", "length", "width", "depth"} {
		if vals[i], err = pa.requireFloat(key); err != nil {
			return zygo.SexpNull, err
		}
	}
	x, y, l, w, d := vals[0], vals[1], vals[2], vals[3], vals[4]

	if _, recessed := pa.kw["z"]; recessed {
		var z float64
		if z, err = pa.float("z", 0); err != nil {
			return zygo.SexpNull, err
		}
		_, err = b.MakeRecessedHole(x, y, z, l, w, d)
	} else {
		_, err = b.MakeHole(x, y, l, w, d)
	}
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("make-hole: %w", err)
	}
	return &sexpBox{box: b}, nil
}

// (rotate b :z 90) adds to the box's own rotation.
func rotateBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	b, err := pa.box(0, "target")
	if err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.axes()
	if err != nil {
		return zygo.SexpNull, err
	}
	b.RotateX(r.X).RotateY(r.Y).RotateZ(r.Z)
	return &sexpBox{box: b}, nil
}

// (set-rotation b :x 0 :y 0 :z 45) replaces the box's own rotation.
func setRotationBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	b, err := pa.box(0, "target")
	if err != nil {
		return zygo.SexpNull, err
	}
	r, err := pa.axes()
	if err != nil {
		return zygo.SexpNull, err
	}
	b.SetRotation(r.X, r.Y, r.Z)
	return &sexpBox{box: b}, nil
}

// (part "name")
func partBuiltin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("part requires a name argument")
	}
	name, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
	}
	b := s.Lookup(name)
	if b == nil {
		return zygo.SexpNull, fmt.Errorf("part: no box named %q", name)
	}
	return &sexpBox{box: b}, nil
}

// (vec3 1 2 3)
func vec3Builtin(s *scene.Scene, pa kwArgs) (zygo.Sexp, error) {
	if len(pa.positional) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(pa.positional))
	}
	var c [3]float64
	for i, arg := range pa.positional {
		f, err := toFloat64(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		c[i] = f
	}
	return &sexpVec3{vec: scene.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// pair reads the first two positional arguments as boxes.
func pair(pa kwArgs, first, second string) (*scene.Box, *scene.Box, error) {
	a, err := pa.box(0, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := pa.box(1, second)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
