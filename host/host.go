// Package host defines the boundary between the extension and the application
// it attaches to. Everything the extension reads from or writes into the host
// goes through these interfaces.
package host

import "math"

// Kind is the type tag of a content object.
type Kind string

// Kinds of content objects.
const (
	KindAny        Kind = ""
	KindGameObject Kind = "GameObject"
	KindTexture    Kind = "Texture2D"
	KindAudioClip  Kind = "AudioClip"
)

// Object is any host-owned object that may be destroyed by the host at any
// time.
type Object interface {
	Name() string
	Kind() Kind

	// Alive returns false once the host has destroyed the object.
	Alive() bool
}

// A Host is the running application.
type Host interface {
	World() World
	Content() ContentStore
	Hero() Hero
	Equipment() Equipment
	Interceptor() Interceptor
	Events() Events

	// Ready returns true once the host has finished loading its core
	// managers.
	Ready() bool

	// Platform returns the runtime OS name, as in GOOS.
	Platform() string

	// ContentRoot is the directory the host loads its bundles from.
	ContentRoot() string
}

// Vec3 is a position or scale.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Len returns the length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Vec2 is a planar velocity.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized returns v scaled to unit length, or zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}

	return v.Scale(1 / l)
}

// Lerp interpolates from v toward o by t, with t clamped to [0, 1].
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	t = math.Min(math.Max(t, 0), 1)
	return v.Add(o.Sub(v).Scale(t))
}

// Euler is a rotation in degrees around each axis.
type Euler struct {
	X, Y, Z float64
}

// Identity is the zero rotation.
var Identity = Euler{}

// Mirrored faces the opposite horizontal direction.
var Mirrored = Euler{Y: 180}
