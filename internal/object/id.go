// Package object defines tracked-object identity and the registry that owns
// each object's live renderable handle. Tracked objects are the left hand,
// the right hand, and any number of balls.
package object

import "fmt"

// Kind discriminates the tracked-object families.
type Kind int

const (
	KindHandLeft Kind = iota
	KindHandRight
	KindBall
)

// ID identifies one tracked object. Ball IDs carry the ball identifier from
// the scene config; hand IDs leave it empty.
type ID struct {
	Kind Kind
	Ball string
}

// HandLeft returns the left-hand identifier.
func HandLeft() ID { return ID{Kind: KindHandLeft} }

// HandRight returns the right-hand identifier.
func HandRight() ID { return ID{Kind: KindHandRight} }

// BallID returns the identifier for the ball with the given config id.
func BallID(id string) ID { return ID{Kind: KindBall, Ball: id} }

// Key returns the stable string key used by the parameter store and logs.
func (id ID) Key() string {
	switch id.Kind {
	case KindHandLeft:
		return "hand-left"
	case KindHandRight:
		return "hand-right"
	case KindBall:
		return "ball-" + id.Ball
	}
	return fmt.Sprintf("unknown-%d", int(id.Kind))
}

// IsBall reports whether the identifier names a ball.
func (id ID) IsBall() bool { return id.Kind == KindBall }

// String implements fmt.Stringer.
func (id ID) String() string { return id.Key() }
