// Package drag turns raw pointer and native drag events into sibling
// reorder requests. It has no knowledge of widgets: geometry, collapse,
// frame scheduling and visual feedback are injected.
package drag

import (
	"math"

	"treeorder/internal/log"
	"treeorder/internal/order"
)

// DefaultThreshold is the pointer travel, in host units, that turns a press
// into a drag.
const DefaultThreshold = 5

// State of the controller.
type State int

const (
	Idle State = iota
	Armed
	Dragging
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Mode is the event source that confirmed the drag.
type Mode int

const (
	ModeNone Mode = iota
	ModePointer
	ModeNative
)

// Point is a position in host coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in host coordinates.
type Rect struct {
	Min, Max Point
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Row is the geometry of one visible tree row.
type Row struct {
	ID     string
	Top    float64
	Height float64
}

func (r Row) mid() float64 { return r.Top + r.Height/2 }

// Host is the tree view the controller reads geometry from.
type Host interface {
	VisibleRows() []Row
	Bounds() Rect
	// Collapse folds id if it is an expanded folder and ignores anything else.
	Collapse(id string)
}

// Scheduler runs fn once on the next frame. The returned func cancels it if
// it has not run yet.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// Visual is the indicator state handed to the renderer.
type Visual struct {
	Dragging string
	Target   string
	Side     order.Position
}

// Indicator receives visual state changes. A zero Visual clears everything.
type Indicator func(Visual)

// Dropper applies a confirmed drop and reports whether the order changed.
type Dropper func(id, targetID string, pos order.Position) bool

// Options tune the controller.
type Options struct {
	Threshold float64
	// RestrictToSiblings limits candidates to rows sharing the dragged
	// item's parent. When false every visible row is a candidate and the
	// release-time parent check rejects foreign targets.
	RestrictToSiblings bool
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, RestrictToSiblings: true}
}

// Session is the state of one gesture.
type Session struct {
	ID        string
	Origin    Point
	Last      Point
	Confirmed bool
	Mode      Mode
	Target    string
	Side      order.Position
}

// Controller is the drag state machine. It is not safe for concurrent use;
// callers deliver every event from one goroutine.
type Controller struct {
	host      Host
	scheduler Scheduler
	indicate  Indicator
	drop      Dropper
	opts      Options

	attached    bool
	session     *Session
	cancelFrame func()
}

// NewController returns a detached controller.
func NewController(host Host, scheduler Scheduler, indicate Indicator, drop Dropper, opts Options) *Controller {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if indicate == nil {
		indicate = func(Visual) {}
	}
	return &Controller{host: host, scheduler: scheduler, indicate: indicate, drop: drop, opts: opts}
}

// Attach starts accepting events.
func (c *Controller) Attach() {
	c.attached = true
}

// Detach stops accepting events and discards any in-flight session.
func (c *Controller) Detach() {
	c.attached = false
	c.Teardown()
}

// Attached reports whether the controller accepts events.
func (c *Controller) Attached() bool {
	return c.attached
}

// State returns the current state.
func (c *Controller) State() State {
	switch {
	case c.session == nil:
		return Idle
	case c.session.Confirmed:
		return Dragging
	default:
		return Armed
	}
}

// Session returns a copy of the current session, or nil when idle.
func (c *Controller) Session() *Session {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// PointerDown arms a session for id. It is ignored while another session
// exists.
func (c *Controller) PointerDown(id string, p Point) {
	if !c.attached || c.session != nil || id == "" {
		return
	}
	c.session = &Session{ID: id, Origin: p, Last: p}
}

// PointerMove feeds a pointer sample. held reports whether the primary
// button is still down.
func (c *Controller) PointerMove(p Point, held bool) {
	s := c.session
	if s == nil {
		return
	}
	if !s.Confirmed {
		if !held {
			c.session = nil
			return
		}
		if distance(p, s.Origin) <= c.opts.Threshold {
			return
		}
		c.confirm(ModePointer)
	}
	if s.Mode != ModePointer {
		return
	}
	c.sample(p)
}

// PointerUp ends a pointer session. An armed session ends without effect.
func (c *Controller) PointerUp(p Point) {
	s := c.session
	if s == nil {
		return
	}
	if !s.Confirmed {
		c.session = nil
		return
	}
	if s.Mode != ModePointer {
		return
	}
	c.release()
}

// NativeDragStart confirms a drag reported by the platform. It is ignored
// when a pointer-mode drag already runs or when an armed session belongs to
// another item.
func (c *Controller) NativeDragStart(id string, p Point) {
	if !c.attached {
		return
	}
	s := c.session
	switch {
	case s == nil:
		c.session = &Session{ID: id, Origin: p, Last: p}
	case s.Confirmed || s.ID != id:
		return
	}
	c.confirm(ModeNative)
}

// NativeDrag feeds a native drag sample.
func (c *Controller) NativeDrag(p Point) {
	s := c.session
	if s == nil || !s.Confirmed || s.Mode != ModeNative {
		return
	}
	c.sample(p)
}

// NativeDragEnd ends a native drag session.
func (c *Controller) NativeDragEnd() {
	s := c.session
	if s == nil || !s.Confirmed || s.Mode != ModeNative {
		return
	}
	c.release()
}

// Cancel ends the session without dropping.
func (c *Controller) Cancel() {
	if c.session == nil {
		return
	}
	log.LogWithFields(log.F("id", c.session.ID)).Debug("drag cancelled")
	c.Teardown()
}

// Teardown discards in-flight state unconditionally.
func (c *Controller) Teardown() {
	c.cancelPending()
	if c.session != nil && c.session.Confirmed {
		c.indicate(Visual{})
	}
	c.session = nil
}

func (c *Controller) confirm(mode Mode) {
	s := c.session
	s.Confirmed = true
	s.Mode = mode
	c.host.Collapse(s.ID)
	c.indicate(Visual{Dragging: s.ID})
	log.LogWithFields(log.F("id", s.ID), log.F("native", mode == ModeNative)).Debug("drag started")
}

// sample records p and replaces any pending frame with a fresh one.
func (c *Controller) sample(p Point) {
	c.session.Last = p
	c.cancelPending()
	if c.scheduler == nil {
		c.frame()
		return
	}
	c.cancelFrame = c.scheduler.Schedule(c.frame)
}

func (c *Controller) cancelPending() {
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
}

// frame resolves the drop target for the latest sample.
func (c *Controller) frame() {
	c.cancelFrame = nil
	s := c.session
	if s == nil || !s.Confirmed {
		return
	}
	p := s.Last
	// Native drag reports y == 0 once the pointer has left the window.
	if !c.host.Bounds().Contains(p) || (s.Mode == ModeNative && p.Y == 0) {
		s.Target = ""
		c.indicate(Visual{Dragging: s.ID})
		return
	}
	target, side, ok := c.resolve(s.ID, p.Y)
	if !ok {
		s.Target = ""
		c.indicate(Visual{Dragging: s.ID})
		return
	}
	s.Target, s.Side = target, side
	c.indicate(Visual{Dragging: s.ID, Target: target, Side: side})
}

// resolve picks the visible row whose vertical midpoint is closest to y.
func (c *Controller) resolve(dragged string, y float64) (string, order.Position, bool) {
	parent := order.ParentID(dragged)
	best := ""
	bestDist := math.Inf(1)
	var bestMid float64
	for _, row := range c.host.VisibleRows() {
		if row.Height <= 0 || row.ID == dragged || order.IsDescendant(row.ID, dragged) {
			continue
		}
		if c.opts.RestrictToSiblings && order.ParentID(row.ID) != parent {
			continue
		}
		mid := row.mid()
		if d := math.Abs(mid - y); d < bestDist {
			best, bestDist, bestMid = row.ID, d, mid
		}
	}
	if best == "" {
		return "", order.Before, false
	}
	if y < bestMid {
		return best, order.Before, true
	}
	return best, order.After, true
}

func (c *Controller) release() {
	c.cancelPending()
	s := c.session
	c.session = nil
	c.indicate(Visual{})

	if s.Target == "" || s.Target == s.ID {
		log.LogWithFields(log.F("id", s.ID)).Debug("drag released without target")
		return
	}
	if order.ParentID(s.Target) != order.ParentID(s.ID) {
		log.LogWithFields(log.F("id", s.ID), log.F("target", s.Target)).Debug("drop rejected: different parent")
		return
	}
	if c.drop == nil {
		return
	}
	moved := c.drop(s.ID, s.Target, s.Side)
	log.LogWithFields(
		log.F("id", s.ID),
		log.F("target", s.Target),
		log.F("position", s.Side.String()),
		log.F("moved", moved),
	).Debug("drag dropped")
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
