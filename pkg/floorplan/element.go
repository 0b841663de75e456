package floorplan

import (
	"fmt"

	"github.com/htfab/tt-multiplexer/pkg/geom"
	"github.com/htfab/tt-multiplexer/pkg/placer"
)

// Kind is the type of a floorplan element.
type Kind int

const (
	KindDie Kind = iota
	KindTop
	KindBranch
	KindMux
	KindBlock
	KindController
)

func (k Kind) String() string {
	switch k {
	case KindDie:
		return "die"
	case KindTop:
		return "top"
	case KindBranch:
		return "branch"
	case KindMux:
		return "mux"
	case KindBlock:
		return "block"
	case KindController:
		return "controller"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Element is a rectangle of the floorplan with its placed children.
// Elements that become macros carry the module name to instantiate.
type Element struct {
	Kind     Kind
	ModName  string
	Width    int
	Height   int
	Children []Child

	// Module is the user module a block element was built for.
	Module *placer.ModuleSlot
}

// Child is an element placed inside its parent. Only named children take
// part in macro instance naming.
type Child struct {
	Elem   *Element
	Pos    geom.Point
	Orient Orientation
	Name   string
}

// Bounds returns the child's footprint in its parent's frame.
func (c Child) Bounds() geom.Rect {
	return geom.RectWH(c.Pos.X, c.Pos.Y, c.Elem.Width, c.Elem.Height)
}

func (e *Element) add(child *Element, pos geom.Point, o Orientation, name string) {
	e.Children = append(e.Children, Child{Elem: child, Pos: pos, Orient: o, Name: name})
}

// Bounds returns the element's own frame.
func (e *Element) Bounds() geom.Rect { return geom.RectWH(0, 0, e.Width, e.Height) }

// Find returns the children of kind k in depth-first order, with their
// positions in e's frame.
func (e *Element) Find(k Kind) ([]Child, error) {
	var out []Child
	for _, c := range e.Children {
		if c.Elem.Kind == k {
			out = append(out, c)
		}
		sub, err := c.Elem.Find(k)
		if err != nil {
			return nil, err
		}
		for _, s := range sub {
			placed, err := c.transform(s)
			if err != nil {
				return nil, err
			}
			out = append(out, placed)
		}
	}
	return out, nil
}

// transform moves s, placed in c's frame, into the frame of c's parent.
func (c Child) transform(s Child) (Child, error) {
	r, err := c.Orient.Place(c.Elem.Width, c.Elem.Height, s.Bounds())
	if err != nil {
		return Child{}, err
	}
	o, err := c.Orient.Then(s.Orient)
	if err != nil {
		return Child{}, err
	}
	s.Pos = c.Pos.Add(r.LL())
	s.Orient = o
	return s, nil
}

// MacroInstance is a placed macro with its hierarchical instance name.
type MacroInstance struct {
	InstName string      `json:"inst_name"`
	ModName  string      `json:"mod_name"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Orient   Orientation `json:"orient"`

	Elem *Element `json:"-"`
}

// Pos returns the instance origin.
func (m MacroInstance) Pos() geom.Point { return geom.Pt(m.X, m.Y) }

func (m MacroInstance) String() string {
	return fmt.Sprintf("%s %s (%d,%d) %s", m.InstName, m.ModName, m.X, m.Y, m.Orient)
}

// SubMacros returns every macro below e, positioned in e's frame. Names
// join the child names with '.', so the square brackets in them are
// escaped the way DEF expects.
func (e *Element) SubMacros() ([]MacroInstance, error) {
	var out []MacroInstance
	for _, c := range e.Children {
		if c.Name == "" {
			continue
		}
		sub, err := c.Elem.SubMacros()
		if err != nil {
			return nil, err
		}
		for _, sm := range sub {
			placed, err := c.transform(Child{
				Elem:   sm.Elem,
				Pos:    sm.Pos(),
				Orient: sm.Orient,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, MacroInstance{
				InstName: c.Name + "." + sm.InstName,
				ModName:  sm.ModName,
				X:        placed.Pos.X,
				Y:        placed.Pos.Y,
				Orient:   placed.Orient,
				Elem:     sm.Elem,
			})
		}
		if c.Elem.ModName != "" {
			out = append(out, MacroInstance{
				InstName: c.Name,
				ModName:  c.Elem.ModName,
				X:        c.Pos.X,
				Y:        c.Pos.Y,
				Orient:   c.Orient,
				Elem:     c.Elem,
			})
		}
	}
	return out, nil
}
