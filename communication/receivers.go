package communication

import (
	"fmt"
	"io"
	"sync/atomic"
)

// Printer writes every message as a line of text.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Var(v VarBinder) {
	fmt.Fprintf(p.w, "var %s\n", v)
}

func (p *Printer) CloseModeling() {
	fmt.Fprintln(p.w, "modeling closed")
}

func (p *Printer) Instance(in Instance) {
	fmt.Fprintf(p.w, "instance %s\n", in)
}

// NodeCount counts declared variables and reported instances.
type NodeCount struct {
	vars      atomic.Int64
	instances atomic.Int64
	closed    atomic.Bool
}

func (c *NodeCount) Var(VarBinder) { c.vars.Add(1) }

func (c *NodeCount) CloseModeling() { c.closed.Store(true) }

func (c *NodeCount) Instance(Instance) { c.instances.Add(1) }

func (c *NodeCount) Vars() int64 { return c.vars.Load() }

func (c *NodeCount) Instances() int64 { return c.instances.Load() }

func (c *NodeCount) Closed() bool { return c.closed.Load() }
