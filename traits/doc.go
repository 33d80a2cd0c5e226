// Package traits answers, per element type, which operations must run
// per element and which may be done as raw memory operations.
//
// Go types have no special member functions, so a type opts into per-element
// behavior by implementing methods on its pointer receiver:
//
//	type Conn struct{ fd int; buf []byte }
//
//	func (c *Conn) Init()               { c.fd = -1 }           // Initializer
//	func (c *Conn) Destroy()            { closeFD(c.fd) }       // Destroyer
//	func (c *Conn) Clone() Conn         { ... }                 // Cloner[Conn]
//	func (c *Conn) MoveFrom(src *Conn)  { *c = *src; src.fd = -1 } // Mover[Conn]
//	func (c *Conn) Equal(o Conn) bool   { return c.fd == o.fd } // Equaler[Conn]
//
// Everything else is trivial: construction is zero-fill, destruction is a
// no-op, copy and move are memmove, and equality is byte equality when the
// layout allows it. Pointer types are always trivial.
package traits
