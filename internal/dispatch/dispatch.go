// Package dispatch resolves, for a visitor type and a node, the most
// specific handler the visitor registered.
//
// A visitor registers typed handlers once per visitor type. Each handler
// is declared for one node variant (*ast.BinaryExpression) or one node
// category interface (ast.Expression). Dispatch first looks for a handler
// of the node's exact type; on a miss it walks the node's ancestry:
//
//  1. category interfaces the node implements, in the order
//     ScopeContainer, Declaration, TypeBase, Statement, Expression
//  2. other interfaces with a registered handler, by name
//  3. the variants the node extends by embedding, nearest first
//  4. ast.Node
//
// and picks the first ancestor with a handler. Resolutions are memoized
// per node type, so every dispatch after the first is a map lookup.
//
// Tables are built lazily under a global lock the first time a visitor
// type is seen and are read-only afterwards. Handler misconfiguration is
// a programming error and panics with a *ConfigError.
package dispatch

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/HugoDaniel/shadertree/internal/ast"
)

// Registrar is implemented by visitors that declare handlers.
type Registrar interface {
	RegisterHandlers(h *Handlers)
}

// DefaultVisitor is implemented by visitors that provide the universal
// root handler. It is registered for ast.Node unless the visitor
// registers its own ast.Node handler.
type DefaultVisitor interface {
	DefaultVisit(n ast.Node) ast.Node
}

// ConfigError reports a malformed visitor. It is raised with panic.
type ConfigError struct {
	Visitor reflect.Type
	Node    reflect.Type
	Reason  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Visitor != nil && e.Node != nil:
		return fmt.Sprintf("dispatch: %s: %s: %s", e.Visitor, e.Node, e.Reason)
	case e.Visitor != nil:
		return fmt.Sprintf("dispatch: %s: %s", e.Visitor, e.Reason)
	}
	return "dispatch: " + e.Reason
}

// Observer receives table and cache events.
type Observer interface {
	TableBuilt(visitor reflect.Type, handlers int)
	Resolved(visitor, node reflect.Type, cached bool)
}

var (
	nodeType = reflect.TypeFor[ast.Node]()

	// Category interfaces in ancestry order.
	categories = []reflect.Type{
		reflect.TypeFor[ast.ScopeContainer](),
		reflect.TypeFor[ast.Declaration](),
		reflect.TypeFor[ast.TypeBase](),
		reflect.TypeFor[ast.Statement](),
		reflect.TypeFor[ast.Expression](),
	}

	observer atomic.Pointer[Observer]
	logger   atomic.Pointer[slog.Logger]
)

// SetObserver installs a process-wide observer. nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		observer.Store(nil)
		return
	}
	observer.Store(&o)
}

// SetLogger sets the logger used for table builds. nil discards.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func currentLogger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func observe(fn func(Observer)) {
	if o := observer.Load(); o != nil {
		fn(*o)
	}
}

// ----------------------------------------------------------------------------
// Registration
// ----------------------------------------------------------------------------

type handler struct {
	param reflect.Type
	call  func(self any, n ast.Node) ast.Node
}

// Handlers collects the handlers of one visitor type.
type Handlers struct {
	visitor reflect.Type
	byType  map[reflect.Type]handler
}

// Visitor returns the visitor type being registered.
func (h *Handlers) Visitor() reflect.Type {
	return h.visitor
}

// Handle registers fn for nodes of type T. V is the visitor type the
// handler receives; it must be satisfied by the registering visitor.
func Handle[V any, T ast.Node](h *Handlers, fn func(V, T) ast.Node) {
	if fn == nil {
		panic(&ConfigError{Visitor: h.visitor, Reason: "nil handler"})
	}
	h.add(reflect.TypeFor[V](), reflect.TypeFor[T](), func(self any, n ast.Node) ast.Node {
		return fn(self.(V), n.(T))
	})
}

// Func registers a handler given as a function value, typically a method
// expression such as (*MyVisitor).VisitBinary. The function must take the
// visitor and exactly one node parameter and return an ast.Node.
func (h *Handlers) Func(fn any) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(&ConfigError{Visitor: h.visitor, Reason: fmt.Sprintf("handler %T is not a function", fn)})
	}
	ft := v.Type()
	if ft.IsVariadic() || ft.NumIn() != 2 {
		panic(&ConfigError{Visitor: h.visitor, Reason: fmt.Sprintf(
			"handler %s must declare exactly one node parameter", ft)})
	}
	if ft.NumOut() != 1 || ft.Out(0) != nodeType {
		panic(&ConfigError{Visitor: h.visitor, Reason: fmt.Sprintf("handler %s must return ast.Node", ft)})
	}
	h.add(ft.In(0), ft.In(1), func(self any, n ast.Node) ast.Node {
		out := v.Call([]reflect.Value{reflect.ValueOf(self), reflect.ValueOf(n)})[0]
		if out.IsNil() {
			return nil
		}
		return out.Interface().(ast.Node)
	})
}

func (h *Handlers) add(receiver, param reflect.Type, call func(any, ast.Node) ast.Node) {
	if !h.visitor.AssignableTo(receiver) {
		panic(&ConfigError{Visitor: h.visitor, Node: param, Reason: fmt.Sprintf(
			"handler receiver %s does not accept the visitor", receiver)})
	}
	if !isNodeParam(param) {
		panic(&ConfigError{Visitor: h.visitor, Node: param, Reason: "parameter is neither a node type nor an interface implemented by node types"})
	}
	if _, dup := h.byType[param]; dup {
		panic(&ConfigError{Visitor: h.visitor, Node: param, Reason: "duplicate handler"})
	}
	h.byType[param] = handler{param: param, call: call}
}

// isNodeParam reports whether t is a node variant or an interface that
// some node variant implements.
func isNodeParam(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		for _, nt := range ast.NodeTypes() {
			if nt.Implements(t) {
				return true
			}
		}
		return false
	}
	return t.Implements(nodeType) && t.Kind() == reflect.Pointer
}

// ----------------------------------------------------------------------------
// Tables
// ----------------------------------------------------------------------------

// Table is the dispatch table of one visitor type.
type Table struct {
	visitor  reflect.Type
	handlers map[reflect.Type]handler
	// Interfaces with handlers that are not categories, sorted by name.
	extra    []reflect.Type
	resolved sync.Map // reflect.Type -> *resolution
}

// resolution is the memoized answer for one node type: the handler and
// the embedded-field path that converts the node to the handler's
// parameter type.
type resolution struct {
	handler handler
	path    []int
}

var (
	buildMu sync.Mutex
	tables  sync.Map // reflect.Type -> *Table
)

// For returns the table for the dynamic type of visitor, building it on
// first use.
func For(visitor any) *Table {
	vt := reflect.TypeOf(visitor)
	if vt == nil {
		panic(&ConfigError{Reason: "nil visitor"})
	}
	if t, ok := tables.Load(vt); ok {
		return t.(*Table)
	}

	buildMu.Lock()
	defer buildMu.Unlock()
	if t, ok := tables.Load(vt); ok {
		return t.(*Table)
	}
	t := build(vt, visitor)
	tables.Store(vt, t)
	return t
}

func build(vt reflect.Type, visitor any) *Table {
	h := &Handlers{visitor: vt, byType: make(map[reflect.Type]handler)}
	if r, ok := visitor.(Registrar); ok {
		r.RegisterHandlers(h)
	}
	if _, ok := visitor.(DefaultVisitor); ok {
		if _, custom := h.byType[nodeType]; !custom {
			h.byType[nodeType] = handler{param: nodeType, call: func(self any, n ast.Node) ast.Node {
				return self.(DefaultVisitor).DefaultVisit(n)
			}}
		}
	}
	if _, ok := h.byType[nodeType]; !ok {
		panic(&ConfigError{Visitor: vt, Reason: "no root handler: implement DefaultVisit or register an ast.Node handler"})
	}

	t := &Table{visitor: vt, handlers: h.byType}
	for param := range h.byType {
		if param.Kind() == reflect.Interface && param != nodeType && !isCategory(param) {
			t.extra = append(t.extra, param)
		}
	}
	sort.Slice(t.extra, func(i, j int) bool { return t.extra[i].String() < t.extra[j].String() })

	currentLogger().Debug("dispatch table built", "visitor", vt.String(), "handlers", len(h.byType))
	observe(func(o Observer) { o.TableBuilt(vt, len(h.byType)) })
	return t
}

func isCategory(t reflect.Type) bool {
	for _, c := range categories {
		if c == t {
			return true
		}
	}
	return false
}

// Visitor returns the visitor type the table belongs to.
func (t *Table) Visitor() reflect.Type {
	return t.visitor
}

// Len returns the number of registered handlers.
func (t *Table) Len() int {
	return len(t.handlers)
}

// HandlerType returns the parameter type of the handler that nodes of
// type node resolve to.
func (t *Table) HandlerType(node reflect.Type) reflect.Type {
	return t.resolve(node).handler.param
}

// Ancestry returns the types searched for a node type after the exact
// type, in search order.
func (t *Table) Ancestry(node reflect.Type) []reflect.Type {
	var out []reflect.Type
	for _, c := range categories {
		if node.Implements(c) {
			out = append(out, c)
		}
	}
	for _, e := range t.extra {
		if node.Implements(e) {
			out = append(out, e)
		}
	}
	out = append(out, ast.BaseChain(node)...)
	return append(out, nodeType)
}

func (t *Table) resolve(node reflect.Type) *resolution {
	if r, ok := t.resolved.Load(node); ok {
		observe(func(o Observer) { o.Resolved(t.visitor, node, true) })
		return r.(*resolution)
	}

	r := t.lookup(node)
	actual, _ := t.resolved.LoadOrStore(node, r)
	observe(func(o Observer) { o.Resolved(t.visitor, node, false) })
	return actual.(*resolution)
}

func (t *Table) lookup(node reflect.Type) *resolution {
	if h, ok := t.handlers[node]; ok {
		return &resolution{handler: h}
	}
	for _, anc := range t.Ancestry(node) {
		h, ok := t.handlers[anc]
		if !ok {
			continue
		}
		if anc.Kind() == reflect.Interface {
			return &resolution{handler: h}
		}
		path, _ := basePath(node, anc)
		return &resolution{handler: h, path: path}
	}
	panic(&ConfigError{Visitor: t.visitor, Node: node, Reason: "no handler found"})
}

// basePath returns the embedded-field index path from variant from to
// its base variant to.
func basePath(from, to reflect.Type) ([]int, bool) {
	var path []int
	for from != to {
		base, field, ok := ast.BaseOf(from)
		if !ok {
			return nil, false
		}
		path = append(path, field)
		from = base
	}
	return path, true
}

// ----------------------------------------------------------------------------
// Dispatch
// ----------------------------------------------------------------------------

// Dispatch invokes the handler for the runtime type of n. A nil node is
// returned as is.
func (t *Table) Dispatch(self any, n ast.Node) ast.Node {
	if ast.IsNil(n) {
		return n
	}
	r := t.resolve(reflect.TypeOf(n))
	return invoke(self, n, r.handler, r.path)
}

// DispatchAs invokes the handler resolved for static instead of the
// runtime type of n. static must be an interface n implements or a
// variant n is or extends; the handler sees n as that variant.
func (t *Table) DispatchAs(self any, n ast.Node, static reflect.Type) ast.Node {
	if ast.IsNil(n) {
		return n
	}
	actual := reflect.TypeOf(n)

	if static.Kind() == reflect.Interface {
		if !actual.Implements(static) {
			panic(&ConfigError{Visitor: t.visitor, Node: actual, Reason: fmt.Sprintf("does not implement %s", static)})
		}
		if h, ok := t.handlers[static]; ok {
			return invoke(self, n, h, nil)
		}
		return invoke(self, n, t.handlers[nodeType], nil)
	}

	prefix, ok := basePath(actual, static)
	if !ok {
		panic(&ConfigError{Visitor: t.visitor, Node: actual, Reason: fmt.Sprintf("is not a %s", static)})
	}
	r := t.resolve(static)
	path := append(append([]int(nil), prefix...), r.path...)
	return invoke(self, n, r.handler, path)
}

// invoke calls h with n viewed through the embedded-field path. When the
// handler hands back the embedded view unchanged, the original node is
// returned.
func invoke(self any, n ast.Node, h handler, path []int) ast.Node {
	if len(path) == 0 {
		return h.call(self, n)
	}
	view := reflect.ValueOf(n).Elem().FieldByIndex(path).Addr().Interface().(ast.Node)
	out := h.call(self, view)
	if out == view {
		return n
	}
	return out
}
