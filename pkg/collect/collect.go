package collect

import (
	"errors"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/couplint/couplint/pkg/parser"
)

// ErrUnparseable is returned when the syntax tree is too damaged to walk.
var ErrUnparseable = errors.New("source could not be parsed")

// Options configures the collector.
type Options struct {
	// BlockingCallNames are call names (final segment) treated as
	// blocking/timing operations, e.g. "sleep".
	BlockingCallNames map[string]struct{}
}

// Collector performs the single walk over a parsed file.
type Collector struct {
	opts Options
}

// New creates a collector.
func New(opts Options) *Collector {
	if opts.BlockingCallNames == nil {
		opts.BlockingCallNames = DefaultBlockingCalls()
	}
	return &Collector{opts: opts}
}

// DefaultBlockingCalls returns the built-in blocking call name set.
func DefaultBlockingCalls() map[string]struct{} {
	names := []string{"sleep", "Sleep", "usleep", "nanosleep", "delay", "wait_for"}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Run walks the tree once, depth-first, and returns the populated per-file
// State. Every analysis layer reads the result; none of them see the tree.
func (c *Collector) Run(res *parser.ParseResult) (*State, error) {
	root := res.Tree.RootNode()
	if root == nil || root.Type() == "ERROR" {
		return nil, ErrUnparseable
	}

	s := &State{
		path:     res.Path,
		language: res.Language,
		globals:  make(map[string]Position),
		bodySigs: make(map[string][]string),
	}

	w := &walker{state: s, source: res.Source, lang: res.Language, blocking: c.opts.BlockingCallNames}
	w.walk(root, walkCtx{})
	w.seal()

	return s, nil
}

// walkCtx carries enclosing scope down the recursion.
type walkCtx struct {
	fn    *FunctionSig // function being built, nil at module scope
	class string
}

type walker struct {
	state    *State
	source   []byte
	lang     parser.Language
	blocking map[string]struct{}
}

// walk visits every node exactly once. Per-kind handlers append to the state;
// the walker itself holds no analysis logic.
func (w *walker) walk(node *sitter.Node, ctx walkCtx) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	switch parser.KindOf(w.lang, nodeType) {
	case parser.KindFunction:
		w.visitFunction(node, ctx)
		return // visitFunction recurses into the body itself
	case parser.KindClass:
		w.visitClass(node, ctx)
		return
	case parser.KindCall:
		w.visitCall(node, ctx)
	case parser.KindNumberLiteral:
		w.visitLiteral(node, ctx, true)
	case parser.KindStringLiteral:
		w.visitLiteral(node, ctx, false)
	case parser.KindGlobalDecl:
		w.visitGlobal(node, ctx)
	case parser.KindImport:
		w.visitImport(node)
	case parser.KindFor, parser.KindWhile:
		w.visitLoop(node, ctx)
	case parser.KindAssert:
		if ctx.fn != nil {
			ctx.fn.AssertCount++
		}
	}

	for i := range int(node.ChildCount()) {
		w.walk(node.Child(i), ctx)
	}
}

// seal orders the collected functions by source position and registers their
// normalized body signatures in that order, so duplicate groups always name
// the earliest function as the canonical original.
func (w *walker) seal() {
	s := w.state
	sort.SliceStable(s.functions, func(i, j int) bool {
		if s.functions[i].StartLine != s.functions[j].StartLine {
			return s.functions[i].StartLine < s.functions[j].StartLine
		}
		return s.functions[i].Column < s.functions[j].Column
	})

	// Go methods live outside the type declaration; fold them back into the
	// inventory by receiver name so size estimates cover the whole type.
	if w.lang == parser.LangGo {
		byName := make(map[string]*ClassInfo, len(s.classes))
		for i := range s.classes {
			byName[s.classes[i].Name] = &s.classes[i]
		}
		for i := range s.functions {
			fn := &s.functions[i]
			if fn.Scope == "" {
				continue
			}
			if cls, ok := byName[fn.Scope]; ok {
				cls.MethodCount++
				cls.EstimatedLOC += fn.LineSpan()
			}
		}
	}

	for i := range s.functions {
		fn := &s.functions[i]
		// Only substantial bodies participate in duplicate grouping;
		// tiny functions collide on shape constantly and mean nothing.
		if len(fn.BodyTokens) <= 3 {
			continue
		}
		sig := strings.Join(fn.BodyTokens, "|")
		if _, seen := s.bodySigs[sig]; !seen {
			s.sigOrder = append(s.sigOrder, sig)
		}
		s.bodySigs[sig] = append(s.bodySigs[sig], fn.ID())
	}
}

func (w *walker) visitFunction(node *sitter.Node, ctx walkCtx) {
	fn := FunctionSig{
		Scope:     ctx.class,
		StartLine: node.StartPoint().Row + 1,
		EndLine:   node.EndPoint().Row + 1,
		Column:    node.StartPoint().Column,
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		fn.Name = parser.GetNodeText(nameNode, w.source)
	}
	if fn.Name == "" {
		fn.Name = "<anonymous>"
	}

	if w.lang == parser.LangGo && node.Type() == "method_declaration" {
		if recv := goReceiverType(node, w.source); recv != "" {
			fn.Scope = recv
		}
	}

	w.collectParams(node, &fn)

	body := node.ChildByFieldName("body")
	if body == nil {
		body = node.ChildByFieldName("block")
	}
	if body != nil {
		fn.BodyTokens = w.bodyTokens(body)
	}

	// Recurse with this function as scope so asserts, calls and recursion
	// inside the body attribute to it.
	inner := ctx
	inner.fn = &fn
	for i := range int(node.ChildCount()) {
		w.walk(node.Child(i), inner)
	}

	w.state.functions = append(w.state.functions, fn)
}

// bodyTokens emits one shape token per direct body statement: statement kind
// only, never literal values or identifier names. Two functions sharing the
// token sequence are duplicate candidates.
func (w *walker) bodyTokens(body *sitter.Node) []string {
	var tokens []string
	for i := range int(body.NamedChildCount()) {
		stmt := body.NamedChild(i)
		kind := parser.KindOf(w.lang, stmt.Type())
		switch kind {
		case parser.KindExprStatement:
			// Python wraps assignments and bare calls in an
			// expression_statement; classify by what is inside.
			switch innerKind(stmt, w.lang) {
			case parser.KindCall:
				tokens = append(tokens, "call")
			case parser.KindAssign:
				tokens = append(tokens, "assign")
			default:
				tokens = append(tokens, "expr")
			}
		case parser.KindIf, parser.KindFor, parser.KindWhile, parser.KindReturn, parser.KindAssign, parser.KindAssert:
			tokens = append(tokens, kind.String())
		default:
			// Comments and docstrings carry no shape.
			if stmt.Type() == "comment" {
				continue
			}
			tokens = append(tokens, "stmt")
		}
	}
	return tokens
}

func innerKind(stmt *sitter.Node, lang parser.Language) parser.NodeKind {
	if stmt.NamedChildCount() == 0 {
		return parser.KindOther
	}
	return parser.KindOf(lang, stmt.NamedChild(0).Type())
}

func (w *walker) collectParams(node *sitter.Node, fn *FunctionSig) {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return
	}

	switch w.lang {
	case parser.LangGo:
		for i := range int(params.NamedChildCount()) {
			decl := params.NamedChild(i)
			if decl.Type() != "parameter_declaration" && decl.Type() != "variadic_parameter_declaration" {
				continue
			}
			names := 0
			for j := range int(decl.NamedChildCount()) {
				if decl.NamedChild(j).Type() == "identifier" {
					fn.ParamNames = append(fn.ParamNames, parser.GetNodeText(decl.NamedChild(j), w.source))
					names++
				}
			}
			if names == 0 {
				names = 1 // unnamed parameter still counts
			}
			fn.ParamCount += names
			fn.TypedParams += names // Go parameters always carry a type
		}
	case parser.LangPython:
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			var name string
			typed := false
			switch p.Type() {
			case "identifier":
				name = parser.GetNodeText(p, w.source)
			case "typed_parameter", "typed_default_parameter":
				typed = true
				if n := p.ChildByFieldName("name"); n != nil {
					name = parser.GetNodeText(n, w.source)
				} else if p.NamedChildCount() > 0 {
					name = parser.GetNodeText(p.NamedChild(0), w.source)
				}
			case "default_parameter":
				if n := p.ChildByFieldName("name"); n != nil {
					name = parser.GetNodeText(n, w.source)
				}
			default:
				continue // *args / **kwargs are not positional slots
			}
			if name == "" || name == "self" || name == "cls" {
				continue
			}
			fn.ParamNames = append(fn.ParamNames, name)
			fn.ParamCount++
			if typed {
				fn.TypedParams++
			}
		}
	}
}

func (w *walker) visitClass(node *sitter.Node, ctx walkCtx) {
	info := ClassInfo{Pos: position(node)}

	switch w.lang {
	case parser.LangPython:
		if n := node.ChildByFieldName("name"); n != nil {
			info.Name = parser.GetNodeText(n, w.source)
		}
		info.EstimatedLOC = int(node.EndPoint().Row - node.StartPoint().Row + 1)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := range int(body.NamedChildCount()) {
				if parser.KindOf(w.lang, body.NamedChild(i).Type()) == parser.KindFunction {
					info.MethodCount++
				}
			}
		}
	case parser.LangGo:
		// type_declaration wraps type_spec; only struct types join the
		// inventory. Method counts attach later from receiver matching.
		for i := range int(node.NamedChildCount()) {
			spec := node.NamedChild(i)
			if spec.Type() != "type_spec" {
				continue
			}
			typeNode := spec.ChildByFieldName("type")
			if typeNode == nil || typeNode.Type() != "struct_type" {
				continue
			}
			w.state.classes = append(w.state.classes, ClassInfo{
				Name:         parser.GetNodeText(spec.ChildByFieldName("name"), w.source),
				EstimatedLOC: int(spec.EndPoint().Row - spec.StartPoint().Row + 1),
				Pos:          position(spec),
			})
		}
		// Still descend: literals inside struct tags etc.
		inner := ctx
		for i := range int(node.ChildCount()) {
			w.walk(node.Child(i), inner)
		}
		return
	}

	if info.Name != "" {
		w.state.classes = append(w.state.classes, info)
	}

	inner := ctx
	inner.class = info.Name
	for i := range int(node.ChildCount()) {
		w.walk(node.Child(i), inner)
	}
}

func (w *walker) visitCall(node *sitter.Node, ctx walkCtx) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return
	}

	callee, receiver := calleeParts(fnNode, w.source)
	if callee == "" {
		return
	}

	site := CallSite{
		Callee:   callee,
		Receiver: receiver,
		Pos:      position(node),
	}
	if ctx.fn != nil {
		site.Function = ctx.fn.ID()
		if callee == ctx.fn.Name {
			ctx.fn.Recursive = true
		}
	}

	if _, ok := w.blocking[callee]; ok {
		w.state.blocking = append(w.state.blocking, site)
	}

	if w.lang == parser.LangPython && (callee == "eval" || callee == "exec") {
		w.state.evalCalls = append(w.state.evalCalls, site)
	}

	// Statement-position calls feed the execution-order heuristic and the
	// unchecked-return rule.
	if parent := node.Parent(); parent != nil && parser.KindOf(w.lang, parent.Type()) == parser.KindExprStatement {
		site.Guarded = previousSiblingIsGuard(parent, w.lang)
		if receiver != "" {
			w.state.receiver = append(w.state.receiver, site)
		}
		if w.lang == parser.LangPython {
			w.state.unchecked = append(w.state.unchecked, site)
		}
	}
}

// calleeParts splits a call target into its final name segment and receiver.
func calleeParts(fnNode *sitter.Node, source []byte) (callee, receiver string) {
	switch fnNode.Type() {
	case "identifier":
		return parser.GetNodeText(fnNode, source), ""
	case "attribute": // python: obj.method
		attr := fnNode.ChildByFieldName("attribute")
		obj := fnNode.ChildByFieldName("object")
		return parser.GetNodeText(attr, source), parser.GetNodeText(obj, source)
	case "selector_expression": // go: obj.Method
		field := fnNode.ChildByFieldName("field")
		operand := fnNode.ChildByFieldName("operand")
		return parser.GetNodeText(field, source), parser.GetNodeText(operand, source)
	default:
		return "", ""
	}
}

func previousSiblingIsGuard(stmt *sitter.Node, lang parser.Language) bool {
	prev := stmt.PrevNamedSibling()
	if prev == nil {
		return true // first statement in a block counts as guarded
	}
	kind := parser.KindOf(lang, prev.Type())
	return kind == parser.KindIf || kind == parser.KindAssert
}

func (w *walker) visitLiteral(node *sitter.Node, ctx walkCtx, numeric bool) {
	value := parser.GetNodeText(node, w.source)
	if !numeric {
		value = stripQuotes(value)
		if w.isDocstring(node) || insideImport(node, w.lang) {
			return
		}
	}

	site := LiteralSite{
		Value:       value,
		Numeric:     numeric,
		Pos:         position(node),
		ModuleScope: ctx.fn == nil,
	}
	if ctx.fn != nil {
		site.FunctionName = ctx.fn.Name
	}

	site.Enclosing = enclosingStatementKind(node, w.lang)
	site.InConditional = inConditionPosition(node, w.lang)
	site.InReturn = site.Enclosing == parser.KindReturn
	site.AssignedName = assignedName(node, w.lang, w.source)

	w.state.literals = append(w.state.literals, site)
}

// enclosingStatementKind walks up to the nearest statement-level ancestor.
func enclosingStatementKind(node *sitter.Node, lang parser.Language) parser.NodeKind {
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch kind := parser.KindOf(lang, p.Type()); kind {
		case parser.KindIf, parser.KindWhile, parser.KindFor, parser.KindReturn,
			parser.KindAssign, parser.KindAssert, parser.KindExprStatement:
			return kind
		case parser.KindFunction, parser.KindClass:
			return parser.KindOther
		}
	}
	return parser.KindOther
}

// inConditionPosition reports whether the node sits inside the condition
// expression of an if/while, as opposed to the body those statements guard.
func inConditionPosition(node *sitter.Node, lang parser.Language) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		kind := parser.KindOf(lang, p.Type())
		if kind == parser.KindIf || kind == parser.KindWhile {
			cond := p.ChildByFieldName("condition")
			return cond != nil && nodeContains(cond, node)
		}
		if kind == parser.KindFunction || kind == parser.KindClass {
			return false
		}
	}
	return false
}

func nodeContains(outer, inner *sitter.Node) bool {
	return inner.StartByte() >= outer.StartByte() && inner.EndByte() <= outer.EndByte()
}

// assignedName returns the LHS identifier when the literal is the direct
// right-hand side of an assignment, used by the value-coupling heuristic.
func assignedName(node *sitter.Node, lang parser.Language, source []byte) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	if lang == parser.LangPython && parent.Type() == "assignment" {
		if right := parent.ChildByFieldName("right"); right != nil && sameNode(right, node) {
			return parser.GetNodeText(parent.ChildByFieldName("left"), source)
		}
	}
	if lang == parser.LangGo && parent.Type() == "expression_list" {
		if gp := parent.Parent(); gp != nil && gp.Type() == "var_spec" {
			return parser.GetNodeText(gp.ChildByFieldName("name"), source)
		}
	}
	return ""
}

// isDocstring reports whether a Python string is the leading statement of a
// module, class or function body.
func (w *walker) isDocstring(node *sitter.Node) bool {
	if w.lang != parser.LangPython {
		return false
	}
	parent := node.Parent()
	if parent == nil || parent.Type() != "expression_statement" {
		return false
	}
	gp := parent.Parent()
	if gp == nil {
		return false
	}
	switch gp.Type() {
	case "module", "block":
		return gp.NamedChild(0) != nil && sameNode(gp.NamedChild(0), parent)
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// goReceiverType extracts the receiver's base type name, stripping pointers.
func goReceiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil || recv.NamedChildCount() == 0 {
		return ""
	}
	decl := recv.NamedChild(0)
	typeNode := decl.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	name := parser.GetNodeText(typeNode, source)
	name = strings.TrimPrefix(name, "*")
	if idx := strings.Index(name, "["); idx >= 0 {
		name = name[:idx] // drop type parameters
	}
	return name
}

func insideImport(node *sitter.Node, lang parser.Language) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if parser.KindOf(lang, p.Type()) == parser.KindImport {
			return true
		}
		if parser.KindOf(lang, p.Type()) == parser.KindFunction {
			return false
		}
	}
	return false
}

func (w *walker) visitGlobal(node *sitter.Node, ctx walkCtx) {
	switch w.lang {
	case parser.LangPython:
		// global_statement inside a function names the module globals it binds.
		for i := range int(node.NamedChildCount()) {
			child := node.NamedChild(i)
			if child.Type() == "identifier" {
				w.addGlobal(parser.GetNodeText(child, w.source), position(node))
			}
		}
	case parser.LangGo:
		// Only package-level var declarations are global state.
		if ctx.fn != nil {
			return
		}
		for i := range int(node.NamedChildCount()) {
			spec := node.NamedChild(i)
			if spec.Type() != "var_spec" {
				continue
			}
			if name := spec.ChildByFieldName("name"); name != nil {
				w.addGlobal(parser.GetNodeText(name, w.source), position(spec))
			}
		}
	}
}

func (w *walker) addGlobal(name string, pos Position) {
	if name == "" {
		return
	}
	if _, seen := w.state.globals[name]; !seen {
		w.state.globals[name] = pos
	}
}

func (w *walker) visitImport(node *sitter.Node) {
	switch w.lang {
	case parser.LangGo:
		path := stripQuotes(parser.GetNodeText(node.ChildByFieldName("path"), w.source))
		local := ""
		if alias := node.ChildByFieldName("name"); alias != nil {
			local = parser.GetNodeText(alias, w.source)
		}
		if local == "" || local == "_" || local == "." {
			if idx := strings.LastIndex(path, "/"); idx >= 0 {
				local = path[idx+1:]
			} else {
				local = path
			}
		}
		w.state.imports = append(w.state.imports, ImportRecord{Module: path, Local: local, Pos: position(node)})
	case parser.LangPython:
		w.visitPythonImport(node)
	}
}

func (w *walker) visitPythonImport(node *sitter.Node) {
	module := ""
	if node.Type() == "import_from_statement" {
		module = parser.GetNodeText(node.ChildByFieldName("module_name"), w.source)
	}

	for i := range int(node.NamedChildCount()) {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			name := parser.GetNodeText(child, w.source)
			if node.Type() == "import_from_statement" && name == module {
				continue // the module path itself, not an imported name
			}
			local := name
			if idx := strings.LastIndex(local, "."); idx >= 0 {
				local = local[idx+1:]
			}
			src := module
			if src == "" {
				src = name
			}
			w.state.imports = append(w.state.imports, ImportRecord{Module: src, Local: local, Pos: position(child)})
		case "aliased_import":
			name := parser.GetNodeText(child.ChildByFieldName("name"), w.source)
			alias := parser.GetNodeText(child.ChildByFieldName("alias"), w.source)
			src := module
			if src == "" {
				src = name
			}
			w.state.imports = append(w.state.imports, ImportRecord{Module: src, Local: alias, Pos: position(child)})
		}
	}
}

func (w *walker) visitLoop(node *sitter.Node, ctx walkCtx) {
	site := LoopSite{
		Kind:    parser.KindOf(w.lang, node.Type()),
		Pos:     position(node),
		Bounded: true,
	}
	if ctx.fn != nil {
		site.Function = ctx.fn.ID()
	}

	switch {
	case w.lang == parser.LangPython && node.Type() == "while_statement":
		cond := strings.TrimSpace(parser.GetNodeText(node.ChildByFieldName("condition"), w.source))
		if (cond == "True" || cond == "1") && !hasBreak(node) {
			site.Bounded = false
		}
	case w.lang == parser.LangPython && node.Type() == "for_statement":
		right := parser.GetNodeText(node.ChildByFieldName("right"), w.source)
		if strings.HasPrefix(right, "itertools.count") || strings.HasPrefix(right, "itertools.cycle") {
			site.Bounded = false
		}
	case w.lang == parser.LangGo:
		// `for {}` without a clause or condition is unbounded unless it breaks.
		if !goLoopHasBound(node) && !hasBreak(node) {
			site.Bounded = false
		}
	}

	w.state.loops = append(w.state.loops, site)
}

func goLoopHasBound(node *sitter.Node) bool {
	for i := range int(node.NamedChildCount()) {
		switch node.NamedChild(i).Type() {
		case "for_clause", "range_clause":
			return true
		case "block":
			continue
		default:
			// A bare condition expression still terminates the loop
			// when it turns false.
			return true
		}
	}
	return false
}

func hasBreak(node *sitter.Node) bool {
	found := false
	for i := range int(node.ChildCount()) {
		parser.WalkTyped(node.Child(i), nil, func(_ *sitter.Node, nodeType string, _ []byte) bool {
			if found {
				return false
			}
			if nodeType == "break_statement" {
				found = true
				return false
			}
			return true
		})
	}
	return found
}

// position extracts a source position, degrading to file-level precision for
// nodes without usable location data rather than failing the file.
func position(node *sitter.Node) Position {
	if node == nil {
		return Position{}
	}
	return Position{
		Line:   node.StartPoint().Row + 1,
		Column: node.StartPoint().Column,
		Known:  true,
	}
}

func stripQuotes(s string) string {
	s = strings.TrimLeft(s, "rbfuRBFU")
	for _, q := range []string{`"""`, `'''`, `"`, `'`, "`"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
