package parser

// NodeKind is the language-independent classification of a syntax node.
// The collector dispatches on NodeKind rather than raw tree-sitter type
// strings so that each language front end contributes only a mapping table.
type NodeKind int

const (
	KindOther NodeKind = iota
	KindFunction
	KindClass
	KindCall
	KindNumberLiteral
	KindStringLiteral
	KindGlobalDecl
	KindImport
	KindIf
	KindFor
	KindWhile
	KindReturn
	KindAssign
	KindAssert
	KindExprStatement
)

// String returns the token emitted for a kind in normalized body signatures.
func (k NodeKind) String() string {
	switch k {
	case KindFunction:
		return "func"
	case KindClass:
		return "class"
	case KindCall:
		return "call"
	case KindNumberLiteral:
		return "number"
	case KindStringLiteral:
		return "string"
	case KindGlobalDecl:
		return "global"
	case KindImport:
		return "import"
	case KindIf:
		return "if"
	case KindFor:
		return "for"
	case KindWhile:
		return "while"
	case KindReturn:
		return "return"
	case KindAssign:
		return "assign"
	case KindAssert:
		return "assert"
	case KindExprStatement:
		return "expr"
	default:
		return "other"
	}
}

// goKinds maps tree-sitter Go node types to kinds.
var goKinds = map[string]NodeKind{
	"function_declaration":        KindFunction,
	"method_declaration":          KindFunction,
	"func_literal":                KindFunction,
	"type_declaration":            KindClass,
	"call_expression":             KindCall,
	"int_literal":                 KindNumberLiteral,
	"float_literal":               KindNumberLiteral,
	"interpreted_string_literal":  KindStringLiteral,
	"raw_string_literal":          KindStringLiteral,
	"var_declaration":             KindGlobalDecl,
	"import_spec":                 KindImport,
	"if_statement":                KindIf,
	"for_statement":               KindFor,
	"return_statement":            KindReturn,
	"assignment_statement":        KindAssign,
	"short_var_declaration":       KindAssign,
	"expression_statement":        KindExprStatement,
	"expression_switch_statement": KindIf,
}

// pythonKinds maps tree-sitter Python node types to kinds.
var pythonKinds = map[string]NodeKind{
	"function_definition":    KindFunction,
	"class_definition":       KindClass,
	"call":                   KindCall,
	"integer":                KindNumberLiteral,
	"float":                  KindNumberLiteral,
	"string":                 KindStringLiteral,
	"global_statement":       KindGlobalDecl,
	"import_statement":       KindImport,
	"import_from_statement":  KindImport,
	"if_statement":           KindIf,
	"for_statement":          KindFor,
	"while_statement":        KindWhile,
	"return_statement":       KindReturn,
	"assignment":             KindAssign,
	"augmented_assignment":   KindAssign,
	"assert_statement":       KindAssert,
	"expression_statement":   KindExprStatement,
	"conditional_expression": KindIf,
}

// KindOf classifies a raw tree-sitter node type for a language.
func KindOf(lang Language, nodeType string) NodeKind {
	switch lang {
	case LangGo:
		return goKinds[nodeType]
	case LangPython:
		return pythonKinds[nodeType]
	default:
		return KindOther
	}
}

// HasTypeAnnotations reports whether the front end carries parameter type
// annotation syntax worth checking. Go parameter types are mandatory, so the
// annotation check only produces signal for Python.
func HasTypeAnnotations(lang Language) bool {
	return lang == LangPython
}

// SupportsEval reports whether the language exposes dynamic code execution
// constructs (eval/exec) detectable from call names.
func SupportsEval(lang Language) bool {
	return lang == LangPython
}
