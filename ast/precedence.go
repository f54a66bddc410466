package ast

// Precedence levels for the Pratt parser, ordered low-to-high exactly as
// spec.md §4.4 enumerates: "lowest < assignment < comma < key_value <
// logical_or < logical_and < bitwise_or < bitwise_xor < bitwise_and <
// equality < relational < shift_or_rotate < sum < product < exponent <
// member_access < pointer_deref < subscript < prefix < postfix < cast <
// type < variable < call".
type Precedence int

const (
	PrecLowest Precedence = iota
	PrecAssignment
	PrecComma
	PrecKeyValue
	PrecLogicalOr
	PrecLogicalAnd
	PrecBitwiseOr
	PrecBitwiseXor
	PrecBitwiseAnd
	PrecEquality
	PrecRelational
	PrecShiftOrRotate
	PrecSum
	PrecProduct
	PrecExponent
	PrecMemberAccess
	PrecPointerDeref
	PrecSubscript
	PrecPrefix
	PrecPostfix
	PrecCast
	PrecType
	PrecVariable
	PrecCall
)

// infixPrecedence maps a binary/postfix operator's punctuator or keyword
// spelling to its left-binding precedence. Entries absent from this table
// are not infix operators.
var infixPrecedence = map[string]Precedence{
	"=": PrecAssignment, ":=": PrecAssignment,
	"+=": PrecAssignment, "-=": PrecAssignment, "*=": PrecAssignment,
	"/=": PrecAssignment, "%=": PrecAssignment,
	"+:=": PrecAssignment, "-:=": PrecAssignment, "*:=": PrecAssignment,
	"/:=": PrecAssignment, "%:=": PrecAssignment, "|:=": PrecAssignment,
	"&:=": PrecAssignment, "~:=": PrecAssignment,

	",": PrecComma,
	":": PrecKeyValue,

	"||": PrecLogicalOr,
	"&&": PrecLogicalAnd,

	"|": PrecBitwiseOr,
	"^": PrecBitwiseXor,
	"&": PrecBitwiseAnd,

	"==": PrecEquality, "!=": PrecEquality,

	"<": PrecRelational, ">": PrecRelational,
	"<=": PrecRelational, ">=": PrecRelational,

	"<<": PrecShiftOrRotate, ">>": PrecShiftOrRotate,

	"+": PrecSum, "-": PrecSum,

	"*": PrecProduct, "/": PrecProduct, "%": PrecProduct,

	"->": PrecMemberAccess, ".": PrecMemberAccess,

	"[": PrecSubscript,
	"(": PrecCall,
	"..": PrecSubscript,
}

// rightAssociative marks operators that bind right-to-left: only
// assignment, per spec.md's "a = b = c" chaining semantics.
var rightAssociative = map[string]bool{
	"=": true, ":=": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"+:=": true, "-:=": true, "*:=": true, "/:=": true, "%:=": true,
	"|:=": true, "&:=": true, "~:=": true,
}

// precedenceOf returns the infix binding power for a punctuator spelling,
// and whether it is a recognized infix/postfix operator at all.
func precedenceOf(spelling string) (Precedence, bool) {
	p, ok := infixPrecedence[spelling]
	return p, ok
}
