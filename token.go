// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jspan

// Kind is the type of a token reported by a Scanner, and doubles as the
// frame label on the container stacks of both the Scanner and the Emitter.
type Kind byte

// Constants defining the valid Kind values.
const (
	None          Kind = iota // no token (initial state, root frame)
	BeginArray                // open bracket "["
	EndArray                  // the whole array, "[" through "]"
	BeginObject               // open brace "{"
	EndObject                 // the whole object, "{" through "}"
	BeginProperty             // a member name through its colon
	EndProperty               // the whole member, name through value
	Null                      // constant: null
	Boolean                   // constant: true or false
	Integer                   // number with no fraction or exponent
	Float                     // number with fraction and/or exponent
	String                    // quoted string
	Complete                  // the root value is finished; later input is not read
	Invalid                   // the payload is malformed at this point
)

var kindStr = [...]string{
	None:          "none",
	BeginArray:    "begin array",
	EndArray:      "end array",
	BeginObject:   "begin object",
	EndObject:     "end object",
	BeginProperty: "begin property",
	EndProperty:   "end property",
	Null:          "null",
	Boolean:       "boolean",
	Integer:       "integer",
	Float:         "float",
	String:        "string",
	Complete:      "complete",
	Invalid:       "invalid",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return kindStr[Invalid]
	}
	return kindStr[v]
}

// IsContainer reports whether k begins or ends an array, object, or property.
func (k Kind) IsContainer() bool { return k >= BeginArray && k <= EndProperty }

// IsOpenContainer reports whether k is BeginArray, BeginObject, or BeginProperty.
func (k Kind) IsOpenContainer() bool {
	return k == BeginArray || k == BeginObject || k == BeginProperty
}

// IsCloseContainer reports whether k is EndArray, EndObject, or EndProperty.
func (k Kind) IsCloseContainer() bool {
	return k == EndArray || k == EndObject || k == EndProperty
}

// IsValue reports whether k is a primitive value kind.
func (k Kind) IsValue() bool { return k >= Null && k <= String }

// IsNumber reports whether k is Integer or Float.
func (k Kind) IsNumber() bool { return k == Integer || k == Float }

// IsTerminal reports whether k marks the end of the payload (Complete or
// Invalid). Once a scanner reaches a terminal kind, it stays there.
func (k Kind) IsTerminal() bool { return k == Complete || k == Invalid }
