package spec

// Capabilities describes what programs an implementation can be held to.
// One value per implementation, constant for its lifetime.
type Capabilities struct {
	Libraries        bool
	Typechecked      bool
	GarbageCollected bool
	Safe             bool
	Name             string
}

// Predicate is a boolean expression over Capabilities.
type Predicate interface {
	Eval(caps Capabilities) bool
	String() string
	isPredicate()
}

// Atom is a capability test without arguments.
type Atom uint8

const (
	// Library holds for implementations that link the C0 libraries.
	Library Atom = iota + 1
	// Typechecked holds for implementations that reject ill-typed programs.
	Typechecked
	// GarbageCollected holds for implementations that reclaim memory.
	GarbageCollected
	// Safe holds for implementations that check memory accesses.
	Safe
	// False never holds; used to disable a clause.
	False
)

// Eval implements Predicate.
func (a Atom) Eval(caps Capabilities) bool {
	switch a {
	case Library:
		return caps.Libraries
	case Typechecked:
		return caps.Typechecked
	case GarbageCollected:
		return caps.GarbageCollected
	case Safe:
		return caps.Safe
	default:
		return false
	}
}

func (a Atom) String() string {
	switch a {
	case Library:
		return "lib"
	case Typechecked:
		return "typecheck"
	case GarbageCollected:
		return "gc"
	case Safe:
		return "safe"
	default:
		return "false"
	}
}

func (Atom) isPredicate() {}

// Name holds for the implementation with exactly this name.
type Name string

// Eval implements Predicate.
func (n Name) Eval(caps Capabilities) bool { return caps.Name == string(n) }

func (n Name) String() string { return string(n) }

func (Name) isPredicate() {}

// Not negates a predicate.
type Not struct {
	P Predicate
}

// Eval implements Predicate.
func (n Not) Eval(caps Capabilities) bool { return !n.P.Eval(caps) }

func (n Not) String() string { return "!" + n.P.String() }

func (Not) isPredicate() {}

// And holds when both sides hold. Written `l, r`.
type And struct {
	L, R Predicate
}

// Eval implements Predicate.
func (a And) Eval(caps Capabilities) bool { return a.L.Eval(caps) && a.R.Eval(caps) }

func (a And) String() string { return a.L.String() + ", " + a.R.String() }

func (And) isPredicate() {}

// Or holds when either side holds.
type Or struct {
	L, R Predicate
}

// Eval implements Predicate.
func (o Or) Eval(caps Capabilities) bool { return o.L.Eval(caps) || o.R.Eval(caps) }

func (o Or) String() string { return o.L.String() + " or " + o.R.String() }

func (Or) isPredicate() {}
