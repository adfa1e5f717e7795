package parser

// CompilationUnit is the root of a parsed source file.
type CompilationUnit struct {
	Path      string
	Config    *ConfigBlock
	Variables *OrderedMap[*Variable]
	TestCases []*TestCase
}

// Lookup returns the textual value bound to name.
func (u *CompilationUnit) Lookup(name string) (string, bool) {
	if u == nil || u.Variables == nil {
		return "", false
	}
	v, ok := u.Variables.Get(name)
	if !ok {
		return "", false
	}
	return v.Value, true
}

// BaseURL returns the configured base URL, if any.
func (u *CompilationUnit) BaseURL() (string, bool) {
	if u == nil || u.Config == nil || u.Config.BaseURL == nil {
		return "", false
	}
	return *u.Config.BaseURL, true
}

type ConfigBlock struct {
	BaseURL        *string
	DefaultHeaders *OrderedMap[string]
	Line           int
}

type Variable struct {
	Name     string
	Value    string
	IsString bool
	Line     int
}

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// AllowsBody reports whether requests with this method carry a payload.
func (m Method) AllowsBody() bool {
	return m == MethodPost || m == MethodPut
}

type Request struct {
	Method  Method
	Path    string
	Body    *string
	Headers *OrderedMap[string]
	Line    int
}

type AssertionKind int

const (
	AssertStatusEquals AssertionKind = iota
	AssertHeaderEquals
	AssertHeaderContains
	AssertBodyContains
)

func (k AssertionKind) String() string {
	switch k {
	case AssertStatusEquals:
		return "status"
	case AssertHeaderEquals:
		return "header_equals"
	case AssertHeaderContains:
		return "header_contains"
	case AssertBodyContains:
		return "body_contains"
	default:
		return "unknown"
	}
}

// Assertion is one expect statement. Status is set for AssertStatusEquals,
// Name for the header kinds, Value for everything except status.
type Assertion struct {
	Kind   AssertionKind
	Status int
	Name   string
	Value  string
	Line   int
}

type TestCase struct {
	Name       string
	Requests   []*Request
	Assertions []*Assertion
	Line       int
}
