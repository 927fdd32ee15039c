package function

import "fmt"

// DuplicateImplementationError is returned when an implementation name is
// registered twice for the same function.
type DuplicateImplementationError struct {
	Function string
	Name     string
}

func (e *DuplicateImplementationError) Error() string {
	return fmt.Sprintf("function %s: implementation %q is already registered", e.Function, e.Name)
}

// UnknownImplementationError is returned by Registry.Invoke when nothing is
// registered under the requested name.
type UnknownImplementationError struct {
	Function string
	Name     string
}

func (e *UnknownImplementationError) Error() string {
	return fmt.Sprintf("function %s: no implementation named %q", e.Function, e.Name)
}

// InputTypeError is returned when a type-erased call passes an input of the
// wrong Go type.
type InputTypeError struct {
	Function string
	Name     string
	Want     string
	Got      string
}

func (e *InputTypeError) Error() string {
	return fmt.Sprintf("function %s/%s: input must be %s, got %s", e.Function, e.Name, e.Want, e.Got)
}
