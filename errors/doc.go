/*
Package errors implements the coded errors used across this module.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. It is best to define a new
error here if you feel it is going to be somewhat package-agnostic. Extension
packages register their own roots with a code range of their own, see
x/htlc/errors.go for an example.

If you want to register a custom error - use Register(code, description).
Code allows to distinguish types of errors on the client side and act
accordingly.

There is also support for stacktraces. Please ensure you create the custom
error using Wrap/Wrapf at the point of creation to ensure we attach a
stacktrace. If you wrap multiple times, we only record the first wrap with
the stacktrace.

Once you have an error, you can use fmt.Printf/Sprintf to get more context
for the error

	%s is just the error message
	%+v is the full stack trace

To test the category of an error, use the root error Is method:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
