// Package internal holds private helpers shared by goSession packages. Nothing
// here is part of the public API.
package internal
