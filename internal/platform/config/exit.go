package config

import (
	"fmt"
	"io"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// Command entry points call it for errors they cannot recover from.
func Exitf(format string, args ...any) {
	exitf(os.Stderr, os.Exit, 1, format, args...)
}

// ExitCodef is Exitf with an explicit exit status. Codes below 1 become 1.
func ExitCodef(code int, format string, args ...any) {
	exitf(os.Stderr, os.Exit, code, format, args...)
}

func exitf(w io.Writer, exit func(int), code int, format string, args ...any) {
	if code < 1 {
		code = 1
	}
	fmt.Fprintf(w, format+"\n", args...)
	exit(code)
}
