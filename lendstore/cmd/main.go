// Command lendstore runs the lending library from the command line or as a line-oriented
// shell.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(newApp(os.Stdin, os.Stdout, os.Stderr).Execute(context.Background(), os.Args[1:]))
}
