// Command dslf serves HTTP redirects from a CSV file.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	os.Exit(a.execute(os.Args[1:]))
}
