// Command tabclean cleans and partitions CSV and Excel tables, either from
// the command line or through the HTTP server started by "tabclean serve".
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
