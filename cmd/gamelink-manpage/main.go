// Command gamelink-manpage writes the gamelink man pages. With a directory
// argument one page per command is written there; otherwise the root page
// goes to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/gamelink/cmd/gamelink"
	"github.com/arthur-debert/gamelink/internal/version"
)

func main() {
	rootCmd := gamelink.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "GAMELINK",
		Section: "1",
		Source:  "gamelink " + version.Version,
		Manual:  "gamelink manual",
	}

	var err error
	if len(os.Args) > 1 {
		dir := os.Args[1]
		if err = os.MkdirAll(dir, 0755); err == nil {
			err = doc.GenManTree(rootCmd, header, dir)
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
