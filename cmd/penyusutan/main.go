// Command penyusutan cleans and analyzes a fixed-asset depreciation register
// without starting the web server.
package main

import (
	"context"
	"flag"
	"os"
	"path"
)

func main() {
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	commander := newCommander(c, flag.CommandLine, path.Base(os.Args[0]))

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
