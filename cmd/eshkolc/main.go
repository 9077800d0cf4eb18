// Command eshkolc is the eshkol compiler's command-line entry point.
package main

import (
	"os"

	"github.com/maloquacious/semver"
	"github.com/mna/mainer"

	"github.com/openSVM/eshkol/internal/maincmd"
)

// version is bumped by hand for now; Build carries the VCS commit so
// `eshkolc -v` on a dirty checkout still shows what it was built from.
var version = semver.Version{
	Major: 0,
	Minor: 1,
	Patch: 0,
	Build: semver.Commit(),
}

func main() {
	c := maincmd.Cmd{BuildVersion: version}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
