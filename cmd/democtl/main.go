// Command democtl inspects and invokes the demo actions module, either
// in-process or as a WASM plugin hosted by wazero.
package main

import (
	"os"
)

var version = "dev" // overridden by ldflags

func main() {
	if err := newRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
