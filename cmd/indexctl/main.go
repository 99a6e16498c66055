// Command indexctl is a thin manual-testing shell over the engine package.
// The primary consumer of internal/engine is an editor host process; this
// CLI exists for local debugging and scripted smoke tests, not as a
// production daemon.
package main

import "github.com/managed-index/indexctl/internal/cli"

func main() {
	cli.Execute()
}
