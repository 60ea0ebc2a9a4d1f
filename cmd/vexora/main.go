// Command vexora scores URLs, messages, images and videos for scam and
// deepfake risk, and serves the same analyses over HTTP.
// Usage: vexora [command] --help
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/raysh454/vexora/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
