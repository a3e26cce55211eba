// Command httpkit sends HTTP requests through the httpkit client and shows
// the stream transport options a request would be sent with.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "httpkit:", err)
		os.Exit(1)
	}
}
