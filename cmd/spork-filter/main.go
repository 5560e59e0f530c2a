// Command spork-filter is a sample filter plugin: it joins the
// dash-separated parts of its input with "-SPORK-".
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ormasoftchile/scaff/pkg/rpc"
)

func spork(text string) (string, error) {
	return strings.Join(strings.Split(text, "-"), "-SPORK-"), nil
}

func main() {
	if err := rpc.ServeFilter(context.Background(), "spork", spork); err != nil {
		fmt.Fprintf(os.Stderr, "spork-filter: %v\n", err)
		os.Exit(1)
	}
}
