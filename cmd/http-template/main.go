// Command http-template serves the HTTP component template as a plugin
// process. It speaks the scaff plugin protocol on stdin and stdout.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ormasoftchile/scaff/pkg/rpc"
	"github.com/ormasoftchile/scaff/pkg/templates/httpcomponent"
)

func main() {
	if err := rpc.Serve(context.Background(), httpcomponent.Template{}); err != nil {
		fmt.Fprintf(os.Stderr, "http-template: %v\n", err)
		os.Exit(1)
	}
}
