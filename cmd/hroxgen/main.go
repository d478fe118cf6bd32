package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	// Interrupted runs already said what they had to say.
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "hroxgen: %v\n", err)
	}
	os.Exit(1)
}
