package main

import (
	"os"

	"github.com/hephbuild/rwsched/internal/cmd"
)

func main() {
	code := cmd.Execute()

	os.Exit(code)
}
