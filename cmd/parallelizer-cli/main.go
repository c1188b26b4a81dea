package main

import "github.com/distquery/parallelizer/cmd/parallelizer-cli/cmd"

func main() {
	cmd.Execute()
}
