package main

import "github.com/singularity-sky/singularity/internal/cli"

func main() {
	cli.Execute()
}
