package main

import "github.com/dyike/CortexHedge/internal/cli"

func main() {
	cli.Run()
}
