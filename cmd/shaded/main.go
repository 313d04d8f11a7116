package main

import "github.com/Ogstevyn/shade/internal/cli"

func main() {
	cli.Execute()
}
