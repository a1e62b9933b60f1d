package main

import "github.com/nhle/careboard/internal/cli"

func main() {
	cli.Execute()
}
