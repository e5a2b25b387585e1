package main

import "ability-lst/internal/cli"

func main() {
	cli.Execute()
}
