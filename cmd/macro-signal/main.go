package main

import "macro-signal/internal/cli"

func main() {
	cli.Execute()
}
