package main

import "pooled-multisender/internal/cli"

func main() {
	cli.Execute()
}
