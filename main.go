package main

import "droidprep/internal/cli"

func main() {
	cli.Execute()
}
