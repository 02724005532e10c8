package main

import "github.com/naka-gawa/gh-status/cmd"

func main() {
	cmd.Execute()
}
