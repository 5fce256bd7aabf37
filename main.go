package main

import "github.com/jargo-build/jargo/cmd"

func main() {
	cmd.Execute()
}
