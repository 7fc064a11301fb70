package main

import "github.com/brettadin/Anything-SpecApp/cmd"

func main() {
	cmd.Execute()
}
