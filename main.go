package main

import "github.com/kb-dk/github-cloner/cmd"

func main() {
	cmd.Execute()
}
