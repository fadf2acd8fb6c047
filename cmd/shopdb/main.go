package main

import "github.com/deppfellow/go-shopdb/cmd/shopdb/commands"

func main() {
	commands.Execute()
}
