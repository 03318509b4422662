package main

import "martianoff/kitten/cmd/kitten/commands"

func main() {
	commands.Execute()
}
