package main

import "gamewrap/cmd/gamewrap/commands"

func main() {
	commands.Execute()
}
