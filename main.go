package main

import "okrku_backend/internals/commands"

func main() {
	commands.Execute()
}
