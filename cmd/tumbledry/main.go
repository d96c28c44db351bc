package main

import (
	"tumbledry-backend/cmd/tumbledry/commands"
)

func main() {
	commands.Execute()
}
