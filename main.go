package main

import (
	_ "github.com/joho/godotenv/autoload"

	"leadlist-tui/internal/cmd"
)

func main() {
	cmd.Execute()
}
