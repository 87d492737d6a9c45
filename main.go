package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/fakeyudi/timeline/cmd"
)

func main() {
	cmd.Execute()
}
