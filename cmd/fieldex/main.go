package main

import "github.com/MeKo-Tech/fieldex/cmd/fieldex/cmd"

func main() {
	cmd.Execute()
}
