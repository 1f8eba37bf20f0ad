package main

import "github.com/maho-na510/aquarium-visit-log/cmd/cli/command"

func main() {
	command.Execute()
}
