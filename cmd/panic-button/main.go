package main

import "github.com/oshokin/panic-button/cmd/panic-button/cmd"

func main() {
	cmd.Execute()
}
