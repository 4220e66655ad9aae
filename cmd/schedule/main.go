package main

import "github.com/oshokin/emf-schedule/cmd/schedule/cmd"

func main() {
	cmd.Execute()
}
