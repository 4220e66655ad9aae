package main

import "github.com/oshokin/emf-schedule/cmd/schedule-announcer/cmd"

func main() {
	cmd.Execute()
}
