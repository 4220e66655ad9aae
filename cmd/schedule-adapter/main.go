package main

import "github.com/oshokin/emf-schedule/cmd/schedule-adapter/cmd"

func main() {
	cmd.Execute()
}
