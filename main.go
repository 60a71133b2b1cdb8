package main

import "claims-tracker/cmd"

func main() {
	cmd.Execute()
}
