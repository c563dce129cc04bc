package main

import "github.com/nagorik/grievance-server/cmd"

func main() {
	cmd.Execute()
}
