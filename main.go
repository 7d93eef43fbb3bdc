package main

import "github.com/ValentinKolb/devlock/cmd"

func main() {
	cmd.Execute()
}
