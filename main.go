package main

import "github.com/KaramelBytes/erosionwatch/cmd"

func main() {
	cmd.Execute()
}
