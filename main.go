package main

import "github.com/codyswanson/vcselect/cmd"

func main() {
	cmd.Execute()
}
