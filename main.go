package main

import "github.com/frahmantamala/financial-analyst/cmd"

func main() {
	cmd.Execute()
}
