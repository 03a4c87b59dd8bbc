package main

import "github.com/frahmantamala/plant-dashboard/cmd"

func main() {
	cmd.Execute()
}
