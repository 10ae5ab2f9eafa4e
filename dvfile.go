package main

import "github.com/NivineZakhari/PowerApps-Samples/cmd"

func main() {
	cmd.Execute()
}
