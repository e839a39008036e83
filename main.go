package main

import "github.com/palmvoyage/tripfund/cmd"

func main() {
	cmd.Execute()
}
