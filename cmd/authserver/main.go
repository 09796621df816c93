package main

import "github.com/FamilySync/Services-Authentication/cmd/authserver/cmd"

func main() {
	cmd.Execute()
}
