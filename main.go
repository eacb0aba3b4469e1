package main

import "github.com/sadopc/smartbill/cmd"

func main() {
	cmd.Execute()
}
