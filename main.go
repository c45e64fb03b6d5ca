package main

import (
	"github.com/rakibhoossain/whatsapp-bulk-sender/cmd"
)

func main() {
	cmd.Execute()
}
