package main

import "github/chapool/go-batchpay/cmd"

func main() {
	cmd.Execute()
}
