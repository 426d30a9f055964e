package main

import "github.com/pandodao/zk-wallet/cmd/zkwallet/cmd"

func main() {
	cmd.Execute()
}
