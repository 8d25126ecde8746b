package main

import (
	_ "apiprovider.GO/custom"

	"apiprovider.GO/cmd"
	"apiprovider.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
