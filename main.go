package main

import "github.com/frahmantamala/crm-auth/cmd"

func main() {
	cmd.Execute()
}
