package main

import (
	_ "makazi/docs"

	"makazi/cli"
)

// @title           Makazi API
// @version         1.0
// @description     Property listings and tour requests between tenants and landlords.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Execute()
}
