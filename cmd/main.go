// cmd/main.go
package main

import (
	"modesta-resort-api/app"
)

// @title           Modesta Resort API
// @version         1.0
// @description     Guest authentication and room catalog API for Modesta Resort.

// @contact.name   API Support
// @contact.email  support@modestaresort.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
