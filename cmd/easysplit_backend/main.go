package main

import "github.com/SscSPs/easysplit_backend/cmd/easysplit_backend/commands"

//go:generate swag init -g main.go -d .,../../internal/handlers,../../internal/dto -o ../docs

// @title EasySplit Backend API
// @version 1.0
// @description Group expense splitting: groups, members, records and reconciled balances.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	commands.Execute()
}
