// Package docs provides generated OpenAPI documentation.
//
// Invox API
//
//	@title			Invox API
//	@version		1.0
//	@description	Invoice line-item extraction API for uploading supplier PDFs and pricing imported rows.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/invoxhq/invox
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/invox/serve.go -o ./swagger --parseDependency --parseInternal
