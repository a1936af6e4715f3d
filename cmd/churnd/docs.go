package main

// General API documentation for swaggo. Regenerate with swag init.
//
// @title           churnd API
// @version         1.0
// @description     HTTP API for customer churn probability and next-purchase predictions.
//
// @contact.name   churnd maintainers
// @contact.url    https://github.com/your-org/churnd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
