package config

import (
	"os"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool
	// InvoiceBasePath is where the renderer collaborator stores
	// generated invoice documents.
	InvoiceBasePath string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		base := os.Getenv("INVOICE_PATH")
		if base == "" {
			base = "storage/invoices"
		}
		AppConfig = &Config{
			AppName:         os.Getenv("APP_NAME"),
			Port:            os.Getenv("PORT"),
			Env:             os.Getenv("APP_ENV"),
			Debug:           os.Getenv("DEBUG") == "true",
			InvoiceBasePath: base,
		}
	})
}
