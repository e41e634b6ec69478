// Package services holds the process-wide service instances the HTTP handlers use.
package services

import (
	"educa/services/catalog"
	"educa/services/embed"
	"educa/services/mailer"
	"educa/services/storage"
)

// Registry groups the shared services. Embed may be nil, in which case videos are served
// without embed HTML.
type Registry struct {
	Store   storage.Store
	Catalog *catalog.Catalog
	Embed   *embed.Resolver
	Mailer  mailer.Mailer
}

// App is set up once in main before routes are registered.
var App Registry
