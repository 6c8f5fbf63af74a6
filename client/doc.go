// Package client provides a unified entry point for constructing chat
// providers from configuration. Provider SDK clients are lazily
// initialized the first time they are requested.
package client
