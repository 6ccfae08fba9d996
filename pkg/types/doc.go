// Package types defines the Apartment and Contract entity types, the
// collaborator interfaces the console core depends on (Session and the
// resource transports), and the error taxonomy shared by every layer.
package types
