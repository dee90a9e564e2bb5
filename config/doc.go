// Package config loads the engine's YAML configuration.
//
// Load reads a file, expands ${VAR} references strictly (a missing variable
// is an error, $$ is a literal dollar), decodes it over the defaults and
// validates the result. Secret-bearing values may instead be written as
// secretref:<provider>:<ref> and are resolved on use by a SecretResolver.
// Watch reloads the file on change so alias tables and scoring policy can be
// updated without a restart.
package config
