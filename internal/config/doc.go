// Package config handles YAML configuration loading with environment variable
// substitution and overrides.
//
// Configuration files support ${VAR} syntax for interpolation. After the file
// is parsed, well-known environment variables such as REDIS_URL and
// DEDUP_TTL override individual fields, so the service can also run with no
// file at all.
package config
