// Package config loads and validates the application configuration.
//
// Values come from defaults, an optional config.yaml, and environment
// variables prefixed with TEAMAI_ (for example TEAMAI_DATABASE_URL or
// TEAMAI_LLM_API_KEY). The resulting Config is validated with struct tags and
// then handed to the components that need it; nothing here is global.
package config
