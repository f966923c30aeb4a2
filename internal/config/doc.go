// Package config resolves codeqlreport settings from the environment, an
// optional dotenv file, and local or global YAML files with precedence rules.
// Required keys are validated at first use so each command only fails on the
// keys it actually needs.
package config
