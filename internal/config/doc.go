// Package config loads prompt function definitions from YAML files, along
// with the .env file and the input records the CLI renders them against.
package config
