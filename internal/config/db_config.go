package config

import (
	"fmt"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
)

type DBConfig struct {
	Type             DBType `mapstructure:"type"`
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.Type != DBTypeSQLite && config.Type != DBTypePostgres {
		return fmt.Errorf("unsupported db type %q", config.Type)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return bindAll(
		[2]string{"db.type", "DB_TYPE"},
		[2]string{"db.connection_string", "DB_CONNECTION_STRING"},
	)
}
