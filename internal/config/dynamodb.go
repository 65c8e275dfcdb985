package config

// DynamoDBConfig holds configuration for DynamoDB
type DynamoDBConfig struct {
	InUse            bool   `mapstructure:"in_use" default:"false"`
	Region           string `mapstructure:"region"`
	Endpoint         string `mapstructure:"endpoint"`
	CounterTableName string `mapstructure:"counter_table_name" default:"agencyops_counters"`
}
