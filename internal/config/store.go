// Copyright (c) 2025 Afonso Barracha
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package config

const (
	StoreDriverPostgres string = "postgres"
	StoreDriverBolt     string = "bolt"
	StoreDriverDynamoDB string = "dynamodb"
)

type DynamoDBConfig struct {
	table           string
	region          string
	endpoint        string
	accessKeyID     string
	secretAccessKey string
}

func NewDynamoDBConfig(table, region, endpoint, accessKeyID, secretAccessKey string) DynamoDBConfig {
	return DynamoDBConfig{
		table:           table,
		region:          region,
		endpoint:        endpoint,
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
	}
}

func (d *DynamoDBConfig) Table() string {
	return d.table
}

func (d *DynamoDBConfig) Region() string {
	return d.region
}

func (d *DynamoDBConfig) Endpoint() string {
	return d.endpoint
}

func (d *DynamoDBConfig) AccessKeyID() string {
	return d.accessKeyID
}

func (d *DynamoDBConfig) SecretAccessKey() string {
	return d.secretAccessKey
}

type StoreConfig struct {
	driver      string
	databaseURL string
	boltPath    string
	dynamoDB    DynamoDBConfig
}

func NewStoreConfig(driver, databaseURL, boltPath string, dynamoDB DynamoDBConfig) StoreConfig {
	return StoreConfig{
		driver:      driver,
		databaseURL: databaseURL,
		boltPath:    boltPath,
		dynamoDB:    dynamoDB,
	}
}

func (s *StoreConfig) Driver() string {
	return s.driver
}

func (s *StoreConfig) DatabaseURL() string {
	return s.databaseURL
}

func (s *StoreConfig) BoltPath() string {
	return s.boltPath
}

func (s *StoreConfig) DynamoDB() DynamoDBConfig {
	return s.dynamoDB
}
