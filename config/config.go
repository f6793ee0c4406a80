package config

import "github.com/ethereum/go-ethereum/common"

type Config struct {
	ConsoleConf     ConsoleConf    `yaml:"ConsoleConf"`
	Backend         Backend        `yaml:"Backend"`
	Explorer        Explorer       `yaml:"Explorer"`
	RegistryAddress common.Address `yaml:"RegistryAddress"`
	SessionDir      string         `yaml:"SessionDir"`
}

type ConsoleConf struct {
	Port string `yaml:"Port" default:"8081"`
	Host string `yaml:"Host" default:"0.0.0.0"`
}

type Backend struct {
	URL string `yaml:"URL"`
}

type Explorer struct {
	// TxURL is a template with a single %s placeholder for the transaction hash.
	TxURL string `yaml:"TxURL"`
	// AddressURL is a template with a single %s placeholder for a contract address.
	AddressURL string `yaml:"AddressURL"`
}
