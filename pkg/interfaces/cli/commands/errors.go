package commands

import (
	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

func unknownOracle(name string) error {
	return entities.NewConfigurationError("oracle", "unknown oracle %q, expected haversine or road", name)
}

func unknownFormat(format string) error {
	return entities.NewConfigurationError("format", "unsupported output format %q, expected text, json or csv", format)
}

func validFormat(format string) error {
	switch format {
	case "", "text", "json", "csv":
		return nil
	default:
		return unknownFormat(format)
	}
}
