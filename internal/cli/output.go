package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dcu/moreremesas"
)

// printJSON writes v as indented JSON. Documents keep the provider's field order.
func printJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	out.WriteByte('\n')

	_, err = out.WriteTo(w)
	return err
}

// loadOrder reads an order description from a YAML file. Field names are the
// provider's, e.g.:
//
//	OrderDate: 2024-05-01
//	SourceCountry: CL
//	OrderAmount: 500
//	Customer:
//	  FirstName: Ana
func loadOrder(path string) (*moreremesas.OrderInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}

	var order moreremesas.OrderInfo
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("parsing order file: %w", err)
	}

	return &order, nil
}
