// Package seed holds the sample catalog used to populate an empty store.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

//go:embed products.yaml
var productsYAML []byte

type catalogFile struct {
	Products []models.Product `yaml:"products"`
}

// Products parses the embedded catalog. Each call returns fresh values.
func Products() ([]*models.Product, error) {
	return parse(productsYAML)
}

func parse(data []byte) ([]*models.Product, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	products := make([]*models.Product, 0, len(file.Products))
	for i := range file.Products {
		p := file.Products[i]
		if err := global.Validate(p); err != nil {
			return nil, fmt.Errorf("seed product %d (%s): %w", i, p.Name, err)
		}
		products = append(products, &p)
	}
	return products, nil
}
