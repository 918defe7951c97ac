package parser

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema returns the invoice-record schema (draft 2020-12
// subset) as a generic map. Every scalar key is required so a missing field
// is caught before the file reaches the collector.
func BuildRecordJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}

	supplierProps := map[string]any{
		"id_fiscal": str,
		"nombre":    str,
		"domicilio": str,
	}
	lineItemProps := map[string]any{
		"partida":          str,
		"secuencia":        str,
		"valor_aduana":     str,
		"fraccion":         str,
		"descripcion":      str,
		"cantidad_umc":     str,
		"pais_produccion":  str,
		"pais_procedencia": str,
		"precio_pagado":    str,
		"precio_unitario":  str,
	}

	props := map[string]any{
		"importador_nombre":    str,
		"importador_domicilio": str,
		"importador_rfc":       str,
		"pedimento":            str,
		"fecha_pedimento":      str,
		"num_factura":          str,
		"fecha_factura":        str,
		"lugar_em_factura":     str,
		"proveedores": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           supplierProps,
				"required":             []string{"id_fiscal", "nombre", "domicilio"},
			},
		},
		"partidas": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           lineItemProps,
				"required": []string{
					"partida", "secuencia", "valor_aduana", "fraccion", "descripcion",
					"cantidad_umc", "pais_produccion", "pais_procedencia",
					"precio_pagado", "precio_unitario",
				},
			},
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required": []string{
			"importador_nombre", "importador_domicilio", "importador_rfc",
			"pedimento", "fecha_pedimento",
			"num_factura", "fecha_factura", "lugar_em_factura",
			"proveedores", "partidas",
		},
	}
}

// ValidateRecordJSON validates raw record JSON against the invoice schema.
func ValidateRecordJSON(data []byte) error {
	b, err := json.Marshal(BuildRecordJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
