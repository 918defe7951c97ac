package parser

// InvoiceRecord is the structured output of a parse. Every scalar field is
// always present in the serialized form; absent data is an empty string,
// never a missing key. Wire names follow the customs-invoice schema the
// downstream collector expects (Spanish keys).
type InvoiceRecord struct {
	ImporterName    string `json:"importador_nombre"`
	ImporterAddress string `json:"importador_domicilio"`
	ImporterTaxID   string `json:"importador_rfc"`

	DeclarationNumber string `json:"pedimento"`
	DeclarationDate   string `json:"fecha_pedimento"`

	InvoiceNumber string `json:"num_factura"`
	InvoiceDate   string `json:"fecha_factura"`
	InvoicePlace  string `json:"lugar_em_factura"`

	Suppliers []Supplier `json:"proveedores"`
	LineItems []LineItem `json:"partidas"`
}

// Supplier is one proveedor entry. Included in the record only if at least
// one field is non-empty.
type Supplier struct {
	TaxID   string `json:"id_fiscal"`
	Name    string `json:"nombre"`
	Address string `json:"domicilio"`
}

// IsEmpty reports whether every field is empty.
func (s Supplier) IsEmpty() bool {
	return s.TaxID == "" && s.Name == "" && s.Address == ""
}

// LineItem is one partida entry. Included in the record only if at least one
// field is non-empty.
type LineItem struct {
	ItemNumber          string `json:"partida"`
	Sequence            string `json:"secuencia"`
	CustomsValue        string `json:"valor_aduana"`
	TariffCode          string `json:"fraccion"`
	Description         string `json:"descripcion"`
	QuantityUnit        string `json:"cantidad_umc"`
	CountryOfProduction string `json:"pais_produccion"`
	CountryOfOrigin     string `json:"pais_procedencia"`
	PricePaid           string `json:"precio_pagado"`
	UnitPrice           string `json:"precio_unitario"`
}

// IsEmpty reports whether every field is empty.
func (li LineItem) IsEmpty() bool {
	return li.ItemNumber == "" && li.Sequence == "" && li.CustomsValue == "" &&
		li.TariffCode == "" && li.Description == "" && li.QuantityUnit == "" &&
		li.CountryOfProduction == "" && li.CountryOfOrigin == "" &&
		li.PricePaid == "" && li.UnitPrice == ""
}

// NewRecord returns a record with non-nil (empty) collections so the
// serialized form always carries proveedores/partidas as arrays.
func NewRecord() *InvoiceRecord {
	return &InvoiceRecord{
		Suppliers: []Supplier{},
		LineItems: []LineItem{},
	}
}
