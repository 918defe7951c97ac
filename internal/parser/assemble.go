package parser

// Keyword tables for top-level fields. Spanish synonyms are kept verbatim
// because the source documents are Mexican customs invoices; matching is
// case-insensitive so accents are the only variants that need spelling out.
var (
	importerNameKeywords    = []string{"importador", "empresa", "razón social", "razon social"}
	importerAddressKeywords = []string{"domicilio", "dirección", "direccion", "domicilio del importador"}
	importerTaxIDKeywords   = []string{"rfc", "registro federal", "clave de rfc"}

	declarationNumberKeywords = []string{"pedimento", "número de pedimento", "numero de pedimento", "aduana pedimento"}
	declarationDateKeywords   = []string{"fecha pedimento", "fecha de pedimento"}

	invoiceNumberKeywords = []string{"factura", "número de factura", "numero de factura", "folio factura", "invoice"}
	invoiceDateKeywords   = []string{"fecha factura", "fecha de factura", "fecha emisión"}
	invoicePlaceKeywords  = []string{"lugar", "lugar de emisión", "lugar de emision"}
)

// Section keywords and nested field tables.
var (
	supplierSectionKeywords = []string{"proveedor", "supplier", "vendedor", "exportador"}
	supplierTaxIDKeywords   = []string{"id fiscal", "idn", "tax id", "rfc"}
	supplierNameKeywords    = []string{"nombre", "company", "empresa"}
	supplierAddressKeywords = []string{"domicilio", "dirección", "direccion", "address"}

	lineItemSectionKeywords = []string{"partida", "item", "producto", "descripción"}

	itemNumberKeywords   = []string{"partida", "item #"}
	sequenceKeywords     = []string{"secuencia", "sequence"}
	customsValueKeywords = []string{"valor aduana", "valor", "price"}
	tariffCodeKeywords   = []string{"fracción", "fraccion", "tariff"}
	descriptionKeywords  = []string{"descripción", "descripcion", "description"}
	quantityUnitKeywords = []string{"cantidad", "qty", "umc"}
	countryProdKeywords  = []string{"país producción", "pais produccion", "country of origin"}
	countryOrigKeywords  = []string{"país procedencia", "pais procedencia", "country"}
	pricePaidKeywords    = []string{"precio pagado", "paid price"}
	unitPriceKeywords    = []string{"precio unitario", "unit price"}
)

const (
	// defaultContextLines is the lookahead window for top-level fields.
	defaultContextLines = 2
	// supplierSectionCap bounds the supplier block; line items run to the end
	// of the document.
	supplierSectionCap = 10
)

// Assemble extracts the full invoice record from raw OCR text. Every scalar
// field is populated (empty string when nothing matched); suppliers and line
// items are appended only when at least one of their fields is non-empty.
func Assemble(text string) *InvoiceRecord {
	lines := SplitLines(text)

	rec := NewRecord()
	rec.ImporterName = ExtractField(lines, importerNameKeywords, defaultContextLines)
	rec.ImporterAddress = ExtractField(lines, importerAddressKeywords, defaultContextLines)
	rec.ImporterTaxID = ExtractField(lines, importerTaxIDKeywords, defaultContextLines)

	rec.DeclarationNumber = ExtractField(lines, declarationNumberKeywords, defaultContextLines)
	rec.DeclarationDate = ExtractField(lines, declarationDateKeywords, defaultContextLines)

	rec.InvoiceNumber = ExtractField(lines, invoiceNumberKeywords, defaultContextLines)
	rec.InvoiceDate = ExtractField(lines, invoiceDateKeywords, defaultContextLines)
	rec.InvoicePlace = ExtractField(lines, invoicePlaceKeywords, defaultContextLines)

	if supplier := assembleSupplier(lines); !supplier.IsEmpty() {
		rec.Suppliers = append(rec.Suppliers, supplier)
	}
	if item := assembleLineItem(lines); !item.IsEmpty() {
		rec.LineItems = append(rec.LineItems, item)
	}
	return rec
}

func assembleSupplier(lines []string) Supplier {
	section := ScanSection(lines, supplierSectionKeywords, supplierSectionCap)
	return Supplier{
		TaxID:   extractInSection(section, supplierTaxIDKeywords),
		Name:    extractInSection(section, supplierNameKeywords),
		Address: extractInSection(section, supplierAddressKeywords),
	}
}

func assembleLineItem(lines []string) LineItem {
	section := ScanSection(lines, lineItemSectionKeywords, 0)
	return LineItem{
		ItemNumber:          extractInSection(section, itemNumberKeywords),
		Sequence:            extractInSection(section, sequenceKeywords),
		CustomsValue:        extractInSection(section, customsValueKeywords),
		TariffCode:          extractInSection(section, tariffCodeKeywords),
		Description:         extractInSection(section, descriptionKeywords),
		QuantityUnit:        extractInSection(section, quantityUnitKeywords),
		CountryOfProduction: extractInSection(section, countryProdKeywords),
		CountryOfOrigin:     extractInSection(section, countryOrigKeywords),
		PricePaid:           extractInSection(section, pricePaidKeywords),
		UnitPrice:           extractInSection(section, unitPriceKeywords),
	}
}
