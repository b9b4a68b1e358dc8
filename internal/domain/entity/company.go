package entity

// Company representa la empresa dueña de los datos (tabla empresa). Todo se filtra por su id.
type Company struct {
	ID             int64
	Name           string
	CurrencySymbol string // simbolomoneda, "$" si no está definido
	TaxID          string // cuit
	Address        string
	Phone          string
}

// Symbol devuelve el símbolo de moneda a usar en reportes.
func (c *Company) Symbol() string {
	if c == nil || c.CurrencySymbol == "" {
		return "$"
	}
	return c.CurrencySymbol
}
