package core

import "slices"

// NeutralColor is used for categories without a registered color.
const NeutralColor = "#6c757d"

// Category describes a transaction category and how it is displayed.
type Category struct {
	Key   string
	Label string
	Color string
	Type  TransactionType
}

var incomeCategories = []Category{
	{Key: "salary", Label: "Salario", Color: "#28a745", Type: Income},
	{Key: "freelance", Label: "Trabajo Independiente", Color: "#20c997", Type: Income},
	{Key: "investment", Label: "Inversiones", Color: "#17a2b8", Type: Income},
	{Key: "business", Label: "Negocio", Color: "#0d6efd", Type: Income},
	{Key: "rental", Label: "Alquiler", Color: "#0dcaf0", Type: Income},
	{Key: "bonus", Label: "Bonificación", Color: "#5cb85c", Type: Income},
	{Key: "commission", Label: "Comisión", Color: "#3d8b3d", Type: Income},
	{Key: "dividend", Label: "Dividendos", Color: "#138496", Type: Income},
	{Key: "gift", Label: "Regalo", Color: "#6f42c1", Type: Income},
	{Key: "refund", Label: "Reembolso", Color: "#8540f5", Type: Income},
	{Key: "other_income", Label: "Otros Ingresos", Color: "#6c757d", Type: Income},
}

var expenseCategories = []Category{
	{Key: "food", Label: "Alimentación", Color: "#dc3545", Type: Expense},
	{Key: "transport", Label: "Transporte", Color: "#fd7e14", Type: Expense},
	{Key: "utilities", Label: "Servicios Públicos", Color: "#ffc107", Type: Expense},
	{Key: "rent", Label: "Arriendo", Color: "#198754", Type: Expense},
	{Key: "healthcare", Label: "Salud", Color: "#007bff", Type: Expense},
	{Key: "education", Label: "Educación", Color: "#6610f2", Type: Expense},
	{Key: "entertainment", Label: "Entretenimiento", Color: "#e83e8c", Type: Expense},
	{Key: "shopping", Label: "Compras", Color: "#d63384", Type: Expense},
	{Key: "groceries", Label: "Mercado", Color: "#b02a37", Type: Expense},
	{Key: "clothing", Label: "Ropa", Color: "#ab296a", Type: Expense},
	{Key: "insurance", Label: "Seguros", Color: "#0a58ca", Type: Expense},
	{Key: "taxes", Label: "Impuestos", Color: "#842029", Type: Expense},
	{Key: "debt", Label: "Deudas", Color: "#58151c", Type: Expense},
	{Key: "maintenance", Label: "Mantenimiento", Color: "#997404", Type: Expense},
	{Key: "subscriptions", Label: "Suscripciones", Color: "#6f42c1", Type: Expense},
	{Key: "travel", Label: "Viajes", Color: "#fd9843", Type: Expense},
	{Key: "other_expense", Label: "Otros Gastos", Color: "#495057", Type: Expense},
}

var categoryIndex = func() map[string]Category {
	idx := make(map[string]Category, len(incomeCategories)+len(expenseCategories))
	for _, c := range incomeCategories {
		idx[c.Key] = c
	}
	for _, c := range expenseCategories {
		idx[c.Key] = c
	}
	return idx
}()

// Categories returns the categories registered for t, in display order.
// An invalid type yields every category.
func Categories(t TransactionType) []Category {
	switch t {
	case Income:
		return slices.Clone(incomeCategories)
	case Expense:
		return slices.Clone(expenseCategories)
	default:
		return slices.Concat(incomeCategories, expenseCategories)
	}
}

// LookupCategory returns the registered category for key. Unknown keys
// resolve to the raw key as label and NeutralColor.
func LookupCategory(key string) Category {
	if c, ok := categoryIndex[key]; ok {
		return c
	}
	return Category{Key: key, Label: key, Color: NeutralColor}
}

// IsKnownCategory reports whether key is registered for any type.
func IsKnownCategory(key string) bool {
	_, ok := categoryIndex[key]
	return ok
}

// IsCategoryOf reports whether key is registered for t.
func IsCategoryOf(t TransactionType, key string) bool {
	c, ok := categoryIndex[key]
	return ok && c.Type == t
}

// DefaultCategory is the category preselected when the type changes.
func DefaultCategory(t TransactionType) string {
	if t == Expense {
		return "food"
	}
	return "salary"
}
